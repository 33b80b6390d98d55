// Package bootstrap runs a service through its lifecycle: config defaults
// and validation, logger setup, ordered component start, configure
// callbacks, a ready check, the startup summary, signal wait and reverse
// order shutdown.
package bootstrap
