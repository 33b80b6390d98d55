// Package version carries the build identity of the montessa binary.
//
// Version, GitCommit and BuildTime are set at link time:
//
//	go build -ldflags "-X github.com/TestimonyAdegoke/montessa-sub006/version.Version=1.4.0" ./cmd/montessa
//
// Missing values fall back to the VCS stamp the Go toolchain embeds.
package version
