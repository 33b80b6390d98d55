// Package logger provides structured logging for the relay service using
// zerolog.
//
// Loggers are component-scoped and take structured fields as maps:
//
//	log := logger.WithComponent("realtime")
//	log.Info("stream opened", logger.Fields("user_id", uid, "handle_id", hid))
//
// Output format (json or console) and level come from the logging section
// of the service configuration.
package logger
