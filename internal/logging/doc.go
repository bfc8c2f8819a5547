// Package logging provides structured logging for the tapnode agent.
//
// This package wraps zap logger with convenience functions for common
// logging patterns used throughout the agent. Commands stay silent by
// default: unless a level is passed to Initialize or set through
// TAPNODE_LOG_LEVEL, a nop logger is installed.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: detailed step timing and handler traces
//   - Info: normal operations (boot steps, requests, shutdown)
//   - Warn: non-fatal issues (nil handles, refused registrations)
//   - Error: fatal issues (boot step failures, server errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Boot step complete",
//	    zap.String("step", "announce"),
//	    zap.Duration("elapsed", elapsed),
//	)
//
// # Configuration
//
// Initialize logging at agent startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
