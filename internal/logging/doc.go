// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to a ring buffer that backs the /logs endpoint and live log streaming
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"streams": "debug",  // Per-module overrides
//			"api":     "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("streams")
//	logger.Info("Starting up", "port", 5000)
//	logger.Debug("Details", "config", cfg)
//	logger.Warn("Something unusual", "error", err)
//	logger.Error("Failed", "error", err)
//
// Add contextual attributes:
//
//	logger := logging.GetLogger("streams").With("stream", name)
//	logger.Info("Stream started")  // Includes stream in all logs
//
// # Viewing Logs
//
// When running as a systemd service or on a system with journald:
//
//	journalctl -t audionode              # All audionode logs
//	journalctl -t audionode -f           # Follow live
//	journalctl -t audionode --since "5m" # Last 5 minutes
//	journalctl -t audionode -p err       # Errors only
//
// Filter by structured fields:
//
//	journalctl -t audionode MODULE=streams
//	journalctl -t audionode STREAM=vinyl
//
// # Configuration
//
// Log levels can be set globally or per-module. Module-specific levels
// override the global level for that module only.
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	streams = "debug"
//	api = "warn"
//	telemetry = "error"
package logging
