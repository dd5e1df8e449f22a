// Package logger provides structured logging using zerolog.
//
// It supports console and JSON output, log level configuration, plain-text
// file sinks, and component-scoped loggers with structured fields.
//
// # Presets
//
// The LOG_SETUP environment variable selects a preset:
//
//	prod  info and above, plain console
//	dev   debug and above, colored console, logs/error.log and logs/all.log
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  files:
//	    - name: "all.log"
//
// # Usage
//
//	log := logger.Get("my-component")
//	log.Info("operation completed", logger.Fields("key", "value"))
package logger
