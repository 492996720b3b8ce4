// Package logger provides structured logging for apikit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("apiclient")
//	log.Debug("dispatch ok", logger.Fields(logger.FieldEndpoint, "/users"))
package logger
