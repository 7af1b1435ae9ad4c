// Package logger provides structured logging on top of zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("session")
//	log.Info("login succeeded", logger.Fields("user_id", id))
package logger
