// Package logger builds the zap loggers used across the service.
//
// New picks the development or production preset from the configured level
// and encodes as json or console. Two helpers attach correlation fields:
//
//   - WithRayID reads the request ID stored by the rayid middleware.
//   - WithPass tags entries with the import pass they belong to.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	l := logger.WithPass(log, ic.PassID)
//	l.Warn("texture decode failed", zap.String("element", name))
package logger
