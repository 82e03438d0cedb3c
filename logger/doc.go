// Package logger provides structured logging for clinicq on top of zerolog.
//
// A process-wide logger is initialised once from configuration and
// component loggers are derived from it:
//
//	logger.Init(cfg.Logging)
//	log := logger.Get("sse")
//	log.Info("subscriber registered", map[string]interface{}{"tenant": id})
package logger
