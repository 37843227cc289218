// Package logger provides structured logging for the aesthetic-gradient
// library, built on Uber's Zap.
//
// The package exposes a thin wrapper, LoggerClient, with a small leveled API:
//
//	log := logger.NewLoggerClient(logger.NewConfig())
//	log.Info("embedding generated", nil, map[string]interface{}{
//		"name":   "style",
//		"images": 42,
//	})
//	log.Error("alignment failed", err, nil)
//
// Output is JSON on stderr with ISO8601 timestamps, a service name, and the
// process id as constant fields.
//
// # Configuration
//
// Environment variables:
//
//	ZAP_LOGGER_LEVEL      debug | info | warning | error (default info)
//	LOGGER_SERVICE_NAME   constant "service" field (default "aesthetic")
//
// # Dependency Injection (Fx)
//
// logger.FXModule provides *LoggerClient and registers an OnStop hook that
// flushes buffered entries:
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Invoke(func(log *logger.LoggerClient) { ... }),
//	)
//
// All methods are safe for concurrent use.
package logger
