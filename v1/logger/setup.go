package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerClient wraps a zap.Logger with the leveled message/error/fields API
// used throughout the library.
type LoggerClient struct {
	// Zap is the underlying zap.Logger. Exposed for callers that need
	// zap-specific functionality; most logging should go through the
	// wrapper methods.
	Zap *zap.Logger
}

// NewLoggerClient builds a configured LoggerClient.
//
// The logger writes JSON to stderr with ISO8601 timestamps, capital level
// names, caller information, and the service name and pid as constant fields.
// Construction failure is unrecoverable and terminates the process.
func NewLoggerClient(cfg Config) *LoggerClient {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	logLevel := zap.InfoLevel
	switch cfg.Level {
	case Debug:
		logLevel = zap.DebugLevel
	case Info:
		logLevel = zap.InfoLevel
	case Warning:
		logLevel = zap.WarnLevel
	case Error:
		logLevel = zap.ErrorLevel
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(logLevel),
		Encoding:         "json",
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	zl, err := zapCfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		log.Fatal(err)
	}

	return &LoggerClient{Zap: zl}
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() *LoggerClient {
	return &LoggerClient{Zap: zap.NewNop()}
}

// Debug logs a message at debug level with optional error and fields.
func (l *LoggerClient) Debug(msg string, err error, fields map[string]interface{}) {
	l.Zap.Debug(msg, l.zapFields(err, fields)...)
}

// Info logs a message at info level with optional error and fields.
func (l *LoggerClient) Info(msg string, err error, fields map[string]interface{}) {
	l.Zap.Info(msg, l.zapFields(err, fields)...)
}

// Warn logs a message at warning level with optional error and fields.
func (l *LoggerClient) Warn(msg string, err error, fields map[string]interface{}) {
	l.Zap.Warn(msg, l.zapFields(err, fields)...)
}

// Error logs a message at error level with optional error and fields.
func (l *LoggerClient) Error(msg string, err error, fields map[string]interface{}) {
	l.Zap.Error(msg, l.zapFields(err, fields)...)
}

func (l *LoggerClient) zapFields(err error, fields map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
