// Package observability holds the process-wide loggers and metrics.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// CLILogger is used by CLI commands (console encoding, stderr).
	CLILogger = zap.NewNop()

	// ServerLogger is used by the HTTP server (JSON encoding).
	ServerLogger = zap.NewNop()
)

// InitCLILogger initializes the CLI logger. Verbose lowers the level to
// debug.
func InitCLILogger(verbose bool) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		// Keep the nop logger if building somehow fails; CLI output still
		// goes to stdout through the output package.
		return
	}
	CLILogger = logger
}

// InitServerLogger initializes the structured server logger.
func InitServerLogger(service, level string) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.OutputPaths = []string{"stderr"}
	cfg.InitialFields = map[string]any{"service": service}

	logger, err := cfg.Build()
	if err != nil {
		return
	}
	ServerLogger = logger
}

// Sync flushes both loggers; called before process exit.
func Sync() {
	_ = CLILogger.Sync()
	_ = ServerLogger.Sync()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug", "trace":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
