package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper around zap.Logger
type Logger struct {
	*zap.Logger
}

// Config holds logging configuration
type Config struct {
	// Level is the log level (debug, info, warn, error, dpanic, panic, fatal)
	Level string `toml:"level" env:"BANKADMIN_LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error dpanic panic fatal"`
	// Format is the log format (json or console)
	Format string `toml:"format" env:"BANKADMIN_LOG_FORMAT" validate:"omitempty,oneof=json console"`
	// Development enables development mode (DPanic logs will panic, caller and stack traces on)
	Development bool `toml:"development" env:"BANKADMIN_LOG_DEV"`
	// OutputPaths is a list of paths to write logs to
	OutputPaths []string `toml:"output_paths"`
}

// DefaultConfig returns a default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stderr"},
	}
}

// DevelopmentConfig returns a configuration for development
func DevelopmentConfig() Config {
	return Config{
		Level:       "debug",
		Format:      "console",
		Development: true,
		OutputPaths: []string{"stderr"},
	}
}

// NewLogger creates a new logger with the given configuration
func NewLogger(config Config) (*Logger, error) {
	level := parseLevel(config.Level)

	var encoderConfig zapcore.EncoderConfig
	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	format := config.Format
	if format == "" {
		format = "json"
	}
	outputs := config.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       config.Development,
		DisableCaller:     !config.Development,
		DisableStacktrace: !config.Development,
		Encoding:          format,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{logger}, nil
}

// NewLoggerFromEnv creates a logger based on environment variables
// LOG_LEVEL: log level (default: info)
// LOG_FORMAT: log format (default: json)
// LOG_DEV: enable development mode (default: false)
func NewLoggerFromEnv() (*Logger, error) {
	config := DefaultConfig()
	if os.Getenv("LOG_DEV") == "true" {
		config = DevelopmentConfig()
	}

	// Level and format override either base
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = format
	}

	return NewLogger(config)
}

// FromConfig builds a logger from a loaded configuration, filling unset
// fields from DevelopmentConfig or DefaultConfig depending on Development.
func FromConfig(config Config) (*Logger, error) {
	base := DefaultConfig()
	if config.Development {
		base = DevelopmentConfig()
	}
	if config.Level == "" {
		config.Level = base.Level
	}
	if config.Format == "" {
		config.Format = base.Format
	}
	if len(config.OutputPaths) == 0 {
		config.OutputPaths = base.OutputPaths
	}
	return NewLogger(config)
}

// NewNoOpLogger creates a logger that discards all logs
func NewNoOpLogger() *Logger {
	return &Logger{zap.NewNop()}
}

// parseLevel converts a string to a zapcore.Level; unknown values mean info.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "dpanic":
		return zapcore.DPanicLevel
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// With creates a child logger with additional fields
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{l.Logger.With(fields...)}
}

// Named creates a child logger with a name
func (l *Logger) Named(name string) *Logger {
	return &Logger{l.Logger.Named(name)}
}

// ForRequest returns a child logger tagged with an outgoing request ID.
func (l *Logger) ForRequest(requestID string) *Logger {
	return l.With(zap.String("request_id", requestID))
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

// Global logger instance
var global = NewNoOpLogger()

// SetGlobal sets the global logger instance
func SetGlobal(logger *Logger) {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	global = logger
}

// Global returns the global logger instance
func Global() *Logger {
	return global
}

// L returns the global logger instance (short form)
func L() *Logger {
	return global
}
