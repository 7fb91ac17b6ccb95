package bridge

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates the bridge's root logger with the given level ("debug", "info", "warn" or "error")
// and encoding ("console" or "json", empty means "console").
//
// Every entry carries the service name. Components log through named children
// ("forwarder", "plexio"), whose names end up in the "logger" key.
func NewLogger(level, encoding string) (*zap.Logger, error) {
	logConfig, err := newLogConfig(level, encoding)
	if err != nil {
		return nil, err
	}
	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("couldn't create logger: %w", err)
	}
	return logger, nil
}

func newLogConfig(level, encoding string) (zap.Config, error) {
	logLevel, err := parseZapLevel(level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("couldn't parse log level: %w", err)
	}
	switch encoding {
	case "":
		encoding = "console"
	case "console", "json":
	default:
		return zap.Config{}, fmt.Errorf("unknown log encoding %q - only knows [\"console\", \"json\"]", encoding)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	// Console lines stay short, JSON gets the caller for log aggregation.
	if encoding == "json" {
		encoderConfig.CallerKey = "caller"
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}

	return zap.Config{
		Level:             zap.NewAtomicLevelAt(logLevel),
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		InitialFields:     map[string]interface{}{"service": ServiceName},
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}, nil
}

// parseZapLevel accepts the four supported levels case-insensitively.
func parseZapLevel(logLevel string) (zapcore.Level, error) {
	var level zapcore.Level
	switch l := strings.ToLower(logLevel); l {
	case "debug", "info", "warn", "error":
		if err := level.UnmarshalText([]byte(l)); err != nil {
			return 0, err
		}
		return level, nil
	}
	return 0, fmt.Errorf("unknown log level %q - only knows [\"debug\", \"info\", \"warn\", \"error\"]", logLevel)
}
