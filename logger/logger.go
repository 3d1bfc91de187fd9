// Package logger builds the application zap logger from configuration
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/usbest/usbest-backend/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a zap logger writing to stdout, a rotating file, or both
func New(cfg config.LoggingConfig, deployment config.DeploymentConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(defaultString(cfg.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.StacktraceKey = "stacktrace"
	encoderConfig.LevelKey = "severity"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.CallerKey = "caller"
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" || cfg.Format == "text" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	sink, err := writer(cfg)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(sink), zap.NewAtomicLevelAt(level))

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	log := zap.New(core, opts...).With(
		zap.String("env", deployment.Environment),
		zap.String("version", deployment.Version),
	)

	return log, nil
}

// MustInit builds the logger, installs it as the global one and panics on failure
func MustInit(cfg config.LoggingConfig, deployment config.DeploymentConfig) *zap.Logger {
	log, err := New(cfg, deployment)
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(log)
	return log
}

func writer(cfg config.LoggingConfig) (io.Writer, error) {
	switch defaultString(cfg.Output, "stdout") {
	case "stdout":
		return os.Stdout, nil
	case "file":
		return rotatingFile(cfg), nil
	case "both":
		return io.MultiWriter(os.Stdout, rotatingFile(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported log output %q", cfg.Output)
	}
}

func rotatingFile(cfg config.LoggingConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
