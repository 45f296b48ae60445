// Package logging builds the zap loggers release channels write through.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds configuration for a CLI logger.
type Config struct {
	Level  string    // Minimum log level (debug, info, warn, error)
	Output io.Writer // Destination, defaults to os.Stderr

	// FilePath, when set, also records every entry at debug level as JSON
	// in a rotated log file
	FilePath   string
	MaxSizeMB  int // Max size in MB before rotation (default 10)
	MaxBackups int // Max number of old log files to keep (default 5)
	MaxAgeDays int // Max days to keep old log files (default 30)
}

// New creates a console logger for the CLI, teed into a log file when
// cfg.FilePath is set.
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	core := newCore(zapcore.AddSync(out), level)
	if cfg.FilePath != "" {
		fileCore, err := newFileCore(cfg)
		if err != nil {
			return nil, err
		}
		core = zapcore.NewTee(core, fileCore)
	}
	return zap.New(core), nil
}

// Stderr returns the default channel logger, writing every level to stderr.
func Stderr() *zap.Logger {
	return zap.New(newCore(zapcore.Lock(os.Stderr), zapcore.DebugLevel))
}

// ParseLevel maps a level name to a zap level. Empty means warn.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.WarnLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return zapcore.WarnLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func newFileCore(cfg Config) (zapcore.Core, error) {
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 30
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(fileWriter), zapcore.DebugLevel), nil
}

func newCore(ws zapcore.WriteSyncer, level zapcore.Level) zapcore.Core {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.CallerKey = ""
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + name + "]")
	}

	return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), ws, level)
}
