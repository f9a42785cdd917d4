// Package logging builds the zap logger used by the qkhe commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level, encoder and an optional log file.
type Options struct {
	Level  string // debug, info, warn, error; anything else means info
	Format string // "json" or console
	File   string // when set, log lines are also appended here

	// Output receives log lines; nil means os.Stderr.
	Output io.Writer
}

// New builds a logger from opts. The returned cleanup syncs the logger and
// closes the log file; it is safe to call when New failed.
func New(opts Options) (*zap.Logger, func(), error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if opts.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var out io.Writer = os.Stderr
	if opts.Output != nil {
		out = opts.Output
	}
	ws := zapcore.AddSync(out)

	var file *os.File
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, func() {}, fmt.Errorf("logging: create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, func() {}, fmt.Errorf("logging: open log file: %w", err)
		}
		file = f
		ws = zapcore.NewMultiWriteSyncer(zapcore.AddSync(f), ws)
	}

	core := zapcore.NewCore(encoder, ws, ParseLevel(opts.Level))
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	cleanup := func() {
		_ = logger.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return logger, cleanup, nil
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
