// Package logging builds the zap logger shared by the server and CLI.
//
// Output goes to stderr unless a file is configured, in which case it is
// rotated by lumberjack.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for file output.
const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 5
	defaultMaxAgeDays = 30
)

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	File   string // empty writes to stderr

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ParseLevel converts a level name to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

func encoderFor(format string) (zapcore.Encoder, error) {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	switch strings.ToLower(format) {
	case "", "json":
		return zapcore.NewJSONEncoder(cfg), nil
	case "console":
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(cfg), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (expected json or console)", format)
	}
}

func (o Options) writer() io.Writer {
	if o.File == "" {
		return os.Stderr
	}
	rot := &lumberjack.Logger{
		Filename:   o.File,
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAgeDays,
		Compress:   true,
	}
	if o.MaxSizeMB > 0 {
		rot.MaxSize = o.MaxSizeMB
	}
	if o.MaxBackups > 0 {
		rot.MaxBackups = o.MaxBackups
	}
	if o.MaxAgeDays > 0 {
		rot.MaxAge = o.MaxAgeDays
	}
	return rot
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	return NewWithWriter(opts, opts.writer())
}

// NewWithWriter builds a logger that writes to w, ignoring opts.File.
func NewWithWriter(opts Options, w io.Writer) (*zap.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	enc, err := encoderFor(opts.Format)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
