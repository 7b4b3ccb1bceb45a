package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"routine-advisor/internal/config"
)

const (
	maxLogSizeMB  = 5
	maxLogBackups = 5
	maxLogAgeDays = 14
)

type ctxKeyLog struct{}

// New builds a logger from cfg. When cfg.File is set the output is a rotating
// file; otherwise it is fallback (stdout for the server, io.Discard for the TUI).
func New(cfg config.LogConfig, fallback io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetLevel(ParseLevel(cfg.Level))
	log.SetFormatter(newFormatter(cfg.Format))
	log.SetOutput(fallback)

	path := strings.TrimSpace(cfg.File)
	if path == "" {
		return log, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return log, err
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	})
	return log, nil
}

func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func newFormatter(format string) logrus.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		return &logrus.TextFormatter{FullTimestamp: true}
	default:
		return &logrus.JSONFormatter{}
	}
}

// WithLogger returns a copy of ctx carrying log.
func WithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKeyLog{}, log)
}

// FromContext returns the logger stored in ctx, or the standard logger.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if log, ok := ctx.Value(ctxKeyLog{}).(logrus.FieldLogger); ok && log != nil {
		return log
	}
	return logrus.StandardLogger()
}
