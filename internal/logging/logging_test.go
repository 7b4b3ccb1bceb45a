package logging

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"routine-advisor/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		" WARN ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesToFallback(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LogConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.WithField("component", "test").Info("hello")
	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"component":"test"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "advisor.log")
	log, err := New(config.LogConfig{Level: "debug", Format: "text", File: path}, io.Discard)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Debug("to file")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "to file") {
		t.Fatalf("expected message in log file, got %q", string(b))
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected standard logger fallback")
	}
	var buf bytes.Buffer
	log, _ := New(config.LogConfig{Format: "json"}, &buf)
	ctx := WithLogger(context.Background(), log.WithField("request_id", "r1"))
	FromContext(ctx).Info("scoped")
	if !strings.Contains(buf.String(), `"request_id":"r1"`) {
		t.Fatalf("expected scoped field, got %s", buf.String())
	}
}
