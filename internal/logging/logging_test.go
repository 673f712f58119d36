package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", input, got, err, want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	t.Run("filters below the configured level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, closer, err := NewWithWriter(&buf, Options{Level: "warn"})
		if err != nil {
			t.Fatalf("NewWithWriter: %v", err)
		}
		defer closer.Close()

		logger.Info("hidden")
		logger.Warn("shown", "key", "value")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Fatalf("expected info record to be filtered, got %s", out)
		}
		if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
			t.Fatalf("expected JSON warn record, got %s", out)
		}
	})

	t.Run("mirrors records into the log file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "logs", "app.log")
		logger, closer, err := NewWithWriter(io.Discard, Options{File: path})
		if err != nil {
			t.Fatalf("NewWithWriter: %v", err)
		}

		logger.Info("to file")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		if !strings.Contains(string(data), `"msg":"to file"`) {
			t.Fatalf("expected record in log file, got %s", data)
		}
	})

	t.Run("rejects an unknown level", func(t *testing.T) {
		t.Parallel()

		if _, _, err := NewWithWriter(io.Discard, Options{Level: "loud"}); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) != nil {
		t.Fatalf("expected no logger on empty context")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected stored logger to be returned")
	}

	if ContextWithLogger(ctx, nil) != ctx {
		t.Fatalf("expected nil logger to leave context unchanged")
	}
}
