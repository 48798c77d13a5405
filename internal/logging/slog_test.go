package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger() (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_LevelsAndAttributes(t *testing.T) {
	log, buf := newBufferedLogger()
	ctx := context.Background()

	log.Debug(ctx, "spooling", "path", "/tmp/x")
	log.Info(ctx, "stored", "file_id", "f1")
	log.Warn(ctx, "retrying", "attempt", 2)
	log.Error(ctx, "failed", "error", "boom")

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=spooling", "path=/tmp/x",
		"level=INFO", "msg=stored", "file_id=f1",
		"level=WARN", "msg=retrying", "attempt=2",
		"level=ERROR", "msg=failed", "error=boom",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_WithCarriesAttributes(t *testing.T) {
	log, buf := newBufferedLogger()

	child := log.With("module", "pipeline")
	child.Info(context.Background(), "stored", "file_id", "f1")

	out := buf.String()
	assert.Contains(t, out, "module=pipeline")
	assert.Contains(t, out, "file_id=f1")
}

func TestNewJSON_EmitsOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf)

	log.Info(context.Background(), "stored", "file_id", "f1")

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "stored", record["msg"])
	assert.Equal(t, "f1", record["file_id"])
}
