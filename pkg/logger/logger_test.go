package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundprediction/investorlens/pkg/config"
)

func TestColorHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelInfo, false))

	log.Debug("hidden")
	log.With("request_id", "abc").WithGroup("search").Info("ranked", "persona", "pe_firm", "count", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO  ranked")
	assert.Contains(t, out, " request_id=abc")
	assert.NotContains(t, out, "search.request_id")
	assert.Contains(t, out, "search.persona=pe_firm")
	assert.Contains(t, out, "search.count=3")
	assert.NotContains(t, out, "\033[")
}

func TestColorHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelDebug, true))

	log.Warn("fallback")
	log.Info("queried graph store")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	assert.Contains(t, lines[0], colorYellow)
	assert.Contains(t, lines[1], colorGreen)
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	log.Info("skipped")
	log.Warn("kept", "persona", "unknown")

	assert.NotContains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
