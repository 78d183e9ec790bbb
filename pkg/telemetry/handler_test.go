package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/investorlens/pkg/types"
)

func TestParquetHandler_PersistsWarnings(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	h, err := NewParquetHandler(slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo}), dir)
	require.NoError(t, err)

	log := slog.New(h).With("component", "search")
	ctx := context.WithValue(context.Background(), types.ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "api")

	log.InfoContext(ctx, "search completed")
	log.WarnContext(ctx, "unknown persona, using default", "persona", "day_trader")
	log.ErrorContext(ctx, "graph store unavailable")
	require.NoError(t, h.Close())

	assert.Contains(t, console.String(), "search completed")

	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	records, err := ReadFile(files[0])
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "WARN", records[0].Level)
	assert.Equal(t, "unknown persona, using default", records[0].Message)
	assert.Equal(t, "req-1", records[0].RequestID)
	assert.Equal(t, "api", records[0].RequestSource)
	assert.Contains(t, records[0].Attributes, `"persona":"day_trader"`)
	assert.Contains(t, records[0].Attributes, `"component":"search"`)
	assert.NotEmpty(t, records[0].ID)
	assert.Equal(t, "ERROR", records[1].Level)
}

func TestParquetHandler_WarnsBelowNextLevel(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	h, err := NewParquetHandler(slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelError}), dir)
	require.NoError(t, err)

	log := slog.New(h)
	log.Warn("unknown attribute, using moat_durability")
	require.NoError(t, h.Flush())

	assert.Empty(t, console.String())
	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestParquetHandler_EmptyFlush(t *testing.T) {
	dir := t.TempDir()
	h, err := NewParquetHandler(slog.NewTextHandler(os.Stderr, nil), dir)
	require.NoError(t, err)
	require.NoError(t, h.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
