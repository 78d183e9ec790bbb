package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/investorlens/pkg/types"
)

// MinLevel is the lowest level persisted by the telemetry handlers. Fallback
// warnings (unknown persona, unknown attribute) are logged at WARN.
const MinLevel = slog.LevelWarn

// LogRecord represents a single log entry for Parquet or SQL storage
type LogRecord struct {
	ID            string    `parquet:"id"`
	Timestamp     time.Time `parquet:"timestamp"`
	Level         string    `parquet:"level"`
	Message       string    `parquet:"message"`
	RequestID     string    `parquet:"request_id"`
	UserID        string    `parquet:"user_id"`
	SessionID     string    `parquet:"session_id"`
	RequestSource string    `parquet:"request_source"`
	SourceFile    string    `parquet:"source_file"`
	LineNumber    int       `parquet:"line_number"`
	Attributes    string    `parquet:"attributes"` // JSON string
}

// newLogRecord captures r together with the request identity carried by ctx.
// attrs are the handler-level attributes added through WithAttrs.
func newLogRecord(ctx context.Context, r slog.Record, attrs []slog.Attr) LogRecord {
	contextString := func(key types.ContextKey) string {
		if ctx == nil {
			return ""
		}
		v, _ := ctx.Value(key).(string)
		return v
	}

	values := make(map[string]interface{})
	for _, a := range attrs {
		values[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		values[a.Key] = a.Value.Resolve().Any()
		return true
	})
	attrsJSON, err := json.Marshal(values)
	if err != nil {
		attrsJSON = []byte("{}")
	}

	var sourceFile string
	var line int
	if r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		sourceFile, line = f.File, f.Line
	}

	return LogRecord{
		ID:            uuid.New().String(),
		Timestamp:     r.Time.UTC(),
		Level:         r.Level.String(),
		Message:       r.Message,
		RequestID:     contextString(types.ContextKeyRequestID),
		UserID:        contextString(types.ContextKeyUserID),
		SessionID:     contextString(types.ContextKeySessionID),
		RequestSource: contextString(types.ContextKeyRequestSource),
		SourceFile:    sourceFile,
		LineNumber:    line,
		Attributes:    string(attrsJSON),
	}
}
