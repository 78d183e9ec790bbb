package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/go-sql-driver/mysql" // MySQL-compatible sinks (MySQL, Dolt)
)

// SQLHandler is a slog.Handler that writes warnings and errors to a SQL database
type SQLHandler struct {
	next      slog.Handler
	db        *sql.DB
	tableName string
	attrs     []slog.Attr
}

// OpenSQLHandler opens a MySQL-compatible database from dsn and wraps next.
func OpenSQLHandler(next slog.Handler, dsn string) (*SQLHandler, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry database: %w", err)
	}
	h, err := NewSQLHandler(next, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// NewSQLHandler creates a new SQLHandler using an existing DB connection
func NewSQLHandler(next slog.Handler, db *sql.DB) (*SQLHandler, error) {
	h := &SQLHandler{
		next:      next,
		db:        db,
		tableName: "search_telemetry",
	}

	if err := h.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure telemetry table: %w", err)
	}

	return h, nil
}

func (h *SQLHandler) ensureTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			timestamp TIMESTAMP,
			level VARCHAR(10),
			message TEXT,
			request_id VARCHAR(64),
			user_id VARCHAR(255),
			session_id VARCHAR(255),
			request_source VARCHAR(255),
			source_file VARCHAR(255),
			line_number INT,
			attributes JSON
		)
	`, h.tableName)

	_, err := h.db.Exec(query)
	return err
}

// Enabled implements slog.Handler
func (h *SQLHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= MinLevel || h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *SQLHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always pass to next handler first
	if h.next.Enabled(ctx, r.Level) {
		if err := h.next.Handle(ctx, r); err != nil {
			return err
		}
	}

	if r.Level < MinLevel {
		return nil
	}

	rec := newLogRecord(ctx, r, h.attrs)
	query := fmt.Sprintf(`
		INSERT INTO %s (id, timestamp, level, message, request_id, user_id, session_id, request_source, source_file, line_number, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, h.tableName)

	// Telemetry never blocks the logging chain; failures only reach the next handler.
	if _, err := h.db.ExecContext(context.WithoutCancel(ctx), query,
		rec.ID, rec.Timestamp, rec.Level, rec.Message, rec.RequestID, rec.UserID,
		rec.SessionID, rec.RequestSource, rec.SourceFile, rec.LineNumber, rec.Attributes,
	); err != nil {
		fallback := slog.NewRecord(r.Time, slog.LevelError, "failed to write telemetry record", 0)
		fallback.AddAttrs(slog.String("error", err.Error()))
		_ = h.next.Handle(ctx, fallback)
	}
	return nil
}

// Close closes the database.
func (h *SQLHandler) Close() error {
	return h.db.Close()
}

// WithAttrs implements slog.Handler
func (h *SQLHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SQLHandler{
		next:      h.next.WithAttrs(attrs),
		db:        h.db,
		tableName: h.tableName,
		attrs:     append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler
func (h *SQLHandler) WithGroup(name string) slog.Handler {
	return &SQLHandler{
		next:      h.next.WithGroup(name),
		db:        h.db,
		tableName: h.tableName,
		attrs:     h.attrs,
	}
}
