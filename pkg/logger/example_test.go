package logger_test

import (
	"log/slog"

	"github.com/soundprediction/investorlens/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Debug("Classified query", "intent", "competitors_to")
	log.Info("Retrieved candidates from graph", "count", 12) // Green in a terminal
	log.Warn("Unknown persona, using default", "persona", "day_trader")
	log.Error("Graph store unavailable", "error", "connection refused")
}
