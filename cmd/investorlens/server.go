package investorlens

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	lens "github.com/soundprediction/investorlens"
	"github.com/soundprediction/investorlens/pkg/explain"
	"github.com/soundprediction/investorlens/pkg/server"
	"github.com/soundprediction/investorlens/pkg/utils"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the InvestorLens HTTP server",
	Long: `Start the InvestorLens HTTP server.

The server provides endpoints for:
- Searching with a persona (POST /api/search)
- Listing personas and companies
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("host", "localhost", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
	serverCmd.Flags().String("mode", "debug", "Server mode (debug, release, test)")

	addExplainFlags(serverCmd)

	serverCmd.Flags().String("telemetry-parquet-path", "", "Directory for Parquet telemetry of warnings and errors")
	serverCmd.Flags().String("telemetry-db-url", "", "MySQL-compatible DSN for SQL telemetry")
}

func addExplainFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("explain", false, "Enable LLM explanations")
	cmd.Flags().String("explain-model", explain.DefaultModel, "Explanation model")
	cmd.Flags().String("explain-base-url", "", "OpenAI-compatible base URL for explanations")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeTelemetry := setupLogger(cfg)
	defer closeTelemetry()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := lens.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize search client: %w", err)
	}
	defer client.Close(context.Background())

	var explainer explain.Explainer
	if e, err := explain.New(cfg.Explain, logger); err == nil {
		explainer = e
		logger.Info("explanations enabled", "model", cfg.Explain.Model)
	} else if !errors.Is(err, explain.ErrDisabled) {
		return fmt.Errorf("failed to initialize explainer: %w", err)
	}

	srv := server.New(cfg, client, explainer, logger)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	utils.SafeGo(func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}, func(err error) { serverErrChan <- err })

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.Info("received signal", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil
	}
}
