package investorlens

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soundprediction/investorlens/pkg/config"
	"github.com/soundprediction/investorlens/pkg/logger"
	"github.com/soundprediction/investorlens/pkg/telemetry"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "investorlens",
		Short: "InvestorLens: persona-aware investment research over a company graph",
		Long: `InvestorLens answers natural-language investment-research questions such as
"Competitors to Snowflake" or "Compare Databricks vs Snowflake through a PE lens"
against a company knowledge graph, ranking the answers the way a value investor,
PE firm, growth VC, strategic acquirer or enterprise buyer would.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.investorlens.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	// Graph store flags
	flags.String("db-driver", "neo4j", "Graph store driver (neo4j, memory)")
	flags.String("db-uri", "", "Bolt URI for neo4j, or snapshot path for memory (empty uses the embedded sample)")
	flags.String("db-username", "neo4j", "Database username")
	flags.String("db-password", "", "Database password")
	flags.String("db-database", "neo4j", "Database name")
	flags.String("catalog", "", "Company catalog file (yaml or json); empty reads the catalog from the graph")

	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".investorlens")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads configuration and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfigWithFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"db-driver":   &cfg.Database.Driver,
		"db-uri":      &cfg.Database.URI,
		"db-username": &cfg.Database.Username,
		"db-password": &cfg.Database.Password,
		"db-database": &cfg.Database.Database,
		"catalog":     &cfg.Catalog.Path,

		"host": &cfg.Server.Host,
		"mode": &cfg.Server.Mode,

		"explain-model":    &cfg.Explain.Model,
		"explain-base-url": &cfg.Explain.BaseURL,

		"telemetry-parquet-path": &cfg.Telemetry.ParquetPath,
		"telemetry-db-url":       &cfg.Telemetry.DbURL,
	}
	for name, dst := range stringFlags {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Lookup("explain") != nil && flags.Changed("explain") {
		cfg.Explain.Enabled, _ = flags.GetBool("explain")
	}
}

// setupLogger builds the process logger. Warnings and errors are additionally
// persisted to Parquet files and, when a DSN is configured, to a SQL table. The
// returned function flushes and closes those sinks.
func setupLogger(cfg *config.Config) (*slog.Logger, func()) {
	base := logger.NewLogger(cfg.Log, os.Stderr)
	handler := base.Handler()
	var closers []io.Closer

	if cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			base.Warn("failed to initialize parquet telemetry", "error", err)
		} else {
			handler = parquetHandler
			closers = append(closers, parquetHandler)
		}
	}
	if cfg.Telemetry.DbURL != "" {
		sqlHandler, err := telemetry.OpenSQLHandler(handler, cfg.Telemetry.DbURL)
		if err != nil {
			base.Warn("failed to initialize sql telemetry", "error", err)
		} else {
			handler = sqlHandler
			closers = append(closers, sqlHandler)
		}
	}

	log := slog.New(handler)
	return log, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				base.Warn("failed to close telemetry sink", "error", err)
			}
		}
	}
}
