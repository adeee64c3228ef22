package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gcbaptista/jobmatch/config"
	"github.com/gcbaptista/jobmatch/internal/corpus"
	"github.com/gcbaptista/jobmatch/internal/engine"
	"github.com/gcbaptista/jobmatch/internal/logging"
)

const app = "jobmatch"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "jobmatch ranks job postings against a resume",
		Long:          "jobmatch scores every posting of a corpus against a resume with TF-IDF, BM25, skill, soft-skill and experience signals and returns the best matches.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "a config file (default is jobmatch.yaml in current directory)")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "json format for logging")
	flags.String("source", "", "corpus source: memory, file, sqlite or postgres")
	flags.String("corpus-path", "", "gob file or SQLite database holding the corpus")
	flags.String("dsn", "", "PostgreSQL connection string")

	mustBind("log.debug", "debug")
	mustBind("log.json", "json")
	mustBind("corpus.source", "source")
	mustBind("corpus.path", "corpus-path")
	mustBind("corpus.dsn", "dsn")

	config.SetDefaults(viper.GetViper())
}

func mustBind(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// A missing default config file is fine: defaults and environment still apply.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			cobra.CheckErr(fmt.Errorf("reading config: %w", err))
		}
	}
}

// setup loads the configuration and builds the logger every subcommand uses.
func setup() (*config.ServerConfig, *zap.Logger, error) {
	cfg, err := config.LoadServerConfig(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return cfg, logger, nil
}

// openEngine opens the configured corpus and builds an engine over it. The returned
// function stops the engine and releases the corpus.
func openEngine(ctx context.Context, cfg *config.ServerConfig, logger *zap.Logger) (*engine.Engine, func(), error) {
	source, writer, closeSource, err := corpus.Open(ctx, cfg.Corpus)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s corpus: %w", cfg.Corpus.Source, err)
	}

	eng, err := engine.New(engine.Options{
		Settings:          &cfg.Ranking,
		Source:            source,
		Writer:            writer,
		Logger:            logger,
		MaxConcurrentJobs: cfg.Jobs.MaxConcurrent,
	})
	if err != nil {
		_ = closeSource()
		return nil, nil, err
	}

	return eng, func() {
		eng.Close()
		if err := closeSource(); err != nil {
			logger.Warn("closing corpus source", zap.Error(err))
		}
	}, nil
}
