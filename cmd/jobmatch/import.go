package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/jobmatch/internal/corpus"
)

var importCmd = &cobra.Command{
	Use:   "import <postings.json>",
	Short: "Import postings into the corpus",
	Long:  "Reads a JSON array of postings and stores them in the configured corpus, replacing postings with the same id.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	docs, err := corpus.LoadDocumentsFile(args[0])
	if err != nil {
		return err
	}

	_, writer, closeSource, err := corpus.Open(cmd.Context(), cfg.Corpus)
	if err != nil {
		return fmt.Errorf("opening %s corpus: %w", cfg.Corpus.Source, err)
	}
	defer func() { _ = closeSource() }()

	if writer == nil {
		return errors.New("the " + cfg.Corpus.Source + " corpus is read-only")
	}

	stored, err := writer.Upsert(cmd.Context(), docs)
	if err != nil {
		return fmt.Errorf("importing postings: %w", err)
	}

	logger.Info("imported postings",
		zap.String("source", cfg.Corpus.Source),
		zap.Int("read", len(docs)),
		zap.Int("stored", stored))
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d posting(s)\n", stored)
	return nil
}
