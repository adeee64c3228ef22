package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/jobmatch/services"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the corpus against a resume",
	Long:  "Ranks every posting of the configured corpus against a resume given as text or as a file, and prints the ranking as JSON.",
	RunE:  runRank,
}

var (
	rankText     string
	rankFile     string
	rankFileType string
	rankTopN     int
	rankMinScore float64
)

func init() {
	rankCmd.Flags().StringVarP(&rankText, "text", "t", "", "Resume text")
	rankCmd.Flags().StringVarP(&rankFile, "file", "f", "", "Path to a resume file (txt, md or html)")
	rankCmd.Flags().StringVar(&rankFileType, "file-type", "", "File type of --file (default is its extension)")
	rankCmd.Flags().IntVarP(&rankTopN, "top-n", "n", 0, "Maximum number of postings to return (default from config)")
	rankCmd.Flags().Float64Var(&rankMinScore, "min-score", -1, "Minimum overall score, exclusive (default from config)")
	rankCmd.MarkFlagsMutuallyExclusive("text", "file")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	if rankText == "" && rankFile == "" {
		return errors.New("one of --text or --file is required")
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	eng, closeEngine, err := openEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	var topN *int
	if cmd.Flags().Changed("top-n") {
		topN = &rankTopN
	}
	var minScore *float64
	if cmd.Flags().Changed("min-score") {
		minScore = &rankMinScore
	}

	var resp *services.RankResponse
	if rankFile != "" {
		content, err := os.ReadFile(rankFile) // #nosec G304 -- path is a CLI argument
		if err != nil {
			return fmt.Errorf("failed to read resume file %s: %w", rankFile, err)
		}
		fileType := rankFileType
		if fileType == "" {
			fileType = filepath.Ext(rankFile)
		}
		resp, err = eng.RankFile(cmd.Context(), services.FileRankRequest{Content: content, FileType: fileType, TopN: topN, MinScore: minScore})
		if err != nil {
			return err
		}
	} else {
		resp, err = eng.Rank(cmd.Context(), services.RankRequest{Query: rankText, TopN: topN, MinScore: minScore})
		if err != nil {
			return err
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}
