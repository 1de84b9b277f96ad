package main

import (
	"fmt"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/diagnostics"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const defaultMinPassing = 70

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Grade a source file locally",
	Long:  "Grades a source file with the language-feature evaluator, or the structural evaluator when the language is unknown, and prints the result as JSON.",
	RunE:  runEvaluate,
}

var (
	evaluateFile       string
	evaluateLanguage   string
	evaluateMinPassing int
)

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateFile, "file", "f", "", "Path to the source file (required)")
	evaluateCmd.Flags().StringVarP(&evaluateLanguage, "language", "l", "", "Language of the file (default: from the extension)")
	evaluateCmd.Flags().IntVar(&evaluateMinPassing, "min-passing", defaultMinPassing, "Minimum passing score")

	if err := evaluateCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	res, err := diagnostics.EvaluateFile(cmd.Context(), evaluateFile, evaluateLanguage, evaluateMinPassing, logger.Named("evaluate"))
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
