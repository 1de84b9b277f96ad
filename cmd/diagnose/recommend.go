package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/diagnostics"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"github.com/spf13/cobra"
)

// errChecksFailed makes the command exit non-zero when a user timed out or failed.
var errChecksFailed = errors.New("one or more users failed")

const runTimeoutSlack = time.Minute

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Request recommendations for a set of users",
	Long:  "Requests recommendations for each user with its own timeout. A timeout or failed request is reported for that user and does not abort the run.",
	RunE:  runRecommend,
}

var (
	recommendURL       string
	recommendUsers     []string
	recommendLimit     int
	recommendTimeout   time.Duration
	recommendWorkers   int
	recommendDiversify bool
	recommendJSON      bool
)

func init() {
	recommendCmd.Flags().StringVar(&recommendURL, "url", diagnostics.DefaultBaseURL, "Base URL of the service")
	recommendCmd.Flags().StringSliceVar(&recommendUsers, "users", nil, "Comma-separated user ids (required)")
	recommendCmd.Flags().IntVar(&recommendLimit, "limit", 0, "Recommendations per user (0 uses the server default)")
	recommendCmd.Flags().DurationVar(&recommendTimeout, "timeout", diagnostics.DefaultTimeout, "Per-user request timeout")
	recommendCmd.Flags().IntVar(&recommendWorkers, "workers", runtime.NumCPU(), "Concurrent requests")
	recommendCmd.Flags().BoolVar(&recommendDiversify, "diversify", true, "Ask for diversified results")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "Print the report as JSON")

	if err := recommendCmd.MarkFlagRequired("users"); err != nil {
		panic(fmt.Sprintf("failed to mark users flag as required: %v", err))
	}
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	cfg := diagnostics.Config{
		BaseURL:   recommendURL,
		Users:     recommendUsers,
		Limit:     recommendLimit,
		Diversify: recommendDiversify,
		Timeout:   recommendTimeout,
		Workers:   recommendWorkers,
		Verbose:   verbose,
	}

	// Bound the whole run so a wedged server cannot hang the command.
	budget := time.Duration(len(recommendUsers))*recommendTimeout + runTimeoutSlack
	ctx, cancel := context.WithTimeout(cmd.Context(), budget)
	defer cancel()

	report, err := diagnostics.NewRunner(cfg, nil, logger.Named("diagnose")).Run(ctx)
	if err != nil && report == nil {
		return err
	}

	out := cmd.OutOrStdout()
	if recommendJSON {
		if werr := report.WriteJSON(out); werr != nil {
			return werr
		}
	} else if werr := report.WriteText(out); werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	if report.Failed() {
		return errChecksFailed
	}
	return nil
}
