// Package scorecmder provides the `ragbench score` CLI command.
package scorecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragbenchco/ragbench/pkg/cliui"
	"github.com/ragbenchco/ragbench/pkg/logger"
	"github.com/ragbenchco/ragbench/pkg/quality"
)

const scoreLongDesc string = `Estimate the quality score of a predictions file.

Compares a predictions file against the reference task file it was
generated from: refusal agreement with each task's answerability,
response length distribution, and a predicted benchmark score. The
submission must cover exactly the reference task set.

Examples:
  ragbench score predictions.jsonl tasks.jsonl`

const scoreShortDesc string = "Estimate the quality score of a predictions file"

// NewScoreCmd creates the score cobra command.
func NewScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <predictions-file> <tasks-file>",
		Short: scoreShortDesc,
		Long:  scoreLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			return runScore(cmd, args[0], args[1], debug)
		},
	}

	return cmd
}

func runScore(cmd *cobra.Command, submissionPath, referencePath string, debug bool) error {
	log := logger.NewLogger(debug)
	defer log.Sync()

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\n%s\n", cliui.HeaderStyle.Render("ragbench score"))

	var report *quality.Report
	if err := cliui.Step(out, "Scoring "+submissionPath, func() error {
		var validateErr error
		report, validateErr = quality.Validate(submissionPath, referencePath, log)
		return validateErr
	}); err != nil {
		return err
	}

	fmt.Fprintln(out, report.Summary())
	fmt.Fprintln(out)

	return nil
}
