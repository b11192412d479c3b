// Package checkcmder provides the `ragbench check` CLI command.
package checkcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragbenchco/ragbench/pkg/checker"
	"github.com/ragbenchco/ragbench/pkg/cliui"
)

const checkLongDesc string = `Validate the format of a predictions file.

Checks every record for the required submission fields, well-formed
contexts, and non-empty predictions. Issues fail the check; warnings
(such as more than ten contexts on a record) do not.

Examples:
  ragbench check predictions.jsonl`

const checkShortDesc string = "Validate the format of a predictions file"

// ErrFormatCheckFailed is returned when the submission has format issues.
var ErrFormatCheckFailed = errors.New("format check failed")

// NewCheckCmd creates the check cobra command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <predictions-file>",
		Short: checkShortDesc,
		Long:  checkLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0])
		},
	}

	return cmd
}

func runCheck(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\n%s\n", cliui.HeaderStyle.Render("ragbench check"))

	var report *checker.Report
	if err := cliui.Step(out, "Checking "+path, func() error {
		var loadErr error
		report, loadErr = checker.CheckFile(path)
		return loadErr
	}); err != nil {
		return err
	}

	fmt.Fprintln(out, report.Summary())
	fmt.Fprintf(out, "\n  %s %s\n\n", cliui.Mark(checkErr(report)), path)

	return checkErr(report)
}

func checkErr(report *checker.Report) error {
	if report.Ok() {
		return nil
	}

	return fmt.Errorf("%w: %d issues", ErrFormatCheckFailed, len(report.Issues))
}
