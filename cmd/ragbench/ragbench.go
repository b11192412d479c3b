// Package ragbenchcmder
package ragbenchcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/ragbenchco/ragbench/cmd/ragbench/auth"
	checkcmder "github.com/ragbenchco/ragbench/cmd/ragbench/check"
	configcmder "github.com/ragbenchco/ragbench/cmd/ragbench/config"
	generatecmder "github.com/ragbenchco/ragbench/cmd/ragbench/generate"
	scorecmder "github.com/ragbenchco/ragbench/cmd/ragbench/score"
	versioncmder "github.com/ragbenchco/ragbench/cmd/ragbench/version"
)

const ragbenchLongDesc string = `Ragbench generates benchmark submissions for retrieval-augmented
question answering tasks.

Typical workflow:
  ragbench auth                 Store generation API keys
  ragbench generate tasks.jsonl Generate predictions for a task file
  ragbench check predictions.jsonl
                                Validate the submission format
  ragbench score predictions.jsonl tasks.jsonl
                                Estimate the submission's quality score`

const ragbenchShortDesc string = "Ragbench - RAG benchmark answer generation"

func NewRagbenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragbench",
		Short: ragbenchShortDesc,
		Long:  ragbenchLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .ragbench/ directory")

	// Add subcommands
	cmd.AddCommand(generatecmder.NewGenerateCmd())
	cmd.AddCommand(checkcmder.NewCheckCmd())
	cmd.AddCommand(scorecmder.NewScoreCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
