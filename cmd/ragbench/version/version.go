// Package versioncmder provides the `ragbench version` CLI command.
package versioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragbenchco/ragbench/pkg/utils"
)

const versionShortDesc string = "Display version information"

// NewVersionCmd creates the version cobra command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: versionShortDesc,
		Long:  "Display the version, commit, and build time of this CLI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd)
		},
	}

	return cmd
}

func runVersion(cmd *cobra.Command) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\nSha: %s\nBuilt at: %s\n",
		utils.Version, utils.Sha, utils.Buildtime)
	return nil
}
