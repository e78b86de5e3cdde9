// Package cli implements the hilabs command-line client: offline clause
// classification, template inspection, and document segmentation preview.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ravi-ivar-7/hilabs/internal/config"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hilabs",
		Short: "Contract clause classification toolkit",
		Long: "hilabs audits healthcare provider contracts against jurisdiction template\n" +
			"language, labelling each clause Standard, Non-Standard, or Ambiguous.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")

	root.AddCommand(newClassifyCmd())
	root.AddCommand(newTemplatesCmd())
	root.AddCommand(newSegmentCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hilabs %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}

// loadConfig loads configuration from the --config path, or defaults when no
// file is given.
func loadConfig() (*config.Config, error) {
	return config.NewLoader(configPath).Load()
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}
