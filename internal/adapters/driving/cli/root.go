// Package cli provides the marque command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ferndale-labs/marque/internal/logger"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "marque",
	Short: "Personal semantic bookmarking server",
	Long: `Marque stores captured web pages, embeds their content in overlapping
chunks, and answers natural-language queries with the most semantically
similar pages.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.marque/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
