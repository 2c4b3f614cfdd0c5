package cli

import "github.com/spf13/cobra"

// Version is set at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the marque version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("marque " + Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
