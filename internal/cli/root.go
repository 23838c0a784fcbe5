package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about a PDF behind a link",
	Long: `docqa validates and normalizes document links (direct PDFs, Google Drive,
Dropbox and OneDrive share links) and sends them with your questions to the
document analysis service.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
