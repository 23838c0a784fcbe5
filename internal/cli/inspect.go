package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"docqa/internal/config"
	"docqa/internal/reference"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [url]",
	Short: "Show how a document link would be classified and rewritten",
	Long: `Classifies a document link and prints the URL that would be sent to the
analysis service. No network call is made.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(inspectCmd)
}

type inspectResult struct {
	reference.Reference
	Acceptable bool `json:"acceptable"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	ref := config.Load().Normalizer().Parse(args[0])
	res := inspectResult{Reference: ref, Acceptable: ref.Kind != reference.KindUnrecognized}

	if inspectJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal reference: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if !res.Acceptable {
		cmd.Println("Not acceptable: use a direct .pdf link or a Google Drive, Dropbox or OneDrive share link.")
		return nil
	}
	cmd.Printf("Kind:       %s\n", ref.Kind)
	cmd.Printf("Normalized: %s\n", ref.Normalized)
	return nil
}
