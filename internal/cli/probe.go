package cli

import (
	"context"

	"github.com/spf13/cobra"

	"docqa/internal/analysis"
)

var probeCmd = &cobra.Command{
	Use:   "probe [url]",
	Short: "Check a document link end to end with a fixed question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Probe(context.Background(), args[0])
		if err != nil {
			return describeFailure(err)
		}
		cmd.Printf("Q: %s\n", analysis.ProbeQuestion)
		if len(resp.Answers) == 0 {
			cmd.Println("A: (no answer)")
			return nil
		}
		cmd.Printf("A: %s\n", resp.Answers[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
