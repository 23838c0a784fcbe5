package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docqa/internal/analysis"
	"docqa/internal/config"
)

var (
	askJSON    bool
	askTimeout time.Duration
)

var askCmd = &cobra.Command{
	Use:   "ask [url] [question...]",
	Short: "Ask one or more questions about a document",
	Long: `Sends a document link and questions to the analysis service and prints each
answer under its question. The link is normalized first; share links are
rewritten to direct downloads.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the raw answers as JSON")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 0, "override the request timeout (e.g. 90s)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	questions := args[1:]
	resp, err := client.Submit(context.Background(), args[0], questions)
	if err != nil {
		return describeFailure(err)
	}

	if askJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answers: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(resp.Answers) == 0 {
		cmd.Println("No answers returned.")
		return nil
	}
	for i, q := range questions {
		if i >= len(resp.Answers) {
			break
		}
		cmd.Printf("Q%d: %s\n", i+1, q)
		cmd.Printf("A%d: %s\n", i+1, resp.Answers[i])
		cmd.Println()
	}
	return nil
}

func newClient() (*analysis.Client, error) {
	cfg := config.Load()
	if err := cfg.ValidateClient(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	cc := cfg.ClientConfig()
	if askTimeout > 0 {
		cc.Timeout = askTimeout
	}
	return analysis.New(cc), nil
}

// describeFailure keeps the error kind at the front of the message so a bad
// link reads differently from a backend outage.
func describeFailure(err error) error {
	if analysis.KindOf(err) == analysis.ErrorInvalidReference {
		return fmt.Errorf("%w (use a direct .pdf link or a Google Drive, Dropbox or OneDrive share link)", err)
	}
	return fmt.Errorf("analysis request failed: %w", err)
}
