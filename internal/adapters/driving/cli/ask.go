package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed courses",
	Long: `Sends a question through the model backend. The model may search
the course index before answering; sources are listed under the answer.

Use --session to continue an earlier conversation.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session ID to continue")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := ensureChat(ctx); err != nil {
		return err
	}

	answer, err := chatService.Answer(ctx, args[0], askSession)
	if err != nil {
		var backendErr *domain.BackendError
		if errors.As(err, &backendErr) {
			return fmt.Errorf("call to LLM failed: %s", backendErr.Message)
		}
		return err
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, source := range answer.Sources {
			cmd.Printf("  - %s\n", source)
		}
	}
	cmd.Println()
	cmd.Printf("Session: %s\n", answer.SessionID)

	return nil
}
