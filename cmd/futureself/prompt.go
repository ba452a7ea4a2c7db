package main

import (
	"fmt"
	"time"

	"futureself/internal/models"
	"futureself/internal/tokens"

	"github.com/spf13/cobra"
)

type promptOptions struct {
	UserID string
	PlanID string
}

// newPromptCommand prints what the provider would receive for a user's next
// turn, without calling it.
func newPromptCommand(root *rootOptions) *cobra.Command {
	opt := &promptOptions{}

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt and history window for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			contextType := "general"
			if opt.PlanID != "" {
				contextType = "plan"
			}
			req, err := models.ParseChatRequest("preview", contextType, opt.PlanID)
			if err != nil {
				return err
			}

			cfg, l, err := loadConfig(root)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer a.Close()

			select {
			case <-tokens.Warm():
			case <-time.After(10 * time.Second):
				l.Warnw("Token encoding not loaded, counts are estimates")
			}

			preview, err := a.chat.Preview(cmd.Context(), opt.UserID, req.Context)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "=== system (%s) ===\n%s\n\n", req.Context.Kind(), preview.SystemPrompt)
			fmt.Fprintf(out, "=== history (%d messages) ===\n", len(preview.Window))
			for _, m := range preview.Window {
				fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
			}
			fmt.Fprintf(out, "\n~%d prompt tokens\n", preview.PromptTokens)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opt.UserID, "user", "", "User id to build the prompt for")
	flags.StringVar(&opt.PlanID, "plan", "", "Plan id; omit for general conversation")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
