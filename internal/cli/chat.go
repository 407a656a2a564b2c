package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/revchat/internal/conversation"
	"github.com/sprite-ai/revchat/internal/format"
	"github.com/sprite-ai/revchat/internal/model"
	"github.com/sprite-ai/revchat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	Long: `Open the terminal chat. Press ctrl+t to switch between the chat agent
and the code review agent, and f1 for all shortcuts.

Examples:
  revchat chat                 # start in chat mode
  revchat chat --mode review   # start in code review mode`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringP("mode", "m", "", "initial mode: chat or review (default from ui.mode)")
}

func runChat(cmd *cobra.Command, args []string) error {
	modeName := cfg.UI.Mode
	if cmd.Flags().Changed("mode") {
		modeName, _ = cmd.Flags().GetString("mode")
	}
	mode, err := model.ParseAgentMode(modeName)
	if err != nil {
		return err
	}

	review, err := newReviewBackend(cfg.Review)
	if err != nil {
		return err
	}

	orch := conversation.NewOrchestrator(
		conversation.NewStore(mode),
		newChatBackend(cfg.Chat),
		review,
	)
	if err := tui.Run(cmd.Context(), orch, format.NewCache(cfg.Format.CacheCapacity)); err != nil {
		return fmt.Errorf("running chat UI: %w", err)
	}
	return nil
}
