package cli

import (
	"context"
	"os"

	"github.com/raphaelgruber/chatline/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	Long: `Open the interactive chat.

On a terminal this starts the full-screen UI:
  enter    send the message
  ctrl+n   start a new conversation
  tab      move between the input and the conversation list
  ctrl+r   refresh the conversation list
  esc      quit

When stdin is not a terminal, lines are read one by one instead.
Lines starting with / are commands: /list, /open <id>, /new, /quit.

Examples:
  chatline
  chatline chat --user 3
  printf 'hello\n/quit\n' | chatline chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if isTerminal() {
		ctrl := newController(ctx, session.GoRunner)
		defer ctrl.Close()
		return RunChatUI(ctrl)
	}

	ctrl := newController(ctx, session.SyncRunner)
	defer ctrl.Close()
	return RunREPL(ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
}

// isInteractive reports whether cmd opens the chat (the root command or chat).
func isInteractive(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "chat"
}

// isTerminal reports whether both stdin and stdout are attached to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
