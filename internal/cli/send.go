package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/chatline/internal/models"
	"github.com/raphaelgruber/chatline/internal/session"
	"github.com/spf13/cobra"
)

var sendConversation string

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send one message and print the reply",
	Long: `Send a single message and print the assistant's reply.

Without --conversation a new conversation is started; its id is printed
to stderr so it can be continued later.

Examples:
  chatline send "What's the weather like on Mars?"
  chatline send --conversation 42 "And on Venus?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendConversation, "conversation", "c", "", "continue this conversation")
}

func runSend(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	ctx := context.Background()

	ctrl := newController(ctx, session.SyncRunner)
	defer ctrl.Close()

	reply, id, err := sendOnce(ctrl, models.ID(sendConversation), text)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply)
	fmt.Fprintf(cmd.ErrOrStderr(), "conversation: %s\n", id)
	return nil
}

// sendOnce optionally opens conversation, sends text and returns the reply.
// ctrl must run its transport calls synchronously.
func sendOnce(ctrl *session.Controller, conversation models.ID, text string) (string, models.ID, error) {
	if strings.TrimSpace(text) == "" {
		return "", "", errors.New("message is empty")
	}

	if !conversation.IsZero() {
		if err := ctrl.Select(conversation); err != nil {
			return "", "", fmt.Errorf("open conversation: %w", err)
		}
		if last, ok := lastMessage(ctrl.Snapshot()); ok && last.Failed {
			return "", "", fmt.Errorf("open conversation %s: %s", conversation, last.Text)
		}
	}

	if err := ctrl.Send(text); err != nil {
		return "", "", fmt.Errorf("send message: %w", err)
	}

	snap := ctrl.Snapshot()
	last, ok := lastMessage(snap)
	if !ok || last.IsLoading {
		return "", "", errors.New("send message: no reply")
	}
	if last.Failed {
		return "", "", fmt.Errorf("send message: %s", last.Text)
	}
	return last.Text, snap.ConversationID, nil
}

func lastMessage(snap session.Snapshot) (models.Message, bool) {
	if len(snap.Messages) == 0 {
		return models.Message{}, false
	}
	return snap.Messages[len(snap.Messages)-1], true
}
