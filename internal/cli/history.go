package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/chatline/internal/models"
	"github.com/spf13/cobra"
)

var historyFormat string

var historyCmd = &cobra.Command{
	Use:   "history <conversation-id>",
	Short: "Print the messages of a conversation",
	Long: `Print the full message history of a conversation, oldest first.

Examples:
  chatline history 42
  chatline history 42 --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", formatText, "output format: text, json or yaml")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := validateFormat(historyFormat); err != nil {
		return err
	}
	id := models.ID(args[0])
	ctx := context.Background()

	remote, err := apiClient.LoadMessages(ctx, id)
	if err != nil {
		return fmt.Errorf("load conversation %s: %w", id, err)
	}

	return writeMessages(cmd.OutOrStdout(), historyFormat, models.MessagesFromRemote(remote))
}
