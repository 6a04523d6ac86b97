package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/chatline/internal/models"
	"github.com/spf13/cobra"
)

var conversationsFormat string

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"ls"},
	Short:   "List your past conversations",
	Long: `List the conversations stored for the configured user.

Examples:
  chatline conversations
  chatline conversations --user 3
  chatline conversations --format json`,
	Args: cobra.NoArgs,
	RunE: runConversations,
}

func init() {
	conversationsCmd.Flags().StringVarP(&conversationsFormat, "format", "f", formatText, "output format: text, json or yaml")
}

func runConversations(cmd *cobra.Command, args []string) error {
	if err := validateFormat(conversationsFormat); err != nil {
		return err
	}
	ctx := context.Background()

	convs, err := apiClient.ListConversations(ctx, models.ID(cfg.UserID))
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}

	return writeConversations(cmd.OutOrStdout(), conversationsFormat, convs)
}
