// Package cli provides the command-line interface for chatline.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/chatline/internal/client"
	"github.com/raphaelgruber/chatline/internal/config"
	"github.com/raphaelgruber/chatline/internal/metrics"
	"github.com/raphaelgruber/chatline/internal/models"
	"github.com/raphaelgruber/chatline/internal/session"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string
	userID    string

	// Global config, logger and service client
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	collector  *metrics.Collector
	apiClient  *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chatline",
	Short: "Chat with the assistant from your terminal",
	Long: `Chatline is a terminal client for the conversation service.

Hold several persisted conversations with the assistant, switch between
them, or start a new one. Run without a subcommand to open the
interactive chat.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if serverURL != "" {
			cfg.ServerURL = serverURL
		}
		if userID != "" {
			cfg.UserID = userID
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		// The full-screen UI owns the terminal, so it only logs to file.
		if isInteractive(cmd) && isTerminal() {
			logger, logCleanup = config.SetupFileLogger(cfg.LogFile, cfg.LogLevel)
		} else {
			logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		}
		slog.SetDefault(logger)

		collector = metrics.NewCollector()
		apiClient = client.New(cfg.ServerURL,
			client.WithTimeout(cfg.ClientTimeout),
			client.WithLogger(logger),
			client.WithCollector(collector),
		)

		logger.Debug("configured", "server", apiClient.BaseURL(), "user_id", cfg.UserID)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if verbose && collector != nil {
			printStats(os.Stderr, collector.Snapshot())
		}
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
	RunE: runChat,
}

// newController creates a session controller bound to the configured user.
func newController(ctx context.Context, runner session.Runner) *session.Controller {
	return session.New(ctx, apiClient, models.ID(cfg.UserID),
		session.WithLogger(logger),
		session.WithRunner(runner),
	)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging and transport stats")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "conversation service URL (default $CHATLINE_SERVER_URL)")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user id (default $CHATLINE_USER_ID)")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sendCmd)
}
