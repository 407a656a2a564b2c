// Package cli implements the revchat command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/revchat/internal/config"
	"github.com/sprite-ai/revchat/internal/logger"
)

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "revchat",
	Short: "Chat and code review in the terminal",
	Long: `revchat routes messages to a chat agent or a code review agent and
renders the replies, with review annotations and code blocks, in the
terminal or over an HTTP API.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (default ./revchat.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(chatCmd, serveCmd, formatCmd, reviewCmd, versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		c.Log.Level = level
	}

	var out io.Writer = os.Stderr
	switch {
	case c.Log.File != "":
		f, err := logger.OpenFile(c.Log.File)
		if err != nil {
			return err
		}
		out = f
	case cmd == chatCmd:
		// The chat UI owns the terminal.
		out = io.Discard
	}
	if err := logger.Init(c.Log.Level, c.Log.Format, out); err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	cfg = c
	return nil
}
