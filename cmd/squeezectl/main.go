package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hollandm/squeezectl/internal/config"
	"github.com/hollandm/squeezectl/internal/lms"
	"github.com/hollandm/squeezectl/internal/logging"
	"github.com/hollandm/squeezectl/internal/ui"
)

var (
	flagServer  string
	flagConfig  string
	flagPlayer  string
	flagVerbose bool

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "squeezectl",
	Short: "Control SqueezeBox players from the command line",
	Long: "squeezectl talks to a SqueezeBox-compatible media server over its JSON " +
		"API to list players, inspect and control playback, and search the library.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.Setup(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "server URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.config/squeezectl/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&flagPlayer, "player", "p", "", "player id or name (prompts when omitted)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// serverURL resolves the server to talk to: --server wins, then the config
// file, then the built-in default.
func serverURL() string {
	return config.ServerURL(flagServer, flagConfig)
}

func newClient(ctx context.Context) (*lms.Client, error) {
	client, err := lms.Connect(ctx, serverURL(), lms.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", serverURL(), err)
	}
	return client, nil
}

// resolvePlayer turns --player into a player id. Names match
// case-insensitively; with no flag and more than one player an interactive
// picker runs, and a single player is chosen automatically.
func resolvePlayer(ctx context.Context, client *lms.Client) (string, error) {
	players, err := client.ListPlayers(ctx)
	if err != nil {
		return "", err
	}
	if len(players) == 0 {
		return "", fmt.Errorf("no players connected to %s", serverURL())
	}

	if flagPlayer != "" {
		for _, p := range players {
			if p.ID == flagPlayer || strings.EqualFold(p.Name, flagPlayer) {
				return p.ID, nil
			}
		}
		return "", fmt.Errorf("no player matching %q", flagPlayer)
	}

	if len(players) == 1 {
		return players[0].ID, nil
	}

	id, err := ui.SelectPlayer(players)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("no player selected")
	}
	return id, nil
}
