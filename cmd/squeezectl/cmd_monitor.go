package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hollandm/squeezectl/internal/app"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch a player live with transport and volume keys",
	RunE:  runMonitor,
}

var flagPollEvery int

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVar(&flagPollEvery, "poll", 0, "poll interval in seconds")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	playerID := ""
	if flagPlayer != "" {
		client, err := newClient(ctx)
		if err != nil {
			return err
		}
		playerID, err = resolvePlayer(ctx, client)
		if err != nil {
			return err
		}
	}

	return app.Run(ctx, app.Options{
		ServerURL: serverURL(),
		PlayerID:  playerID,
		PollEvery: flagPollEvery,
	})
}
