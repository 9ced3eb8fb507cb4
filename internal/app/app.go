package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hollandm/squeezectl/internal/lms"
	"github.com/hollandm/squeezectl/internal/state"
	"github.com/hollandm/squeezectl/internal/ui"
)

// Options configure the live monitor.
type Options struct {
	ServerURL string
	PlayerID  string // empty prompts an interactive player pick
	PollEvery int    // seconds; zero uses default
}

// Run boots the monitor TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	client, err := lms.Connect(ctx, opts.ServerURL, lms.Options{Logger: log.Logger})
	if err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}

	playerID := opts.PlayerID
	if playerID == "" {
		players, err := client.ListPlayers(ctx)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		playerID, err = ui.SelectPlayer(players)
		if err != nil {
			return err
		}
		if playerID == "" {
			return nil
		}
	}

	store := &state.Store{}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Start background poller
	StartPoller(ctx, store, client, playerID, interval)

	// Do initial refresh to populate store before UI starts
	refresh(ctx, store, client, playerID)

	return ui.RunMonitor(ui.MonitorOptions{
		Context:  ctx,
		Client:   client,
		Store:    store,
		PlayerID: playerID,
		PollTick: interval,
	})
}
