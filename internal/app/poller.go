package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hollandm/squeezectl/internal/lms"
	"github.com/hollandm/squeezectl/internal/state"
)

const (
	defaultPollInterval = 1 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence. Consecutive poll failures stretch the cadence so an
// unreachable server is not hammered. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, client *lms.Client, playerID string, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		for {
			refresh(ctx, store, client, playerID)

			wait := calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, client *lms.Client, playerID string) {
	status, err := client.PlayerStatus(ctx, playerID, false)
	if err != nil {
		store.Update(nil, err)
		log.Debug().Err(err).Str("player", playerID).Msg("status poll failed")
		return
	}
	store.Update(&status, nil)
}

// calculateBackoff doubles the poll interval per consecutive failure, capped
// at maxBackoff. Zero failures polls at the base interval.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
