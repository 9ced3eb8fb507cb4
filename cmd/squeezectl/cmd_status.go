package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollandm/squeezectl/internal/lms"
	"github.com/hollandm/squeezectl/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a player's current status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	playerID, err := resolvePlayer(ctx, client)
	if err != nil {
		return err
	}

	status, err := client.PlayerStatus(ctx, playerID, false)
	if err != nil {
		return err
	}

	printStatus(status)
	return nil
}

func printStatus(status lms.PlayerStatus) {
	fmt.Printf("%s (%s)\n", status.PlayerName, status.StatusText)
	fmt.Printf("  Power:   %s\n", status.Power)
	fmt.Printf("  Volume:  %d%%\n", status.Volume)
	if status.ShuffleModeText != "" {
		fmt.Printf("  Shuffle: %s\n", status.ShuffleModeText)
	}
	if status.RepeatModeText != "" {
		fmt.Printf("  Repeat:  %s\n", status.RepeatModeText)
	}
	if status.PlaylistCount > 0 {
		// Playlist position is zero-based on the wire; show it one-based.
		fmt.Printf("  Track:   %d of %d\n", status.PlaylistPosition+1, status.PlaylistCount)
	}

	track := status.CurrentTrack
	if track == nil {
		return
	}
	if title := track.Title(); title != "" {
		fmt.Printf("  Title:   %s\n", title)
	}
	if artist := track.Artist(); artist != "" {
		fmt.Printf("  Artist:  %s\n", artist)
	}
	if album := track.Album(); album != "" {
		fmt.Printf("  Album:   %s\n", album)
	}
	if track.Duration() > 0 {
		fmt.Printf("  Time:    %s / %s\n",
			ui.FormatSeconds(track.Position()), ui.FormatSeconds(track.Duration()))
	}
}
