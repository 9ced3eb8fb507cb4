package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start playback",
	RunE:  playerCommand("play"),
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Toggle pause",
	RunE:  playerCommand("pause"),
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback",
	RunE:  playerCommand("stop"),
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to the next track",
	RunE:  runNext,
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go to the previous track, or restart the current one",
	Long: "Restarts the current track when playback is past the threshold, " +
		"otherwise jumps to the previous track.",
	RunE: runPrev,
}

var jumpCmd = &cobra.Command{
	Use:   "jump <index>",
	Short: "Jump to a playlist track by number (1-based)",
	Args:  cobra.ExactArgs(1),
	RunE:  runJump,
}

var seekCmd = &cobra.Command{
	Use:   "seek <seconds>",
	Short: "Seek to a position in the current track",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeek,
}

var nowPlayingCmd = &cobra.Command{
	Use:   "now-playing",
	Short: "Show the now playing screen on the player's display",
	RunE:  runNowPlaying,
}

var flagPrevThreshold int

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(jumpCmd)
	rootCmd.AddCommand(seekCmd)
	rootCmd.AddCommand(nowPlayingCmd)

	prevCmd.Flags().IntVar(&flagPrevThreshold, "threshold", 5, "seconds into the track before prev restarts it")
}

// playerCommand builds a RunE that sends a single bare command to the
// resolved player.
func playerCommand(command string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}
		playerID, err := resolvePlayer(ctx, client)
		if err != nil {
			return err
		}
		return client.SendCommand(ctx, playerID, command, nil)
	}
}

func runNext(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	playerID, err := resolvePlayer(ctx, client)
	if err != nil {
		return err
	}
	return client.NextTrack(ctx, playerID)
}

func runPrev(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	playerID, err := resolvePlayer(ctx, client)
	if err != nil {
		return err
	}
	return client.PreviousTrack(ctx, playerID, flagPrevThreshold)
}

func runJump(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil || index < 1 {
		return fmt.Errorf("track number must be a positive integer, got %q", args[0])
	}

	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	playerID, err := resolvePlayer(ctx, client)
	if err != nil {
		return err
	}
	// Playlist indexes are zero-based on the wire.
	return client.JumpToTrack(ctx, playerID, index-1)
}

func runSeek(cmd *cobra.Command, args []string) error {
	seconds, err := strconv.Atoi(args[0])
	if err != nil || seconds < 0 {
		return fmt.Errorf("seek position must be a non-negative integer, got %q", args[0])
	}

	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	playerID, err := resolvePlayer(ctx, client)
	if err != nil {
		return err
	}
	return client.SeekToTime(ctx, playerID, seconds)
}

func runNowPlaying(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	playerID, err := resolvePlayer(ctx, client)
	if err != nil {
		return err
	}
	return client.ShowNowPlaying(ctx, playerID)
}
