package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Show or set a player's volume (0-100)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVolume,
}

var powerCmd = &cobra.Command{
	Use:       "power on|off",
	Short:     "Switch a player on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runPower,
}

func init() {
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(powerCmd)
}

func runVolume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	playerID, err := resolvePlayer(ctx, client)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		status, err := client.PlayerStatus(ctx, playerID, false)
		if err != nil {
			return err
		}
		fmt.Printf("%d%%\n", status.Volume)
		return nil
	}

	level, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("volume must be a number between 0 and 100, got %q", args[0])
	}
	return client.SetVolume(ctx, playerID, level)
}

func runPower(cmd *cobra.Command, args []string) error {
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("power takes on or off, got %q", args[0])
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
	return client.SetPower(ctx, playerID, on)
}
