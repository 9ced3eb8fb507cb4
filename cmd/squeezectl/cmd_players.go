package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List players connected to the server",
	RunE:  runPlayers,
}

func init() {
	rootCmd.AddCommand(playersCmd)
}

func runPlayers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	players, err := client.ListPlayers(ctx)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		fmt.Println("No players connected.")
		return nil
	}

	for _, p := range players {
		state := "disconnected"
		if p.Connected {
			state = "connected"
		}
		fmt.Printf("%-24s %-20s %-12s %s\n", p.Name, p.ID, p.Model, state)
	}
	return nil
}
