package main

import (
	"github.com/spf13/cobra"
)

var commandCmd = &cobra.Command{
	Use:   "command <cmd> [params...]",
	Short: "Send a raw command to a player",
	Long: "Send an arbitrary protocol command with its parameters, for " +
		"operations squeezectl has no dedicated subcommand for. Example: " +
		"squeezectl command playlist shuffle 1",
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

func init() {
	rootCmd.AddCommand(commandCmd)
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	playerID, err := resolvePlayer(ctx, client)
	if err != nil {
		return err
	}
	return client.SendCommand(ctx, playerID, args[0], args[1:])
}
