package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hollandm/squeezectl/internal/config"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Show server version and library totals",
	RunE:  runServer,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update the saved configuration",
	RunE:  runConfig,
}

var flagSetServer string

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVar(&flagSetServer, "set-server", "", "save a new server URL to the config file")
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	status, err := client.ServerStatus(ctx)
	if err != nil {
		return err
	}

	name := status.ServerName
	if name == "" {
		name = serverURL()
	}
	fmt.Printf("%s\n", name)
	fmt.Printf("  Version:  %s\n", status.Version)
	if status.UUID != "" {
		fmt.Printf("  UUID:     %s\n", status.UUID)
	}
	fmt.Printf("  Players:  %d\n", status.PlayerCount)
	fmt.Printf("  Endpoint: %s\n", client.EndpointPath())

	if len(status.LibraryTotals) > 0 {
		fmt.Println("  Library:")
		categories := make([]string, 0, len(status.LibraryTotals))
		for category := range status.LibraryTotals {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Printf("    %-10s %d\n", category, status.LibraryTotals[category])
		}
	}
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if flagSetServer != "" {
		if err := config.SaveServerURL(flagConfig, flagSetServer); err != nil {
			return err
		}
		fmt.Printf("Server URL saved: %s\n", flagSetServer)
		return nil
	}

	cfg := config.Load(flagConfig)
	fmt.Printf("Server URL: %s\n", cfg.Server.URL)
	return nil
}
