package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hollandm/squeezectl/internal/lms"
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search the music library",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var flagSearchType string

const searchDisplayLimit = 10

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&flagSearchType, "type", "t", "all", "category to search: all, artists, albums, tracks")
}

func runSearch(cmd *cobra.Command, args []string) error {
	kind := lms.SearchKind(flagSearchType)
	if !kind.Valid() {
		return fmt.Errorf("unknown search type %q (want all, artists, albums, or tracks)", flagSearchType)
	}

	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	term := strings.Join(args, " ")
	results, err := client.Search(ctx, term, kind)
	if err != nil {
		return err
	}

	shown := 0
	shown += printMatches("Artists", results.Artists, "artist")
	shown += printMatches("Albums", results.Albums, "album")
	shown += printMatches("Tracks", results.Tracks, "title")
	if shown == 0 {
		fmt.Printf("No matches for %q.\n", term)
	}
	return nil
}

// printMatches lists up to searchDisplayLimit entries from one category and
// summarizes the rest. Returns the number of matches in the category.
func printMatches(heading string, items []map[string]any, nameKey string) int {
	if len(items) == 0 {
		return 0
	}
	fmt.Printf("%s (%d):\n", heading, len(items))
	for i, item := range items {
		if i == searchDisplayLimit {
			fmt.Printf("  ... and %d more\n", len(items)-searchDisplayLimit)
			break
		}
		name, _ := item[nameKey].(string)
		if name == "" {
			name = "(untitled)"
		}
		fmt.Printf("  %s\n", name)
	}
	return len(items)
}
