package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockduel/internal/config"
	"github.com/vovakirdan/blockduel/internal/storage"
)

var flagLimit int

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Show recently finished matches",
	Long: `Display the most recent match results, newest first.

Examples:
  blockduel matches
  blockduel matches --limit 50`,
	Run: runMatches,
}

func init() {
	matchesCmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum number of matches to show")
}

func runMatches(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	dbPath := cfg.Server.DBPath
	if flagDBPath != "" {
		dbPath = flagDBPath
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening match database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	matches, err := store.RecentMatches(flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving matches: %v\n", err)
		os.Exit(1)
	}

	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("  %-6s  %-8s  %-16s  %-16s  %-8s  %s",
		"Code", "Mode", "Winner", "Loser", "Length", "Date")))
	for _, m := range matches {
		date := dimStyle.Render(m.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("  %-6s  %-8s  %-16s  %-16s  %-8s  %s\n",
			m.SessionCode, m.Mode, m.WinnerName, m.LoserName,
			fmt.Sprintf("%ds", m.DurationSecs), date)
	}

	count, err := store.MatchCount()
	if err == nil {
		fmt.Println()
		fmt.Printf("Total matches: %d\n", count)
	}
}
