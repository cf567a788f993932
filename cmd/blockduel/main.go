// blockduel is a realtime server for two-player falling-block duels.
// It pairs players into sessions, hands both sides a shared seed so
// their simulations stay in sync, and relays field updates and garbage
// lines between them.
//
// Usage:
//
//	blockduel serve              - Start the websocket server
//	blockduel matches            - Show recently finished matches
//
// Global flags:
//
//	--config <path>  - Path to a YAML config file
//	--db <path>      - Match database path (default: ~/.blockduel/matches.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig string
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockduel",
	Short: "Blockduel - realtime two-player duel server",
	Long: `Blockduel coordinates realtime two-player falling-block duels.

Players create private sessions joinable by a 4-character code, or let
the matchmaker pair them with a random opponent. The server relays
gameplay between the two peers; the game itself runs client-side.

Available commands:
  serve    - Start the websocket server
  matches  - Show recently finished matches

Examples:
  blockduel serve
  blockduel serve --addr :9000 --web ./public
  blockduel matches --limit 50`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to match database (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(matchesCmd)
}
