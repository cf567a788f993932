package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockduel/internal/config"
	"github.com/vovakirdan/blockduel/internal/duel"
	"github.com/vovakirdan/blockduel/internal/server"
	"github.com/vovakirdan/blockduel/internal/storage"
)

var (
	flagAddr   string
	flagWebDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the blockduel server",
	Long: `Start the websocket server that coordinates duels.

Clients connect to ws://<addr>/ws; static game assets are served from
the web directory at /. Finished matches are recorded to the database
if one can be opened (the server runs without it otherwise).

Examples:
  blockduel serve                       # Listen on :8080
  blockduel serve --addr :9000          # Listen on port 9000
  blockduel serve --web ./public        # Serve assets from ./public
  blockduel serve --db ./matches.db     # Use a specific database`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&flagWebDir, "web", "", "Static asset directory (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	if flagWebDir != "" {
		cfg.Server.WebDir = flagWebDir
	}
	if flagDBPath != "" {
		cfg.Server.DBPath = flagDBPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "blockduel",
	})

	coord := duel.NewCoordinator(duel.Config{
		SessionTTL:  time.Duration(cfg.Session.TTLMinutes) * time.Minute,
		SweepPeriod: time.Duration(cfg.Session.SweepSeconds) * time.Second,
		CodeLength:  cfg.Session.CodeLength,
		CodeRetries: cfg.Session.CodeRetries,
		Defaults: duel.Settings{
			ColorCount:     cfg.Game.ColorCount,
			DropIntervalMs: cfg.Game.DropIntervalMs,
		},
	}, logger)

	store, err := storage.Open(cfg.Server.DBPath)
	if err != nil {
		logger.Warn("could not open match database", "error", err)
		// Continue without persistence
	} else {
		coord.SetRecorder(store)
		defer store.Close()
	}

	coord.Start()
	defer coord.Stop()

	srv := server.New(server.Config{
		Addr:   cfg.Server.Addr,
		WebDir: cfg.Server.WebDir,
	}, coord, logger)

	fmt.Printf("Starting blockduel server on %s\n", cfg.Server.Addr)
	fmt.Printf("WebSocket endpoint: ws://localhost%s/ws\n", cfg.Server.Addr)
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
