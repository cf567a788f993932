package config

import (
	_ "embed"
)

//go:embed defaults/blockduel.yaml
var defaultYAML []byte

// Default returns the stock server configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:   ":8080",
			WebDir: "web",
			DBPath: "~/.blockduel/matches.db",
		},
		Session: SessionConfig{
			TTLMinutes:   30,
			SweepSeconds: 60,
			CodeLength:   4,
			CodeRetries:  2048,
		},
		Game: GameConfig{
			ColorCount:     4,
			DropIntervalMs: 500,
		},
	}
}
