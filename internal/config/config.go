// Package config provides YAML-based server configuration loading for
// the blockduel coordinator.
package config

import "fmt"

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Game    GameConfig    `yaml:"game"`
}

// ServerConfig defines the HTTP/websocket gateway parameters.
type ServerConfig struct {
	Addr   string `yaml:"addr"`
	WebDir string `yaml:"web_dir"`
	DBPath string `yaml:"db_path"`
}

// SessionConfig defines session lifecycle parameters.
type SessionConfig struct {
	TTLMinutes   int `yaml:"ttl_minutes"`   // Session lifetime regardless of activity
	SweepSeconds int `yaml:"sweep_seconds"` // Janitor interval
	CodeLength   int `yaml:"code_length"`   // Join code length
	CodeRetries  int `yaml:"code_retries"`  // Collision retries before widening
}

// GameConfig defines default game settings, overridable per session.
type GameConfig struct {
	ColorCount     int `yaml:"color_count"`
	DropIntervalMs int `yaml:"drop_interval_ms"`
}

// Validate checks the configuration for values the server cannot run
// with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr must not be empty")
	}
	if c.Session.TTLMinutes < 1 {
		return fmt.Errorf("config: session.ttl_minutes must be positive, got %d", c.Session.TTLMinutes)
	}
	if c.Session.SweepSeconds < 1 {
		return fmt.Errorf("config: session.sweep_seconds must be positive, got %d", c.Session.SweepSeconds)
	}
	if c.Session.CodeLength < 3 || c.Session.CodeLength > 8 {
		return fmt.Errorf("config: session.code_length must be between 3 and 8, got %d", c.Session.CodeLength)
	}
	if c.Session.CodeRetries < 1 {
		return fmt.Errorf("config: session.code_retries must be positive, got %d", c.Session.CodeRetries)
	}
	if c.Game.ColorCount < 3 || c.Game.ColorCount > 6 {
		return fmt.Errorf("config: game.color_count must be between 3 and 6, got %d", c.Game.ColorCount)
	}
	if c.Game.DropIntervalMs < 50 {
		return fmt.Errorf("config: game.drop_interval_ms must be at least 50, got %d", c.Game.DropIntervalMs)
	}
	return nil
}
