package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent ragbench configuration stored as
// config.toml in the .ragbench/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Generation  GenerationConfig  `toml:"generation"`
	Runstate    RunstateConfig    `toml:"runstate"`
	Eventstream EventstreamConfig `toml:"eventstream"`
}

// GenerationConfig holds settings for the answer generation run.
type GenerationConfig struct {
	Endpoint    string `toml:"endpoint,omitempty"`
	Model       string `toml:"model,omitempty"`
	MaxTokens   uint   `toml:"max_tokens,omitempty"`
	TaskDelayMs uint   `toml:"task_delay_ms,omitempty"`
}

// RunstateConfig holds resume cache settings.
type RunstateConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// EventstreamConfig holds task event publishing settings.
type EventstreamConfig struct {
	Enabled bool     `toml:"enabled,omitempty"`
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"generation.endpoint": {
		get: func(c *Config) string { return c.Generation.Endpoint },
		set: func(c *Config, v string) error { c.Generation.Endpoint = v; return nil },
	},
	"generation.model": {
		get: func(c *Config) string { return c.Generation.Model },
		set: func(c *Config, v string) error { c.Generation.Model = v; return nil },
	},
	"generation.max_tokens": {
		get: func(c *Config) string {
			if c.Generation.MaxTokens == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Generation.MaxTokens), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for generation.max_tokens: %w", err)
			}
			c.Generation.MaxTokens = uint(n)
			return nil
		},
	},
	"generation.task_delay_ms": {
		get: func(c *Config) string {
			return strconv.FormatUint(uint64(c.Generation.TaskDelayMs), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for generation.task_delay_ms: %w", err)
			}
			c.Generation.TaskDelayMs = uint(n)
			return nil
		},
	},
	"runstate.sqlite_path": {
		get: func(c *Config) string { return c.Runstate.SQLitePath },
		set: func(c *Config, v string) error { c.Runstate.SQLitePath = v; return nil },
	},
	"eventstream.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Eventstream.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for eventstream.enabled: %w", err)
			}
			c.Eventstream.Enabled = b
			return nil
		},
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.Eventstream.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Eventstream.Brokers = nil
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					c.Eventstream.Brokers = append(c.Eventstream.Brokers, part)
				}
			}
			return nil
		},
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.Eventstream.Topic },
		set: func(c *Config, v string) error { c.Eventstream.Topic = v; return nil },
	},
}
