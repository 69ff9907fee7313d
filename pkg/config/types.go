package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent localmem configuration stored as
// config.toml in the .localmem/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Storage   StorageConfig   `toml:"storage"`
	API       APIConfig       `toml:"api"`
	Memory    MemoryConfig    `toml:"memory"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Splitter  SplitterConfig  `toml:"splitter"`
	Search    SearchConfig    `toml:"search"`
}

// StorageConfig holds storage settings shared by every surface.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// MemoryConfig holds memory engine settings.
type MemoryConfig struct {
	// Context is the default tenant used when a request omits one.
	Context string `toml:"context,omitempty"`

	// Mode is the default embedding mode on first start. Once a switch
	// has been persisted the mode state file takes precedence.
	Mode string `toml:"mode,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	OpenAIBaseURL string `toml:"openai_base_url,omitempty"`
	OllamaTarget  string `toml:"ollama_target,omitempty"`
	OllamaModel   string `toml:"ollama_model,omitempty"`
}

// SplitterConfig holds narrative splitter settings.
type SplitterConfig struct {
	Model string `toml:"model,omitempty"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	Limit       int     `toml:"limit,omitempty"`
	BoostWeight float64 `toml:"boost_weight,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"memory.context": {
		get: func(c *Config) string { return c.Memory.Context },
		set: func(c *Config, v string) error { c.Memory.Context = v; return nil },
	},
	"memory.mode": {
		get: func(c *Config) string { return c.Memory.Mode },
		set: func(c *Config, v string) error { c.Memory.Mode = v; return nil },
	},
	"embedding.openai_base_url": {
		get: func(c *Config) string { return c.Embedding.OpenAIBaseURL },
		set: func(c *Config, v string) error { c.Embedding.OpenAIBaseURL = v; return nil },
	},
	"embedding.ollama_target": {
		get: func(c *Config) string { return c.Embedding.OllamaTarget },
		set: func(c *Config, v string) error { c.Embedding.OllamaTarget = v; return nil },
	},
	"embedding.ollama_model": {
		get: func(c *Config) string { return c.Embedding.OllamaModel },
		set: func(c *Config, v string) error { c.Embedding.OllamaModel = v; return nil },
	},
	"splitter.model": {
		get: func(c *Config) string { return c.Splitter.Model },
		set: func(c *Config, v string) error { c.Splitter.Model = v; return nil },
	},
	"search.limit": {
		get: func(c *Config) string {
			if c.Search.Limit == 0 {
				return ""
			}
			return strconv.Itoa(c.Search.Limit)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for search.limit: %w", err)
			}
			c.Search.Limit = n
			return nil
		},
	},
	"search.boost_weight": {
		get: func(c *Config) string {
			if c.Search.BoostWeight == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Search.BoostWeight, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for search.boost_weight: %w", err)
			}
			c.Search.BoostWeight = f
			return nil
		},
	},
}
