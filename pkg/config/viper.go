package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/NickSmet/mcp-local-memory/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the LOCALMEM_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (LOCALMEM_API_LISTEN, LOCALMEM_MEMORY_MODE, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: LOCALMEM_API_LISTEN, LOCALMEM_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("LOCALMEM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Memory
	v.SetDefault("memory.context", d.Memory.Context)
	v.SetDefault("memory.mode", d.Memory.Mode)

	// Embedding
	v.SetDefault("embedding.openai_base_url", d.Embedding.OpenAIBaseURL)
	v.SetDefault("embedding.ollama_target", d.Embedding.OllamaTarget)
	v.SetDefault("embedding.ollama_model", d.Embedding.OllamaModel)

	// Splitter
	v.SetDefault("splitter.model", d.Splitter.Model)

	// Search
	v.SetDefault("search.limit", d.Search.Limit)
	v.SetDefault("search.boost_weight", d.Search.BoostWeight)
}
