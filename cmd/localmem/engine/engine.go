// Package engine assembles the full memory engine (storage, embedders,
// mode manager, splitter, service) from the resolved configuration. Every
// command that touches the store goes through Build so wiring never
// drifts between subcommands.
package engine

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/cmd/localmem/sqlitepath"
	"github.com/NickSmet/mcp-local-memory/pkg/credentials"
	"github.com/NickSmet/mcp-local-memory/pkg/dotdir"
	"github.com/NickSmet/mcp-local-memory/pkg/embeddings"
	embeddingutils "github.com/NickSmet/mcp-local-memory/pkg/embeddings/utils"
	"github.com/NickSmet/mcp-local-memory/pkg/modes"
	"github.com/NickSmet/mcp-local-memory/pkg/service"
	openaisplitter "github.com/NickSmet/mcp-local-memory/pkg/splitter/openai"
	"github.com/NickSmet/mcp-local-memory/pkg/storage/sqlite"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

// Engine bundles the running collaborators a command needs.
type Engine struct {
	Service *service.Service
	Driver  *sqlite.Driver
	Modes   *modes.Manager

	// Context is the default tenant from configuration.
	Context string

	// SearchLimit and BoostWeight are the configured search defaults.
	SearchLimit int
	BoostWeight float64
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	return e.Driver.Close()
}

// Build assembles an Engine from viper configuration, stored credentials,
// and the persisted mode state.
func Build(v *viper.Viper, configDir string, logger *zap.Logger) (*Engine, error) {
	dbPath, err := sqlitepath.ResolveSQLitePath(v.GetString("storage.sqlite_path"))
	if err != nil {
		return nil, err
	}

	driver, err := sqlite.NewDriver(sqlite.Config{DBPath: dbPath}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	creds, err := credentials.NewManager(configDir)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	openAIKey, err := creds.Resolve("openai")
	if err != nil {
		driver.Close()
		return nil, err
	}

	opts := embeddingutils.NewEmbedderOpts{
		OpenAIAPIKey:  openAIKey,
		OpenAIBaseURL: v.GetString("embedding.openai_base_url"),
		OllamaURL:     v.GetString("embedding.ollama_target"),
		OllamaModel:   v.GetString("embedding.ollama_model"),
	}

	// Every mode whose provider can be constructed gets registered; a
	// mode with no provider simply cannot be switched to.
	embedders := make(map[vector.Mode]embeddings.Embedder, len(vector.Modes))
	for _, mode := range vector.Modes {
		if mode == vector.ModeOpenAISmall && openAIKey == "" {
			continue
		}
		e, err := embeddingutils.NewEmbedder(mode, opts)
		if err != nil {
			logger.Warn("skipping embedding mode",
				zap.Stringer("mode", mode),
				zap.Error(err),
			)
			continue
		}
		embedders[mode] = e
	}

	active, err := resolveActiveMode(v, configDir, embedders)
	if err != nil {
		driver.Close()
		return nil, err
	}

	ddm := dotdir.NewManager()
	manager, err := modes.NewManager(modes.Config{
		Active:    active,
		Embedders: embedders,
		Store:     driver,
		OnSwitch: func(active, previous vector.Mode) {
			state := &dotdir.ModeState{
				Active:   active.String(),
				Previous: previous.String(),
			}
			if err := ddm.SaveModeState(state, configDir); err != nil {
				logger.Warn("persisting mode state", zap.Error(err))
			}
		},
		Logger: logger,
	})
	if err != nil {
		driver.Close()
		return nil, err
	}

	cfg := service.Config{
		Store:   driver,
		Vectors: driver,
		Ledger:  driver,
		Modes:   manager,
		Logger:  logger,
	}
	if openAIKey != "" {
		sp, err := openaisplitter.NewSplitter(openaisplitter.Config{
			APIKey:  openAIKey,
			BaseURL: v.GetString("embedding.openai_base_url"),
			Model:   v.GetString("splitter.model"),
		})
		if err != nil {
			driver.Close()
			return nil, err
		}
		cfg.Splitter = sp
	}

	svc, err := service.New(cfg)
	if err != nil {
		driver.Close()
		return nil, err
	}

	return &Engine{
		Service:     svc,
		Driver:      driver,
		Modes:       manager,
		Context:     v.GetString("memory.context"),
		SearchLimit: v.GetInt("search.limit"),
		BoostWeight: v.GetFloat64("search.boost_weight"),
	}, nil
}

// resolveActiveMode prefers the persisted mode state over the configured
// default, falling back to hash-local when neither names a usable mode.
func resolveActiveMode(v *viper.Viper, configDir string, embedders map[vector.Mode]embeddings.Embedder) (vector.Mode, error) {
	name := v.GetString("memory.mode")

	ddm := dotdir.NewManager()
	if state, err := ddm.LoadModeState(configDir); err == nil && state != nil && state.Active != "" {
		name = state.Active
	}

	mode, err := vector.ParseMode(name)
	if err != nil {
		return 0, fmt.Errorf("resolving active mode: %w", err)
	}

	if _, ok := embedders[mode]; !ok {
		// Configured mode has no usable provider (e.g. missing API key).
		// hash-local always works offline.
		return vector.ModeHashLocal, nil
	}
	return mode, nil
}
