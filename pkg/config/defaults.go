package config

const (
	defaultAPIListen = ":8765"

	defaultContext = "default"
	defaultMode    = "hash-local"

	defaultOllamaTarget = "http://localhost:11434"
	defaultOllamaModel  = "nomic-embed-text"

	defaultSplitterModel = "gpt-4o-mini"

	defaultSearchLimit = 5
	defaultBoostWeight = 0.3
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Memory: MemoryConfig{
			Context: defaultContext,
			Mode:    defaultMode,
		},
		Embedding: EmbeddingConfig{
			OllamaTarget: defaultOllamaTarget,
			OllamaModel:  defaultOllamaModel,
		},
		Splitter: SplitterConfig{
			Model: defaultSplitterModel,
		},
		Search: SearchConfig{
			Limit:       defaultSearchLimit,
			BoostWeight: defaultBoostWeight,
		},
	}
}
