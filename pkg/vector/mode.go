package vector

import "fmt"

// Mode identifies one embedding mode: a named vector space with a fixed
// dimensionality and a backing provider. The set of modes is a closed
// enumeration; each mode owns an isolated namespace and namespaces are
// selected by pattern matching on the mode, never by string-built table
// names.
type Mode int

const (
	// ModeOpenAISmall is the remote OpenAI text-embedding-3-small space.
	ModeOpenAISmall Mode = iota

	// ModeOllamaNomic is the local Ollama nomic-embed-text space.
	ModeOllamaNomic

	// ModeHashLocal is the deterministic offline token-hash space.
	ModeHashLocal
)

// Modes lists every registered embedding mode.
var Modes = []Mode{ModeOpenAISmall, ModeOllamaNomic, ModeHashLocal}

// Namespace is the strongly-typed storage partition owned by one mode.
// Table names are fixed at compile time.
type Namespace struct {
	// Table is the SQLite table holding the mode's vector rows.
	Table string

	// Dimensions is the declared fixed dimensionality of the space. Every
	// vector stored in the namespace has exactly this many components.
	Dimensions int
}

// String returns the mode's canonical name.
func (m Mode) String() string {
	switch m {
	case ModeOpenAISmall:
		return "openai-small"
	case ModeOllamaNomic:
		return "ollama-nomic"
	case ModeHashLocal:
		return "hash-local"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Namespace returns the storage partition for the mode.
func (m Mode) Namespace() Namespace {
	switch m {
	case ModeOpenAISmall:
		return Namespace{Table: "vectors_openai_small", Dimensions: 1536}
	case ModeOllamaNomic:
		return Namespace{Table: "vectors_ollama_nomic", Dimensions: 768}
	case ModeHashLocal:
		return Namespace{Table: "vectors_hash_local", Dimensions: 256}
	default:
		panic(fmt.Sprintf("vector: no namespace for mode %d", int(m)))
	}
}

// ParseMode resolves a mode by its canonical name.
func ParseMode(name string) (Mode, error) {
	for _, m := range Modes {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}
