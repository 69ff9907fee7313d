// Package modes tracks the active embedding mode and drives backfill when
// switching between vector spaces.
//
// Exactly one mode is active at a time per manager. Previously written
// vectors in non-active modes remain queryable and valid: a switch only
// changes which mode is the default target for new writes, so it needs no
// locking against concurrent search — every read names its mode
// explicitly.
package modes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/embeddings"
	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

// perItemLatency is the assumed per-fact embedding latency used for the
// duration estimate shown to users. Informational only; no correctness
// contract.
const perItemLatency = 150 * time.Millisecond

// batchSize returns the embedding batch ceiling tuned to each provider's
// practical limits.
func batchSize(mode vector.Mode) int {
	switch mode {
	case vector.ModeOpenAISmall:
		return 64
	case vector.ModeOllamaNomic:
		return 16
	default:
		return 256
	}
}

// Manager owns the active/previous mode state and the per-mode providers.
type Manager struct {
	mu       sync.Mutex
	active   vector.Mode
	previous vector.Mode

	embedders map[vector.Mode]embeddings.Embedder
	store     vector.Store
	onSwitch  func(active, previous vector.Mode)
	logger    *zap.Logger
}

// Config holds configuration for the mode manager.
type Config struct {
	// Active is the initial active mode. Its provider must be configured.
	Active vector.Mode

	// Embedders maps each usable mode to its provider. Modes without an
	// entry cannot be switched to.
	Embedders map[vector.Mode]embeddings.Embedder

	// Store provides the vector namespaces.
	Store vector.Store

	// OnSwitch, when set, runs after every completed switch. Used to
	// persist the mode state across restarts.
	OnSwitch func(active, previous vector.Mode)

	Logger *zap.Logger
}

// NewManager creates a mode manager.
func NewManager(c Config) (*Manager, error) {
	if c.Store == nil {
		return nil, memory.Validationf("vector store is required")
	}
	if c.Logger == nil {
		return nil, memory.Validationf("logger is required")
	}
	if _, ok := c.Embedders[c.Active]; !ok {
		return nil, memory.Validationf("no provider configured for active mode %q", c.Active)
	}

	return &Manager{
		active:    c.Active,
		previous:  c.Active,
		embedders: c.Embedders,
		store:     c.Store,
		onSwitch:  c.OnSwitch,
		logger:    c.Logger,
	}, nil
}

// Active returns the current active mode.
func (m *Manager) Active() vector.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Previous returns the mode that was active before the last switch.
func (m *Manager) Previous() vector.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previous
}

// Embedder returns the provider backing a mode.
func (m *Manager) Embedder(mode vector.Mode) (embeddings.Embedder, error) {
	e, ok := m.embedders[mode]
	if !ok {
		return nil, memory.Validationf("no provider configured for mode %q", mode)
	}
	return e, nil
}

// MissingFacts previews the backfill set for a mode: facts in the context
// with no vector row in that mode's namespace.
func (m *Manager) MissingFacts(ctx context.Context, mode vector.Mode, memoryContext string) ([]memory.Fact, error) {
	return m.store.MissingFacts(ctx, mode, memoryContext)
}

// MissingCount previews the backfill cost for a mode.
func (m *Manager) MissingCount(ctx context.Context, mode vector.Mode, memoryContext string) (int, error) {
	missing, err := m.store.MissingFacts(ctx, mode, memoryContext)
	if err != nil {
		return 0, err
	}
	return len(missing), nil
}

// EstimateDuration derives a user-feedback figure from a missing count.
func (m *Manager) EstimateDuration(missingCount int) time.Duration {
	return time.Duration(missingCount) * perItemLatency
}

// Switch makes target the active mode, backfilling vector coverage for
// every fact in the context that lacks a row in target's namespace.
//
// Backfill embeds in bounded batches; each completed batch commits
// independently. A batch failure aborts the remainder: vectors already
// inserted are kept — retrying sees a smaller backfill set — but the
// switch reports failure and the active mode does not advance.
func (m *Manager) Switch(ctx context.Context, memoryContext string, target vector.Mode) (*SwitchResult, error) {
	embedder, err := m.Embedder(target)
	if err != nil {
		return nil, err
	}

	// A remote credential is validated with a minimal provider call
	// before any backfill work starts.
	if v, ok := embedder.(embeddings.CredentialValidator); ok {
		if err := v.ValidateCredential(ctx); err != nil {
			return nil, err
		}
	}

	missing, err := m.store.MissingFacts(ctx, target, memoryContext)
	if err != nil {
		return nil, err
	}

	result := &SwitchResult{
		From:    m.Active(),
		To:      target,
		Missing: len(missing),
	}

	start := time.Now()
	size := batchSize(target)
	for len(missing) > 0 {
		n := size
		if n > len(missing) {
			n = len(missing)
		}
		batch := missing[:n]
		missing = missing[n:]

		texts := make([]string, len(batch))
		for i, f := range batch {
			texts[i] = f.Text
		}

		vecs, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		if len(vecs) != len(batch) {
			result.Duration = time.Since(start)
			return result, memory.ProviderError{
				Provider: embedder.Identifier(),
				Op:       "embed batch",
				Err:      fmt.Errorf("returned %d embeddings for %d facts", len(vecs), len(batch)),
			}
		}

		rows := make([]vector.Row, len(batch))
		for i, f := range batch {
			rows[i] = vector.Row{FactID: f.ID, Embedding: vecs[i]}
		}
		if err := m.store.PutVectors(ctx, target, rows); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		result.Embedded += len(batch)
		result.Batches++
	}
	result.Duration = time.Since(start)

	m.mu.Lock()
	m.previous = m.active
	m.active = target
	m.mu.Unlock()

	if m.onSwitch != nil {
		m.onSwitch(target, result.From)
	}

	m.logger.Info("switched embedding mode",
		zap.Stringer("from", result.From),
		zap.Stringer("to", target),
		zap.Int("backfilled", result.Embedded),
	)

	return result, nil
}
