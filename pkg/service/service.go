// Package service wires the entity store, vector namespaces, mode manager,
// embedding providers, and narrative splitter into one explicit context
// object. Every operation call is threaded through a *Service; nothing is
// process-global, so tests can run multiple independent instances.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/eventstream"
	"github.com/NickSmet/mcp-local-memory/pkg/eventstream/nop"
	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/modes"
	"github.com/NickSmet/mcp-local-memory/pkg/notes"
	"github.com/NickSmet/mcp-local-memory/pkg/splitter"
	"github.com/NickSmet/mcp-local-memory/pkg/storage"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

// Service is the storage-and-retrieval engine's front door.
type Service struct {
	store    storage.Store
	vectors  vector.Store
	ledger   notes.Ledger
	modes    *modes.Manager
	splitter splitter.Splitter
	events   eventstream.Publisher
	logger   *zap.Logger
}

// Config holds the collaborators a Service needs.
type Config struct {
	// Store is the entity store.
	Store storage.Store

	// Vectors provides the per-mode namespaces. Usually the same driver
	// as Store.
	Vectors vector.Store

	// Ledger persists tool usage notes. Optional.
	Ledger notes.Ledger

	// Modes tracks the active embedding mode.
	Modes *modes.Manager

	// Splitter decomposes narratives into facts. Optional; when absent,
	// callers must supply facts manually.
	Splitter splitter.Splitter

	// Events receives store mutation events. Optional; defaults to the
	// no-op publisher.
	Events eventstream.Publisher

	Logger *zap.Logger
}

// New creates a Service.
func New(c Config) (*Service, error) {
	if c.Store == nil {
		return nil, memory.Validationf("entity store is required")
	}
	if c.Vectors == nil {
		return nil, memory.Validationf("vector store is required")
	}
	if c.Modes == nil {
		return nil, memory.Validationf("mode manager is required")
	}
	if c.Logger == nil {
		return nil, memory.Validationf("logger is required")
	}

	events := c.Events
	if events == nil {
		events = nop.NewPublisher()
	}

	return &Service{
		store:    c.Store,
		vectors:  c.Vectors,
		ledger:   c.Ledger,
		modes:    c.Modes,
		splitter: c.Splitter,
		events:   events,
		logger:   c.Logger,
	}, nil
}

// publish emits a mutation event. Publish failures are logged, never
// propagated: events are advisory, the store write already succeeded.
func (s *Service) publish(ctx context.Context, event *eventstream.MemoryEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}

// Modes exposes the mode manager for status and switching surfaces.
func (s *Service) Modes() *modes.Manager {
	return s.modes
}

// GetMemory retrieves a memory by id within a context.
func (s *Service) GetMemory(ctx context.Context, memoryContext, id string) (*memory.Memory, error) {
	if id == "" {
		return nil, memory.Validationf("memory id is required")
	}
	return s.store.GetMemory(ctx, memoryContext, id)
}

// ListMemories returns memories newest-first, optionally filtered by an
// exact (case-insensitive) tag.
func (s *Service) ListMemories(ctx context.Context, memoryContext, tag string, limit int) ([]memory.Memory, error) {
	return s.store.ListMemories(ctx, storage.ListMemoriesParams{
		Context: memoryContext,
		Tag:     tag,
		Limit:   limit,
	})
}

// CountMemories returns the number of memories in a context.
func (s *Service) CountMemories(ctx context.Context, memoryContext string) (int, error) {
	return s.store.CountMemories(ctx, memoryContext)
}

// ListFacts returns the facts owned by a memory.
func (s *Service) ListFacts(ctx context.Context, memoryContext, memoryID string) ([]memory.Fact, error) {
	if memoryID == "" {
		return nil, memory.Validationf("memory id is required")
	}
	return s.store.ListFacts(ctx, memoryContext, memoryID)
}

// ListTags enumerates a context's tags with aggregate metadata, optionally
// filtered by a regular expression (leading (?i) for case-insensitivity).
func (s *Service) ListTags(ctx context.Context, memoryContext, pattern string) ([]memory.TagInfo, error) {
	return s.store.ListTags(ctx, memoryContext, pattern)
}

// UpdateTags applies a remove-set then an add-set to a memory's tags. This
// is the cheap path: facts and vectors are never touched.
func (s *Service) UpdateTags(ctx context.Context, memoryContext, id string, add, remove []string) (*memory.Memory, error) {
	if id == "" {
		return nil, memory.Validationf("memory id is required")
	}
	if len(add) == 0 && len(remove) == 0 {
		return nil, memory.Validationf("nothing to update: supply tags to add or remove")
	}

	mem, err := s.store.UpdateTags(ctx, memoryContext, id, add, remove)
	if err != nil {
		return nil, err
	}

	event := eventstream.NewEvent(eventstream.EventTypeMemoryUpdated, memoryContext)
	event.MemoryID = mem.ID
	s.publish(ctx, event)
	return mem, nil
}

// DeleteMemory removes a memory, its facts, and their vectors in every
// namespace.
func (s *Service) DeleteMemory(ctx context.Context, memoryContext, id string) error {
	if id == "" {
		return memory.Validationf("memory id is required")
	}
	if err := s.store.DeleteMemory(ctx, memoryContext, id); err != nil {
		return err
	}

	event := eventstream.NewEvent(eventstream.EventTypeMemoryDeleted, memoryContext)
	event.MemoryID = id
	s.publish(ctx, event)
	return nil
}

// SwitchMode switches the active embedding mode by name, backfilling the
// target namespace first.
func (s *Service) SwitchMode(ctx context.Context, memoryContext, modeName string) (*modes.SwitchResult, error) {
	mode, err := vector.ParseMode(modeName)
	if err != nil {
		return nil, memory.Validationf("unknown mode %q", modeName)
	}

	result, err := s.modes.Switch(ctx, memoryContext, mode)
	if err != nil {
		return result, err
	}

	event := eventstream.NewEvent(eventstream.EventTypeModeSwitched, memoryContext)
	event.ModeFrom = result.From.String()
	event.ModeTo = result.To.String()
	s.publish(ctx, event)
	return result, nil
}

// AddUsageNote records a tool usage note.
func (s *Service) AddUsageNote(ctx context.Context, noteContext, tool, text string) (*notes.Note, error) {
	if s.ledger == nil {
		return nil, memory.Validationf("usage notes are not configured")
	}
	return s.ledger.AddNote(ctx, noteContext, tool, text)
}

// ListUsageNotes lists tool usage notes newest-first.
func (s *Service) ListUsageNotes(ctx context.Context, noteContext, tool string, limit int) ([]notes.Note, error) {
	if s.ledger == nil {
		return nil, memory.Validationf("usage notes are not configured")
	}
	return s.ledger.ListNotes(ctx, noteContext, tool, limit)
}

// resolveMode maps an optional mode name to a concrete mode, defaulting to
// the active one.
func (s *Service) resolveMode(modeName string) (vector.Mode, error) {
	if modeName == "" {
		return s.modes.Active(), nil
	}
	mode, err := vector.ParseMode(modeName)
	if err != nil {
		return 0, memory.Validationf("unknown mode %q", modeName)
	}
	return mode, nil
}
