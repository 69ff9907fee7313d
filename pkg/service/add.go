package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/eventstream"
	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/storage"
)

// AddParams holds parameters for creating a memory.
type AddParams struct {
	Context string
	Text    string
	Tags    []string

	// Facts, when supplied, are used verbatim instead of the splitter.
	// Required for modes whose provider cannot split narratives.
	Facts []string
}

// UpdateParams holds parameters for a full-text update.
type UpdateParams struct {
	Context  string
	MemoryID string
	Text     string

	// Facts, when supplied, replace the splitter output. See AddParams.
	Facts []string
}

// AddMemory creates a memory with its facts and their vectors in the
// active mode's namespace, atomically. Facts come from the caller or from
// the narrative splitter.
func (s *Service) AddMemory(ctx context.Context, p AddParams) (*memory.Memory, []memory.Fact, error) {
	if strings.TrimSpace(p.Text) == "" {
		return nil, nil, memory.Validationf("memory text is required")
	}

	mode := s.modes.Active()
	embedder, err := s.modes.Embedder(mode)
	if err != nil {
		return nil, nil, err
	}

	facts, err := s.resolveFacts(ctx, p.Text, p.Facts, embedder.RequiresManualFacts())
	if err != nil {
		return nil, nil, err
	}

	vecs, err := embedder.EmbedBatch(ctx, facts)
	if err != nil {
		return nil, nil, err
	}

	mem, stored, err := s.store.CreateMemory(ctx, storage.CreateMemoryParams{
		Context:    p.Context,
		Text:       p.Text,
		Tags:       p.Tags,
		Facts:      facts,
		Mode:       mode,
		Embeddings: vecs,
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug("added memory",
		zap.String("id", mem.ID),
		zap.String("context", mem.Context),
		zap.Int("facts", len(stored)),
		zap.Stringer("mode", mode),
	)

	event := eventstream.NewEvent(eventstream.EventTypeMemoryAdded, mem.Context)
	event.MemoryID = mem.ID
	event.FactCount = len(stored)
	s.publish(ctx, event)
	return mem, stored, nil
}

// UpdateMemory performs a full-text update: the new narrative replaces the
// old, the memory's facts are replaced wholesale (cascading old vectors in
// every namespace), and new vectors land in the active mode's namespace.
func (s *Service) UpdateMemory(ctx context.Context, p UpdateParams) (*memory.Memory, []memory.Fact, error) {
	if p.MemoryID == "" {
		return nil, nil, memory.Validationf("memory id is required")
	}
	if strings.TrimSpace(p.Text) == "" {
		return nil, nil, memory.Validationf("memory text is required")
	}

	mode := s.modes.Active()
	embedder, err := s.modes.Embedder(mode)
	if err != nil {
		return nil, nil, err
	}

	facts, err := s.resolveFacts(ctx, p.Text, p.Facts, embedder.RequiresManualFacts())
	if err != nil {
		return nil, nil, err
	}

	vecs, err := embedder.EmbedBatch(ctx, facts)
	if err != nil {
		return nil, nil, err
	}

	mem, stored, err := s.store.ReplaceText(ctx, storage.ReplaceTextParams{
		Context:    p.Context,
		MemoryID:   p.MemoryID,
		Text:       p.Text,
		Facts:      facts,
		Mode:       mode,
		Embeddings: vecs,
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug("updated memory",
		zap.String("id", mem.ID),
		zap.Int("version", mem.Version),
		zap.Int("facts", len(stored)),
	)

	event := eventstream.NewEvent(eventstream.EventTypeMemoryUpdated, mem.Context)
	event.MemoryID = mem.ID
	event.FactCount = len(stored)
	s.publish(ctx, event)
	return mem, stored, nil
}

// resolveFacts picks the fact list for a narrative: caller-supplied facts
// win; otherwise the splitter runs. Modes that require manual facts reject
// splitter-less input rather than guessing.
func (s *Service) resolveFacts(ctx context.Context, text string, manual []string, requiresManual bool) ([]string, error) {
	cleaned := make([]string, 0, len(manual))
	for _, f := range manual {
		if f = strings.TrimSpace(f); f != "" {
			cleaned = append(cleaned, f)
		}
	}
	if len(cleaned) > 0 {
		return cleaned, nil
	}

	if requiresManual {
		return nil, memory.Validationf("the active embedding mode requires manually supplied facts")
	}
	if s.splitter == nil {
		return nil, memory.Validationf("no splitter configured: supply facts manually")
	}

	return s.splitter.Split(ctx, text)
}
