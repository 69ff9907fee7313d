package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/storage"
)

const timeLayout = time.RFC3339Nano

func nowUTC() time.Time {
	return time.Now().UTC()
}

// CreateMemory atomically creates a memory, its facts, and their vectors in
// the requested namespace. The short memory id is regenerated on collision
// a bounded number of times.
func (d *Driver) CreateMemory(ctx context.Context, p storage.CreateMemoryParams) (*memory.Memory, []memory.Fact, error) {
	if strings.TrimSpace(p.Text) == "" {
		return nil, nil, memory.Validationf("memory text is required")
	}
	if len(p.Facts) == 0 {
		return nil, nil, memory.Validationf("at least one fact is required")
	}
	if len(p.Embeddings) > 0 && len(p.Embeddings) != len(p.Facts) {
		return nil, nil, memory.Validationf("got %d embeddings for %d facts", len(p.Embeddings), len(p.Facts))
	}

	tags := memory.NormalizeTags(p.Tags)
	now := nowUTC()

	var (
		mem   *memory.Memory
		facts []memory.Fact
	)

	for attempt := 0; attempt < idAttempts; attempt++ {
		id, err := newShortID()
		if err != nil {
			return nil, nil, err
		}

		err = d.withTx(ctx, "create memory", func(tx *sql.Tx) error {
			if err := insertMemory(ctx, tx, id, p.Context, p.Text, tags, now); err != nil {
				return err
			}

			inserted, err := insertFacts(ctx, tx, id, p.Facts, now)
			if err != nil {
				return err
			}
			facts = inserted

			if len(p.Embeddings) > 0 {
				rows := vectorRows(inserted, p.Embeddings)
				if err := putVectorsTx(ctx, tx, p.Mode, rows); err != nil {
					return err
				}
			}
			return nil
		})

		if err != nil {
			if isUniqueConflict(err) {
				d.logger.Debug("memory id collision, regenerating", zap.String("id", id))
				continue
			}
			return nil, nil, err
		}

		mem = &memory.Memory{
			ID:        id,
			Context:   p.Context,
			Text:      p.Text,
			Tags:      tags,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return mem, facts, nil
	}

	return nil, nil, memory.ConsistencyError{
		Op:  "create memory",
		Err: fmt.Errorf("exhausted %d id generation attempts", idAttempts),
	}
}

// GetMemory retrieves a memory by id. A memory owned by a different context
// is reported as not found.
func (d *Driver) GetMemory(ctx context.Context, memoryContext, id string) (*memory.Memory, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, context, text, tags, version, created_at, updated_at
		 FROM memories WHERE id = ? AND context = ?`, id, memoryContext)

	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, memory.NotFoundError{Kind: "memory", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting memory: %w", err)
	}
	return &m, nil
}

// ReplaceText performs a full-text update: the memory's existing facts are
// deleted — cascading their vectors in every namespace — and replaced
// wholesale, within one transaction.
func (d *Driver) ReplaceText(ctx context.Context, p storage.ReplaceTextParams) (*memory.Memory, []memory.Fact, error) {
	if strings.TrimSpace(p.Text) == "" {
		return nil, nil, memory.Validationf("memory text is required")
	}
	if len(p.Facts) == 0 {
		return nil, nil, memory.Validationf("at least one fact is required")
	}
	if len(p.Embeddings) > 0 && len(p.Embeddings) != len(p.Facts) {
		return nil, nil, memory.Validationf("got %d embeddings for %d facts", len(p.Embeddings), len(p.Facts))
	}

	now := nowUTC()
	var (
		mem   memory.Memory
		facts []memory.Fact
	)

	err := d.withTx(ctx, "replace memory text", func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT id, context, text, tags, version, created_at, updated_at
			 FROM memories WHERE id = ? AND context = ?`, p.MemoryID, p.Context)
		current, err := scanMemory(row)
		if err == sql.ErrNoRows {
			return memory.NotFoundError{Kind: "memory", ID: p.MemoryID}
		}
		if err != nil {
			return fmt.Errorf("loading memory: %w", err)
		}

		// Old facts go first; their vector rows cascade in every namespace.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM facts WHERE memory_id = ?`, p.MemoryID); err != nil {
			return fmt.Errorf("deleting old facts: %w", err)
		}

		inserted, err := insertFacts(ctx, tx, p.MemoryID, p.Facts, now)
		if err != nil {
			return err
		}
		facts = inserted

		if len(p.Embeddings) > 0 {
			if err := putVectorsTx(ctx, tx, p.Mode, vectorRows(inserted, p.Embeddings)); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE memories SET text = ?, version = version + 1, updated_at = ? WHERE id = ?`,
			p.Text, now.Format(timeLayout), p.MemoryID); err != nil {
			return fmt.Errorf("updating memory: %w", err)
		}

		mem = current
		mem.Text = p.Text
		mem.Version = current.Version + 1
		mem.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &mem, facts, nil
}

// UpdateTags applies the remove-set, then the add-set, de-duplicates, and
// bumps the version. Removal matches case-insensitively, the way tag
// filtering does; stored casing is preserved for surviving tags. Fact and
// vector data are never touched.
func (d *Driver) UpdateTags(ctx context.Context, memoryContext, id string, add, remove []string) (*memory.Memory, error) {
	now := nowUTC()
	var mem memory.Memory

	err := d.withTx(ctx, "update tags", func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT id, context, text, tags, version, created_at, updated_at
			 FROM memories WHERE id = ? AND context = ?`, id, memoryContext)
		current, err := scanMemory(row)
		if err == sql.ErrNoRows {
			return memory.NotFoundError{Kind: "memory", ID: id}
		}
		if err != nil {
			return fmt.Errorf("loading memory: %w", err)
		}

		tags := applyTagSets(current.Tags, add, remove)
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("encoding tags: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE memories SET tags = ?, version = version + 1, updated_at = ? WHERE id = ?`,
			string(tagsJSON), now.Format(timeLayout), id); err != nil {
			return fmt.Errorf("updating tags: %w", err)
		}

		mem = current
		mem.Tags = tags
		mem.Version = current.Version + 1
		mem.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &mem, nil
}

// DeleteMemory removes the memory row; facts and all their vector rows in
// every namespace follow via cascading foreign keys.
func (d *Driver) DeleteMemory(ctx context.Context, memoryContext, id string) error {
	return d.withTx(ctx, "delete memory", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM memories WHERE id = ? AND context = ?`, id, memoryContext)
		if err != nil {
			return fmt.Errorf("deleting memory: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking delete result: %w", err)
		}
		if n == 0 {
			return memory.NotFoundError{Kind: "memory", ID: id}
		}
		return nil
	})
}

// ListMemories returns memories newest-first. The tag filter is exact and
// case-insensitive; it is applied after loading because tags live in a
// serialized column.
func (d *Driver) ListMemories(ctx context.Context, p storage.ListMemoriesParams) ([]memory.Memory, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, context, text, tags, version, created_at, updated_at
		 FROM memories WHERE context = ?
		 ORDER BY created_at DESC, id`, p.Context)
	if err != nil {
		return nil, fmt.Errorf("listing memories: %w", err)
	}
	defer rows.Close()

	var out []memory.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning memory: %w", err)
		}
		if p.Tag != "" && !m.HasTag(p.Tag) {
			continue
		}
		out = append(out, m)
		if len(out) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating memories: %w", err)
	}

	return out, nil
}

// CountMemories returns the number of memories in a context.
func (d *Driver) CountMemories(ctx context.Context, memoryContext string) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE context = ?`, memoryContext).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting memories: %w", err)
	}
	return count, nil
}

func insertMemory(ctx context.Context, tx *sql.Tx, id, memoryContext, text string, tags []string, now time.Time) error {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO memories (id, context, text, tags, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		id, memoryContext, text, string(tagsJSON),
		now.Format(timeLayout), now.Format(timeLayout)); err != nil {
		return fmt.Errorf("inserting memory: %w", err)
	}
	return nil
}

// applyTagSets removes, then adds, preserving order and first-occurrence
// casing. Removal is case-insensitive.
func applyTagSets(current, add, remove []string) []string {
	removed := make(map[string]struct{}, len(remove))
	for _, t := range remove {
		removed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	kept := make([]string, 0, len(current)+len(add))
	for _, t := range current {
		if _, drop := removed[strings.ToLower(t)]; drop {
			continue
		}
		kept = append(kept, t)
	}
	return memory.NormalizeTags(append(kept, add...))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMemory(row scanner) (memory.Memory, error) {
	var (
		m                    memory.Memory
		tagsJSON             string
		createdAt, updatedAt string
	)
	err := row.Scan(&m.ID, &m.Context, &m.Text, &tagsJSON, &m.Version, &createdAt, &updatedAt)
	if err != nil {
		return m, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &m.Tags); err != nil {
		return m, fmt.Errorf("decoding tags for memory %s: %w", m.ID, err)
	}
	if m.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return m, fmt.Errorf("parsing created_at for memory %s: %w", m.ID, err)
	}
	if m.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return m, fmt.Errorf("parsing updated_at for memory %s: %w", m.ID, err)
	}
	return m, nil
}
