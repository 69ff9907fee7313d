package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

// ListFacts returns the facts owned by a memory in creation order. The
// owning memory must exist under the caller's context.
func (d *Driver) ListFacts(ctx context.Context, memoryContext, memoryID string) ([]memory.Fact, error) {
	if _, err := d.GetMemory(ctx, memoryContext, memoryID); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, memory_id, text, version, created_at, updated_at
		 FROM facts WHERE memory_id = ?
		 ORDER BY created_at, id`, memoryID)
	if err != nil {
		return nil, fmt.Errorf("listing facts: %w", err)
	}
	defer rows.Close()

	return collectFacts(rows)
}

// insertFacts creates one fact row per text, in order, inside tx. Fact ids
// are UUIDs; the wider space makes collision retry unnecessary here.
func insertFacts(ctx context.Context, tx *sql.Tx, memoryID string, texts []string, now time.Time) ([]memory.Fact, error) {
	facts := make([]memory.Fact, 0, len(texts))
	for _, text := range texts {
		f := memory.Fact{
			ID:        uuid.NewString(),
			MemoryID:  memoryID,
			Text:      text,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO facts (id, memory_id, text, version, created_at, updated_at)
			 VALUES (?, ?, ?, 1, ?, ?)`,
			f.ID, f.MemoryID, f.Text,
			now.Format(timeLayout), now.Format(timeLayout)); err != nil {
			return nil, fmt.Errorf("inserting fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, nil
}

// vectorRows pairs inserted facts with their embeddings 1:1.
func vectorRows(facts []memory.Fact, embeddings [][]float32) []vector.Row {
	rows := make([]vector.Row, len(facts))
	for i, f := range facts {
		rows[i] = vector.Row{FactID: f.ID, Embedding: embeddings[i]}
	}
	return rows
}

func collectFacts(rows *sql.Rows) ([]memory.Fact, error) {
	var out []memory.Fact
	for rows.Next() {
		var (
			f                    memory.Fact
			createdAt, updatedAt string
		)
		if err := rows.Scan(&f.ID, &f.MemoryID, &f.Text, &f.Version, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning fact: %w", err)
		}
		var err error
		if f.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at for fact %s: %w", f.ID, err)
		}
		if f.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at for fact %s: %w", f.ID, err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating facts: %w", err)
	}
	return out, nil
}
