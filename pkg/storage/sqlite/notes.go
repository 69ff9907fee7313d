package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/notes"
)

// AddNote records a usage note for a tool.
func (d *Driver) AddNote(ctx context.Context, noteContext, tool, text string) (*notes.Note, error) {
	if strings.TrimSpace(tool) == "" {
		return nil, memory.Validationf("tool name is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, memory.Validationf("note text is required")
	}

	n := &notes.Note{
		ID:        uuid.NewString(),
		Context:   noteContext,
		Tool:      tool,
		Note:      text,
		CreatedAt: nowUTC(),
	}
	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO tool_notes (id, context, tool, note, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Context, n.Tool, n.Note, n.CreatedAt.Format(timeLayout)); err != nil {
		return nil, fmt.Errorf("inserting note: %w", err)
	}
	return n, nil
}

// ListNotes returns notes newest-first, optionally filtered to one tool.
func (d *Driver) ListNotes(ctx context.Context, noteContext, tool string, limit int) ([]notes.Note, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, context, tool, note, created_at FROM tool_notes WHERE context = ?`
	args := []any{noteContext}
	if tool != "" {
		query += ` AND tool = ?`
		args = append(args, tool)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var out []notes.Note
	for rows.Next() {
		var (
			n         notes.Note
			createdAt string
		)
		if err := rows.Scan(&n.ID, &n.Context, &n.Tool, &n.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		if n.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at for note %s: %w", n.ID, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return out, nil
}
