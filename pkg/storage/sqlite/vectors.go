package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

// PutVectors inserts rows into the mode's namespace, replacing existing
// rows for the same fact ids. Every embedding is normalized to unit length
// before write; a row whose length does not match the namespace's declared
// dimensionality is rejected.
func (d *Driver) PutVectors(ctx context.Context, mode vector.Mode, rows []vector.Row) error {
	if len(rows) == 0 {
		return nil
	}

	ns := mode.Namespace()
	err := d.withTx(ctx, "put vectors", func(tx *sql.Tx) error {
		return putVectorsTx(ctx, tx, mode, rows)
	})
	if err != nil {
		return err
	}

	d.logger.Debug("stored vectors",
		zap.String("namespace", ns.Table),
		zap.Int("count", len(rows)),
	)
	return nil
}

// putVectorsTx writes vector rows inside an existing transaction so that
// compound memory writes stay atomic.
func putVectorsTx(ctx context.Context, tx *sql.Tx, mode vector.Mode, rows []vector.Row) error {
	ns := mode.Namespace()
	for _, r := range rows {
		if len(r.Embedding) != ns.Dimensions {
			return fmt.Errorf("%w: namespace %s expects %d dimensions, got %d for fact %s",
				vector.ErrDimensionMismatch, ns.Table, ns.Dimensions, len(r.Embedding), r.FactID)
		}

		blob := vector.Serialize(vector.Normalize(r.Embedding))
		query := fmt.Sprintf(
			`INSERT OR REPLACE INTO %s (fact_id, dims, normalized, embedding) VALUES (?, ?, 1, ?)`,
			ns.Table,
		)
		if _, err := tx.ExecContext(ctx, query, r.FactID, ns.Dimensions, blob); err != nil {
			return fmt.Errorf("inserting vector for fact %s: %w", r.FactID, err)
		}
	}
	return nil
}

// GetVectors retrieves rows by fact id from the mode's namespace.
func (d *Driver) GetVectors(ctx context.Context, mode vector.Mode, factIDs []string) ([]vector.Row, error) {
	if len(factIDs) == 0 {
		return nil, nil
	}

	ns := mode.Namespace()
	placeholders := make([]string, len(factIDs))
	args := make([]any, len(factIDs))
	for i, id := range factIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT fact_id, embedding FROM %s WHERE fact_id IN (%s)`,
		ns.Table, strings.Join(placeholders, ","),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var out []vector.Row
	for rows.Next() {
		var (
			r    vector.Row
			blob []byte
		)
		if err := rows.Scan(&r.FactID, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		if r.Embedding, err = vector.Deserialize(blob); err != nil {
			return nil, fmt.Errorf("decoding vector for fact %s: %w", r.FactID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}
	return out, nil
}

// SearchRows loads every fact, its vector, and its memory's tags in the
// mode's namespace for the given context, in a stable creation order. This
// is the full-scan input to similarity search; cost is O(N·D) by contract.
func (d *Driver) SearchRows(ctx context.Context, mode vector.Mode, memoryContext string) ([]vector.SearchRow, error) {
	ns := mode.Namespace()
	query := fmt.Sprintf(`
		SELECT v.fact_id, f.memory_id, f.text, m.tags, v.embedding
		FROM %s v
		INNER JOIN facts f ON f.id = v.fact_id
		INNER JOIN memories m ON m.id = f.memory_id
		WHERE m.context = ?
		ORDER BY f.created_at, f.id`, ns.Table)

	rows, err := d.db.QueryContext(ctx, query, memoryContext)
	if err != nil {
		return nil, fmt.Errorf("querying namespace %s: %w", ns.Table, err)
	}
	defer rows.Close()

	var out []vector.SearchRow
	for rows.Next() {
		var (
			r        vector.SearchRow
			tagsJSON string
			blob     []byte
		)
		if err := rows.Scan(&r.FactID, &r.MemoryID, &r.FactText, &tagsJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &r.MemoryTags); err != nil {
			return nil, fmt.Errorf("decoding tags for memory %s: %w", r.MemoryID, err)
		}
		if r.Embedding, err = vector.Deserialize(blob); err != nil {
			return nil, fmt.Errorf("decoding vector for fact %s: %w", r.FactID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search rows: %w", err)
	}
	return out, nil
}

// CountVectors returns the number of rows in the mode's namespace for the
// given context.
func (d *Driver) CountVectors(ctx context.Context, mode vector.Mode, memoryContext string) (int, error) {
	ns := mode.Namespace()
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s v
		INNER JOIN facts f ON f.id = v.fact_id
		INNER JOIN memories m ON m.id = f.memory_id
		WHERE m.context = ?`, ns.Table)

	var n int
	if err := d.db.QueryRowContext(ctx, query, memoryContext).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting namespace %s: %w", ns.Table, err)
	}
	return n, nil
}

// MissingFacts returns the facts in the given context that have no row in
// the mode's namespace — the anti-join driving backfill.
func (d *Driver) MissingFacts(ctx context.Context, mode vector.Mode, memoryContext string) ([]memory.Fact, error) {
	ns := mode.Namespace()
	query := fmt.Sprintf(`
		SELECT f.id, f.memory_id, f.text, f.version, f.created_at, f.updated_at
		FROM facts f
		INNER JOIN memories m ON m.id = f.memory_id
		WHERE m.context = ?
		  AND f.id NOT IN (SELECT fact_id FROM %s)
		ORDER BY f.created_at, f.id`, ns.Table)

	rows, err := d.db.QueryContext(ctx, query, memoryContext)
	if err != nil {
		return nil, fmt.Errorf("querying missing facts for %s: %w", ns.Table, err)
	}
	defer rows.Close()

	return collectFacts(rows)
}
