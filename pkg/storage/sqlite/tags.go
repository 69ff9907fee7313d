package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
)

// ListTags enumerates all tags in a context with aggregate metadata,
// optionally filtered by a regular expression. Go's regexp syntax accepts a
// leading inline flags group such as (?i) directly, so a case-insensitive
// pattern needs no special handling; an uncompilable pattern yields a
// ValidationError naming the pattern.
func (d *Driver) ListTags(ctx context.Context, memoryContext, pattern string) ([]memory.TagInfo, error) {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, memory.Validationf("invalid tag pattern %q: %v", pattern, err)
		}
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT tags, created_at FROM memories WHERE context = ?`, memoryContext)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	agg := make(map[string]*memory.TagInfo)
	for rows.Next() {
		var (
			tagsJSON  string
			createdAt string
		)
		if err := rows.Scan(&tagsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning tags: %w", err)
		}

		var tags []string
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
		created, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		for _, tag := range tags {
			if re != nil && !re.MatchString(tag) {
				continue
			}
			info, ok := agg[tag]
			if !ok {
				agg[tag] = &memory.TagInfo{Tag: tag, Count: 1, Earliest: created, Latest: created}
				continue
			}
			info.Count++
			if created.Before(info.Earliest) {
				info.Earliest = created
			}
			if created.After(info.Latest) {
				info.Latest = created
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	out := make([]memory.TagInfo, 0, len(agg))
	for _, info := range agg {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out, nil
}
