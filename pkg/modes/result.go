package modes

import (
	"fmt"
	"time"

	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

// SwitchResult contains statistics from a mode switch.
type SwitchResult struct {
	From    vector.Mode
	To      vector.Mode
	Missing int
	// Embedded counts facts whose vectors were written during backfill.
	// On failure it reflects the completed batches, which are retained.
	Embedded int
	Batches  int
	Duration time.Duration
}

// Summary returns a human-readable summary of the switch.
func (r *SwitchResult) Summary() string {
	if r.Missing == 0 {
		return fmt.Sprintf("Switched %s -> %s: namespace already covered, nothing to backfill", r.From, r.To)
	}
	return fmt.Sprintf(
		"Switched %s -> %s: backfilled %d/%d facts in %d batches (%s)",
		r.From, r.To, r.Embedded, r.Missing, r.Batches, r.Duration.Round(time.Millisecond),
	)
}
