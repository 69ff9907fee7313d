// Package vector provides the embedding-mode enumeration, the per-mode
// vector namespaces, and the storage contract for vector rows.
//
// Each mode owns an isolated namespace keyed by fact id. A fact may hold
// zero, one, or several vectors — one per mode it has been embedded in.
// Every stored vector is unit-normalized, so the dot product of two stored
// vectors equals their cosine similarity.
package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
)

// Row is one stored vector: a fact id and its unit-normalized embedding in
// some mode's namespace.
type Row struct {
	FactID    string
	Embedding []float32
}

// SearchRow is a fully-joined row loaded for similarity search: the vector
// plus the fact and owning-memory attributes scoring needs.
type SearchRow struct {
	FactID     string
	MemoryID   string
	FactText   string
	MemoryTags []string
	Embedding  []float32
}

// Store handles persistence of vector rows across the mode namespaces.
// Writes always target exactly one namespace and are independent of other
// namespaces' rows for the same fact.
type Store interface {
	// PutVectors inserts rows into the mode's namespace, normalizing each
	// embedding to unit length before write. Existing rows for the same
	// fact ids are replaced.
	PutVectors(ctx context.Context, mode Mode, rows []Row) error

	// GetVectors retrieves rows by fact id from the mode's namespace.
	GetVectors(ctx context.Context, mode Mode, factIDs []string) ([]Row, error)

	// SearchRows loads every fact, its vector, and its memory's tags in the
	// mode's namespace for the given context. This is the full-scan input
	// to similarity search.
	SearchRows(ctx context.Context, mode Mode, memoryContext string) ([]SearchRow, error)

	// CountVectors returns the number of rows in the mode's namespace for
	// the given context.
	CountVectors(ctx context.Context, mode Mode, memoryContext string) (int, error)

	// MissingFacts returns the facts in the given context that have no row
	// in the mode's namespace — the anti-join driving backfill.
	MissingFacts(ctx context.Context, mode Mode, memoryContext string) ([]memory.Fact, error)
}

// Normalize scales v to unit L2 length in place and returns it. A zero
// vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// Dot returns the dot product of a and b. For unit vectors this equals
// their cosine similarity.
func Dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Serialize converts a float32 slice to a little-endian byte slice for BLOB
// storage.
func Serialize(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Deserialize converts a little-endian byte slice back to a float32 slice.
func Deserialize(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
