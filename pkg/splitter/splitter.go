// Package splitter defines the narrative-splitter collaborator: a service
// that decomposes a narrative into an ordered list of atomic statements.
// Its absence or failure means the caller must supply facts manually.
package splitter

import "context"

// Splitter decomposes narrative text into 1..N atomic statement strings,
// in order.
type Splitter interface {
	Split(ctx context.Context, text string) ([]string, error)
}
