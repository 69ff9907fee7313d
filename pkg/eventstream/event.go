package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeMemoryAdded is emitted after a memory and its facts are persisted.
	EventTypeMemoryAdded = "localmem.memory.added"

	// EventTypeMemoryUpdated is emitted after a memory's text or tags change.
	EventTypeMemoryUpdated = "localmem.memory.updated"

	// EventTypeMemoryDeleted is emitted after a memory and its derived rows
	// are removed.
	EventTypeMemoryDeleted = "localmem.memory.deleted"

	// EventTypeModeSwitched is emitted after the active embedding mode changes.
	EventTypeModeSwitched = "localmem.mode.switched"
)

// MemoryEvent is a transport-neutral payload describing a store mutation.
type MemoryEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	// Context is the tenant partition the mutation happened in.
	Context string `json:"context"`

	// MemoryID is set for memory lifecycle events, empty for mode switches.
	MemoryID string `json:"memory_id,omitempty"`

	// FactCount is the number of facts attached to the memory after the
	// mutation (zero after a delete).
	FactCount int `json:"fact_count,omitempty"`

	// Mode fields are set for mode.switched events.
	ModeFrom string `json:"mode_from,omitempty"`
	ModeTo   string `json:"mode_to,omitempty"`
}

// NewEvent creates a MemoryEvent with the envelope fields filled in.
func NewEvent(eventType, memoryContext string) *MemoryEvent {
	return &MemoryEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Context:       memoryContext,
	}
}
