package eventstream_test

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NickSmet/mcp-local-memory/pkg/eventstream"
)

func TestEventstream(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Eventstream Suite")
}

var _ = Describe("Event", func() {
	It("marshals MemoryEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.MemoryEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeMemoryAdded,
			EventID:       "evt_123",
			EmittedAt:     now,
			Context:       "default",
			MemoryID:      "mem_8f2a91",
			FactCount:     3,
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("context"))
		Expect(got).To(HaveKey("memory_id"))
		Expect(got).To(HaveKey("fact_count"))
	})

	It("omits memory fields on mode switch events", func() {
		event := eventstream.MemoryEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeModeSwitched,
			EventID:       "evt_456",
			EmittedAt:     time.Now().UTC(),
			Context:       "default",
			ModeFrom:      "hash-local",
			ModeTo:        "ollama-nomic",
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).NotTo(HaveKey("memory_id"))
		Expect(got).NotTo(HaveKey("fact_count"))
		Expect(got).To(HaveKeyWithValue("mode_from", "hash-local"))
		Expect(got).To(HaveKeyWithValue("mode_to", "ollama-nomic"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeMemoryAdded).To(Equal("localmem.memory.added"))
		Expect(eventstream.EventTypeMemoryUpdated).To(Equal("localmem.memory.updated"))
		Expect(eventstream.EventTypeMemoryDeleted).To(Equal("localmem.memory.deleted"))
		Expect(eventstream.EventTypeModeSwitched).To(Equal("localmem.mode.switched"))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilEvent).NotTo(BeNil())
		Expect(eventstream.ErrNilEvent).To(MatchError("nil memory event"))
	})
})
