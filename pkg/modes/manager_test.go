package modes_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/embeddings"
	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/modes"
	"github.com/NickSmet/mcp-local-memory/pkg/storage"
	"github.com/NickSmet/mcp-local-memory/pkg/storage/sqlite"
	testutils "github.com/NickSmet/mcp-local-memory/pkg/utils/test"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

func TestModes(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Modes Suite")
}

var _ = Describe("Manager", func() {
	var (
		d    *sqlite.Driver
		ctx  context.Context
		hash *testutils.MockEmbedder
		nom  *testutils.MockEmbedder
	)

	BeforeEach(func() {
		var err error
		d, err = sqlite.NewDriver(sqlite.Config{DBPath: ":memory:"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()

		hash = testutils.NewMockEmbedder(vector.ModeHashLocal.Namespace().Dimensions)
		nom = testutils.NewMockEmbedder(vector.ModeOllamaNomic.Namespace().Dimensions)
	})

	AfterEach(func() {
		Expect(d.Close()).To(Succeed())
	})

	newManager := func(active vector.Mode, onSwitch func(a, p vector.Mode)) *modes.Manager {
		m, err := modes.NewManager(modes.Config{
			Active: active,
			Embedders: map[vector.Mode]embeddings.Embedder{
				vector.ModeHashLocal:   hash,
				vector.ModeOllamaNomic: nom,
			},
			Store:    d,
			OnSwitch: onSwitch,
			Logger:   zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	seed := func(memoryContext string, facts ...string) {
		embs := make([][]float32, len(facts))
		for i, f := range facts {
			v, err := hash.Embed(ctx, f)
			Expect(err).NotTo(HaveOccurred())
			embs[i] = v
		}
		_, _, err := d.CreateMemory(ctx, storage.CreateMemoryParams{
			Context:    memoryContext,
			Text:       "seed",
			Facts:      facts,
			Mode:       vector.ModeHashLocal,
			Embeddings: embs,
		})
		Expect(err).NotTo(HaveOccurred())
	}

	Describe("NewManager", func() {
		It("rejects an active mode without a provider", func() {
			_, err := modes.NewManager(modes.Config{
				Active:    vector.ModeOpenAISmall,
				Embedders: map[vector.Mode]embeddings.Embedder{vector.ModeHashLocal: hash},
				Store:     d,
				Logger:    zap.NewNop(),
			})
			Expect(err).To(HaveOccurred())
		})

		It("starts with previous equal to active", func() {
			m := newManager(vector.ModeHashLocal, nil)
			Expect(m.Active()).To(Equal(vector.ModeHashLocal))
			Expect(m.Previous()).To(Equal(vector.ModeHashLocal))
		})
	})

	Describe("Switch", func() {
		It("backfills the target namespace and advances the active mode", func() {
			seed("default", "fact one", "fact two", "fact three")
			m := newManager(vector.ModeHashLocal, nil)

			result, err := m.Switch(ctx, "default", vector.ModeOllamaNomic)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.From).To(Equal(vector.ModeHashLocal))
			Expect(result.To).To(Equal(vector.ModeOllamaNomic))
			Expect(result.Missing).To(Equal(3))
			Expect(result.Embedded).To(Equal(3))
			Expect(result.Batches).To(Equal(1))

			Expect(m.Active()).To(Equal(vector.ModeOllamaNomic))
			Expect(m.Previous()).To(Equal(vector.ModeHashLocal))

			n, err := d.CountVectors(ctx, vector.ModeOllamaNomic, "default")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(3))
		})

		It("is a no-op backfill when the namespace is already covered", func() {
			seed("default", "fact one")
			m := newManager(vector.ModeHashLocal, nil)

			result, err := m.Switch(ctx, "default", vector.ModeHashLocal)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Missing).To(BeZero())
			Expect(result.Embedded).To(BeZero())
			Expect(result.Summary()).To(ContainSubstring("nothing to backfill"))
		})

		It("keeps other namespaces intact when switching back and forth", func() {
			seed("default", "fact one", "fact two")
			m := newManager(vector.ModeHashLocal, nil)

			_, err := m.Switch(ctx, "default", vector.ModeOllamaNomic)
			Expect(err).NotTo(HaveOccurred())

			result, err := m.Switch(ctx, "default", vector.ModeHashLocal)
			Expect(err).NotTo(HaveOccurred())
			// Already covered: the original vectors survived the round trip.
			Expect(result.Missing).To(BeZero())

			for _, mode := range []vector.Mode{vector.ModeHashLocal, vector.ModeOllamaNomic} {
				n, err := d.CountVectors(ctx, mode, "default")
				Expect(err).NotTo(HaveOccurred())
				Expect(n).To(Equal(2))
			}
		})

		It("leaves the original vectors byte-identical after a round trip", func() {
			emb, err := hash.Embed(ctx, "fact one")
			Expect(err).NotTo(HaveOccurred())
			_, facts, err := d.CreateMemory(ctx, storage.CreateMemoryParams{
				Context:    "default",
				Text:       "seed",
				Facts:      []string{"fact one"},
				Mode:       vector.ModeHashLocal,
				Embeddings: [][]float32{emb},
			})
			Expect(err).NotTo(HaveOccurred())

			before, err := d.GetVectors(ctx, vector.ModeHashLocal, []string{facts[0].ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(before).To(HaveLen(1))

			m := newManager(vector.ModeHashLocal, nil)
			_, err = m.Switch(ctx, "default", vector.ModeOllamaNomic)
			Expect(err).NotTo(HaveOccurred())
			_, err = m.Switch(ctx, "default", vector.ModeHashLocal)
			Expect(err).NotTo(HaveOccurred())

			after, err := d.GetVectors(ctx, vector.ModeHashLocal, []string{facts[0].ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(HaveLen(1))
			Expect(vector.Serialize(after[0].Embedding)).To(Equal(vector.Serialize(before[0].Embedding)))
		})

		It("surfaces a provider error when a batch breaks the 1:1 contract", func() {
			seed("default", "fact one", "fact two")
			nom.DropLast = true
			m := newManager(vector.ModeHashLocal, nil)

			_, err := m.Switch(ctx, "default", vector.ModeOllamaNomic)
			Expect(err).To(HaveOccurred())

			var pe memory.ProviderError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(m.Active()).To(Equal(vector.ModeHashLocal))
		})

		It("keeps completed batches and holds the active mode on failure", func() {
			seed("default", "good fact", "poison fact")
			nom.FailOn = "poison fact"
			m := newManager(vector.ModeHashLocal, nil)

			result, err := m.Switch(ctx, "default", vector.ModeOllamaNomic)
			Expect(err).To(HaveOccurred())
			Expect(result).NotTo(BeNil())
			Expect(result.Missing).To(Equal(2))
			Expect(m.Active()).To(Equal(vector.ModeHashLocal))

			// Retry after the provider recovers sees a smaller backfill set.
			nom.FailOn = ""
			remaining, err := m.MissingCount(ctx, vector.ModeOllamaNomic, "default")
			Expect(err).NotTo(HaveOccurred())
			Expect(remaining).To(BeNumerically("<=", 2))

			result, err = m.Switch(ctx, "default", vector.ModeOllamaNomic)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Embedded).To(Equal(remaining))
			Expect(m.Active()).To(Equal(vector.ModeOllamaNomic))
		})

		It("rejects a target with no provider", func() {
			m := newManager(vector.ModeHashLocal, nil)

			_, err := m.Switch(ctx, "default", vector.ModeOpenAISmall)
			Expect(err).To(HaveOccurred())
			Expect(m.Active()).To(Equal(vector.ModeHashLocal))
		})

		It("invokes the OnSwitch hook after a completed switch", func() {
			seed("default", "fact")
			var gotActive, gotPrevious vector.Mode
			called := 0
			m := newManager(vector.ModeHashLocal, func(a, p vector.Mode) {
				called++
				gotActive, gotPrevious = a, p
			})

			_, err := m.Switch(ctx, "default", vector.ModeOllamaNomic)
			Expect(err).NotTo(HaveOccurred())
			Expect(called).To(Equal(1))
			Expect(gotActive).To(Equal(vector.ModeOllamaNomic))
			Expect(gotPrevious).To(Equal(vector.ModeHashLocal))
		})

		It("does not invoke OnSwitch when the switch fails", func() {
			seed("default", "poison fact")
			nom.FailOn = "poison fact"
			called := 0
			m := newManager(vector.ModeHashLocal, func(_, _ vector.Mode) { called++ })

			_, err := m.Switch(ctx, "default", vector.ModeOllamaNomic)
			Expect(err).To(HaveOccurred())
			Expect(called).To(BeZero())
		})
	})

	Describe("EstimateDuration", func() {
		It("scales linearly with the missing count", func() {
			m := newManager(vector.ModeHashLocal, nil)
			Expect(m.EstimateDuration(0)).To(Equal(time.Duration(0)))
			Expect(m.EstimateDuration(10)).To(Equal(10 * m.EstimateDuration(1)))
		})
	})
})
