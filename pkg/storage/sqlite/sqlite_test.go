package sqlite_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/storage"
	"github.com/NickSmet/mcp-local-memory/pkg/storage/sqlite"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

func TestSQLite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQLite Driver Suite")
}

// embed returns a unit vector of the mode's dimensionality with weight on
// one component, distinguishable per seed.
func embed(mode vector.Mode, seed int) []float32 {
	v := make([]float32, mode.Namespace().Dimensions)
	v[seed%len(v)] = 1
	return v
}

var _ = Describe("Driver", func() {
	var (
		d   *sqlite.Driver
		ctx context.Context
	)

	BeforeEach(func() {
		var err error
		d, err = sqlite.NewDriver(sqlite.Config{DBPath: ":memory:"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	AfterEach(func() {
		Expect(d.Close()).To(Succeed())
	})

	create := func(memoryContext, text string, tags, facts []string) (*memory.Memory, []memory.Fact) {
		embeddings := make([][]float32, len(facts))
		for i := range facts {
			embeddings[i] = embed(vector.ModeHashLocal, i)
		}
		mem, stored, err := d.CreateMemory(ctx, storage.CreateMemoryParams{
			Context:    memoryContext,
			Text:       text,
			Tags:       tags,
			Facts:      facts,
			Mode:       vector.ModeHashLocal,
			Embeddings: embeddings,
		})
		Expect(err).NotTo(HaveOccurred())
		return mem, stored
	}

	Describe("CreateMemory", func() {
		It("creates a memory with facts and vectors atomically", func() {
			mem, facts := create("default", "I migrated the database to Postgres 16.",
				[]string{"infra", "db"},
				[]string{"database migrated to postgres 16"})

			Expect(mem.ID).To(HaveLen(8))
			Expect(mem.Version).To(Equal(1))
			Expect(mem.Tags).To(Equal([]string{"infra", "db"}))
			Expect(facts).To(HaveLen(1))
			Expect(facts[0].MemoryID).To(Equal(mem.ID))

			n, err := d.CountVectors(ctx, vector.ModeHashLocal, "default")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
		})

		It("rejects empty text", func() {
			_, _, err := d.CreateMemory(ctx, storage.CreateMemoryParams{
				Context: "default", Text: "   ", Facts: []string{"f"},
			})
			Expect(memory.IsValidation(err)).To(BeTrue())
		})

		It("rejects a memory with no facts", func() {
			_, _, err := d.CreateMemory(ctx, storage.CreateMemoryParams{
				Context: "default", Text: "something",
			})
			Expect(memory.IsValidation(err)).To(BeTrue())
		})

		It("rejects mismatched embedding and fact counts", func() {
			_, _, err := d.CreateMemory(ctx, storage.CreateMemoryParams{
				Context:    "default",
				Text:       "something",
				Facts:      []string{"a", "b"},
				Mode:       vector.ModeHashLocal,
				Embeddings: [][]float32{embed(vector.ModeHashLocal, 0)},
			})
			Expect(memory.IsValidation(err)).To(BeTrue())
		})

		It("writes no vectors when embeddings are absent", func() {
			_, _, err := d.CreateMemory(ctx, storage.CreateMemoryParams{
				Context: "default", Text: "bare", Facts: []string{"bare fact"},
			})
			Expect(err).NotTo(HaveOccurred())

			n, err := d.CountVectors(ctx, vector.ModeHashLocal, "default")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})

	Describe("GetMemory", func() {
		It("round-trips a stored memory", func() {
			mem, _ := create("default", "text", []string{"t"}, []string{"f"})

			got, err := d.GetMemory(ctx, "default", mem.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Text).To(Equal("text"))
			Expect(got.Tags).To(Equal([]string{"t"}))
		})

		It("reports a memory in another context as not found", func() {
			mem, _ := create("alice", "private", nil, []string{"f"})

			_, err := d.GetMemory(ctx, "bob", mem.ID)
			Expect(memory.IsNotFound(err)).To(BeTrue())
		})

		It("reports an unknown id as not found", func() {
			_, err := d.GetMemory(ctx, "default", "nosuchid")
			Expect(memory.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("ReplaceText", func() {
		It("replaces facts wholesale and bumps the version", func() {
			mem, oldFacts := create("default", "old", nil, []string{"old fact one", "old fact two"})

			updated, newFacts, err := d.ReplaceText(ctx, storage.ReplaceTextParams{
				Context:    "default",
				MemoryID:   mem.ID,
				Text:       "new",
				Facts:      []string{"new fact"},
				Mode:       vector.ModeHashLocal,
				Embeddings: [][]float32{embed(vector.ModeHashLocal, 0)},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Text).To(Equal("new"))
			Expect(updated.Version).To(Equal(2))
			Expect(newFacts).To(HaveLen(1))

			// Old fact vectors must cascade away.
			oldIDs := []string{oldFacts[0].ID, oldFacts[1].ID}
			rows, err := d.GetVectors(ctx, vector.ModeHashLocal, oldIDs)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())

			listed, err := d.ListFacts(ctx, "default", mem.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(1))
			Expect(listed[0].Text).To(Equal("new fact"))
		})

		It("refuses cross-context updates", func() {
			mem, _ := create("alice", "private", nil, []string{"f"})

			_, _, err := d.ReplaceText(ctx, storage.ReplaceTextParams{
				Context: "bob", MemoryID: mem.ID, Text: "stolen", Facts: []string{"f"},
			})
			Expect(memory.IsNotFound(err)).To(BeTrue())

			// Untouched under the owning context.
			got, err := d.GetMemory(ctx, "alice", mem.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Text).To(Equal("private"))
			Expect(got.Version).To(Equal(1))
		})
	})

	Describe("UpdateTags", func() {
		It("applies remove before add and bumps the version", func() {
			mem, _ := create("default", "text", []string{"keep", "drop"}, []string{"f"})

			updated, err := d.UpdateTags(ctx, "default", mem.ID, []string{"added"}, []string{"drop"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Tags).To(Equal([]string{"keep", "added"}))
			Expect(updated.Version).To(Equal(2))
		})

		It("removes tags case-insensitively while preserving stored casing", func() {
			mem, _ := create("default", "text", []string{"Infra", "DB"}, []string{"f"})

			updated, err := d.UpdateTags(ctx, "default", mem.ID, nil, []string{"infra"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Tags).To(Equal([]string{"DB"}))
		})

		It("de-duplicates exact repeats while keeping case variants", func() {
			mem, _ := create("default", "text", []string{"a"}, []string{"f"})

			updated, err := d.UpdateTags(ctx, "default", mem.ID, []string{"b", "B", "a", "b"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Tags).To(Equal([]string{"a", "b", "B"}))
		})

		It("never touches facts or vectors", func() {
			mem, facts := create("default", "text", []string{"a"}, []string{"f"})

			_, err := d.UpdateTags(ctx, "default", mem.ID, []string{"b"}, nil)
			Expect(err).NotTo(HaveOccurred())

			rows, err := d.GetVectors(ctx, vector.ModeHashLocal, []string{facts[0].ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
		})
	})

	Describe("DeleteMemory", func() {
		It("cascades facts and vectors in every namespace", func() {
			mem, facts := create("default", "text", nil, []string{"f1", "f2"})

			// Add rows in a second namespace so cascade spans namespaces.
			err := d.PutVectors(ctx, vector.ModeOllamaNomic, []vector.Row{
				{FactID: facts[0].ID, Embedding: embed(vector.ModeOllamaNomic, 0)},
				{FactID: facts[1].ID, Embedding: embed(vector.ModeOllamaNomic, 1)},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(d.DeleteMemory(ctx, "default", mem.ID)).To(Succeed())

			_, err = d.GetMemory(ctx, "default", mem.ID)
			Expect(memory.IsNotFound(err)).To(BeTrue())

			ids := []string{facts[0].ID, facts[1].ID}
			for _, mode := range vector.Modes {
				rows, err := d.GetVectors(ctx, mode, ids)
				Expect(err).NotTo(HaveOccurred())
				Expect(rows).To(BeEmpty())
			}
		})

		It("refuses cross-context deletes", func() {
			mem, _ := create("alice", "private", nil, []string{"f"})

			err := d.DeleteMemory(ctx, "bob", mem.ID)
			Expect(memory.IsNotFound(err)).To(BeTrue())

			_, err = d.GetMemory(ctx, "alice", mem.ID)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("ListMemories", func() {
		It("filters by tag case-insensitively", func() {
			create("default", "one", []string{"Infra"}, []string{"f"})
			create("default", "two", []string{"app"}, []string{"f"})

			out, err := d.ListMemories(ctx, storage.ListMemoriesParams{Context: "default", Tag: "infra"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
			Expect(out[0].Text).To(Equal("one"))
		})

		It("isolates contexts", func() {
			create("alice", "a", nil, []string{"f"})
			create("bob", "b", nil, []string{"f"})

			out, err := d.ListMemories(ctx, storage.ListMemoriesParams{Context: "alice"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
			Expect(out[0].Text).To(Equal("a"))
		})

		It("bounds results by limit", func() {
			for i := 0; i < 5; i++ {
				create("default", "text", nil, []string{"f"})
			}

			out, err := d.ListMemories(ctx, storage.ListMemoriesParams{Context: "default", Limit: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(3))
		})
	})

	Describe("CountMemories", func() {
		It("counts per context", func() {
			create("alice", "a", nil, []string{"f"})
			create("alice", "b", nil, []string{"f"})
			create("bob", "c", nil, []string{"f"})

			n, err := d.CountMemories(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
		})
	})

	Describe("ListTags", func() {
		It("aggregates counts across memories", func() {
			create("default", "one", []string{"db", "infra"}, []string{"f"})
			create("default", "two", []string{"db"}, []string{"f"})

			tags, err := d.ListTags(ctx, "default", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(tags).To(HaveLen(2))
			Expect(tags[0].Tag).To(Equal("db"))
			Expect(tags[0].Count).To(Equal(2))
			Expect(tags[1].Tag).To(Equal("infra"))
			Expect(tags[1].Count).To(Equal(1))
		})

		It("filters with a regular expression", func() {
			create("default", "one", []string{"db-prod", "db-dev", "app"}, []string{"f"})

			tags, err := d.ListTags(ctx, "default", "^db-")
			Expect(err).NotTo(HaveOccurred())
			Expect(tags).To(HaveLen(2))
		})

		It("honors a leading (?i) case-insensitivity group", func() {
			create("default", "one", []string{"Infra"}, []string{"f"})

			tags, err := d.ListTags(ctx, "default", "(?i)^infra$")
			Expect(err).NotTo(HaveOccurred())
			Expect(tags).To(HaveLen(1))
			Expect(tags[0].Tag).To(Equal("Infra"))
		})

		It("rejects an uncompilable pattern with a ValidationError", func() {
			_, err := d.ListTags(ctx, "default", "([")
			Expect(memory.IsValidation(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("(["))
		})
	})

	Describe("vectors", func() {
		It("rejects rows with the wrong dimensionality", func() {
			_, facts := create("default", "text", nil, []string{"f"})

			err := d.PutVectors(ctx, vector.ModeOllamaNomic, []vector.Row{
				{FactID: facts[0].ID, Embedding: []float32{1, 2, 3}},
			})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})

		It("normalizes embeddings before write", func() {
			_, facts := create("default", "text", nil, []string{"f"})

			raw := make([]float32, vector.ModeOllamaNomic.Namespace().Dimensions)
			raw[0] = 3
			raw[1] = 4
			err := d.PutVectors(ctx, vector.ModeOllamaNomic, []vector.Row{
				{FactID: facts[0].ID, Embedding: raw},
			})
			Expect(err).NotTo(HaveOccurred())

			rows, err := d.GetVectors(ctx, vector.ModeOllamaNomic, []string{facts[0].ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Embedding[0]).To(BeNumerically("~", 0.6, 1e-6))
			Expect(rows[0].Embedding[1]).To(BeNumerically("~", 0.8, 1e-6))
		})

		It("replaces an existing row for the same fact", func() {
			_, facts := create("default", "text", nil, []string{"f"})

			err := d.PutVectors(ctx, vector.ModeHashLocal, []vector.Row{
				{FactID: facts[0].ID, Embedding: embed(vector.ModeHashLocal, 7)},
			})
			Expect(err).NotTo(HaveOccurred())

			n, err := d.CountVectors(ctx, vector.ModeHashLocal, "default")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
		})

		It("keeps namespaces independent", func() {
			create("default", "text", nil, []string{"f"})

			n, err := d.CountVectors(ctx, vector.ModeOllamaNomic, "default")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})

		It("loads search rows with memory tags joined in", func() {
			create("default", "text", []string{"infra"}, []string{"the fact"})

			rows, err := d.SearchRows(ctx, vector.ModeHashLocal, "default")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].FactText).To(Equal("the fact"))
			Expect(rows[0].MemoryTags).To(Equal([]string{"infra"}))
			Expect(rows[0].Embedding).To(HaveLen(vector.ModeHashLocal.Namespace().Dimensions))
		})

		It("scopes search rows to the caller's context", func() {
			create("alice", "a", nil, []string{"fa"})
			create("bob", "b", nil, []string{"fb"})

			rows, err := d.SearchRows(ctx, vector.ModeHashLocal, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].FactText).To(Equal("fa"))
		})
	})

	Describe("MissingFacts", func() {
		It("anti-joins facts without a row in the namespace", func() {
			_, facts := create("default", "text", nil, []string{"f1", "f2"})

			missing, err := d.MissingFacts(ctx, vector.ModeOllamaNomic, "default")
			Expect(err).NotTo(HaveOccurred())
			Expect(missing).To(HaveLen(2))

			err = d.PutVectors(ctx, vector.ModeOllamaNomic, []vector.Row{
				{FactID: facts[0].ID, Embedding: embed(vector.ModeOllamaNomic, 0)},
			})
			Expect(err).NotTo(HaveOccurred())

			missing, err = d.MissingFacts(ctx, vector.ModeOllamaNomic, "default")
			Expect(err).NotTo(HaveOccurred())
			Expect(missing).To(HaveLen(1))
			Expect(missing[0].ID).To(Equal(facts[1].ID))
		})

		It("ignores other contexts", func() {
			create("bob", "b", nil, []string{"fb"})

			missing, err := d.MissingFacts(ctx, vector.ModeOllamaNomic, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(missing).To(BeEmpty())
		})
	})

	Describe("notes", func() {
		It("records and lists usage notes newest-first per tool", func() {
			_, err := d.AddNote(ctx, "default", "memory_search", "boost tags help")
			Expect(err).NotTo(HaveOccurred())
			_, err = d.AddNote(ctx, "default", "memory_add", "split long narratives")
			Expect(err).NotTo(HaveOccurred())

			all, err := d.ListNotes(ctx, "default", "", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			filtered, err := d.ListNotes(ctx, "default", "memory_add", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(filtered).To(HaveLen(1))
			Expect(filtered[0].Note).To(Equal("split long narratives"))
		})

		It("rejects blank tool or note text", func() {
			_, err := d.AddNote(ctx, "default", " ", "text")
			Expect(memory.IsValidation(err)).To(BeTrue())

			_, err = d.AddNote(ctx, "default", "tool", " ")
			Expect(memory.IsValidation(err)).To(BeTrue())
		})
	})
})
