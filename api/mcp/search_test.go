package mcp

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/embeddings"
	"github.com/NickSmet/mcp-local-memory/pkg/modes"
	"github.com/NickSmet/mcp-local-memory/pkg/service"
	"github.com/NickSmet/mcp-local-memory/pkg/storage/sqlite"
	testutils "github.com/NickSmet/mcp-local-memory/pkg/utils/test"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

var _ = Describe("handleMemorySearch", func() {
	var (
		d      *sqlite.Driver
		server *Server
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		d, err = sqlite.NewDriver(sqlite.Config{DBPath: ":memory:"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()

		embedder := testutils.NewMockEmbedder(vector.ModeHashLocal.Namespace().Dimensions)

		mgr, err := modes.NewManager(modes.Config{
			Active: vector.ModeHashLocal,
			Embedders: map[vector.Mode]embeddings.Embedder{
				vector.ModeHashLocal: embedder,
			},
			Store:  d,
			Logger: zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		svc, err := service.New(service.Config{
			Store:    d,
			Vectors:  d,
			Ledger:   d,
			Modes:    mgr,
			Splitter: testutils.NewMockSplitter(),
			Logger:   zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{
			Service:        svc,
			DefaultContext: "default",
			BoostWeight:    0.3,
			Logger:         zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		_, _, err = svc.AddMemory(ctx, service.AddParams{
			Context: "default",
			Text:    "User prefers dark mode.",
			Tags:    []string{"ui"},
			Facts:   []string{"User prefers dark mode"},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(d.Close()).To(Succeed())
	})

	It("applies the configured boost weight when the call omits one", func() {
		_, output, err := server.handleMemorySearch(ctx, nil, MemorySearchInput{
			Query:     "dark mode",
			BoostTags: []string{"ui"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(output.Results).To(HaveLen(1))

		r := output.Results[0]
		Expect(r.BoostMatches).To(Equal(1))
		Expect(r.Score).To(BeNumerically("~", r.Similarity+0.3, 1e-9))
	})

	It("keeps an explicit boost weight over the configured default", func() {
		_, output, err := server.handleMemorySearch(ctx, nil, MemorySearchInput{
			Query:       "dark mode",
			BoostTags:   []string{"ui"},
			BoostWeight: 0.5,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(output.Results).To(HaveLen(1))

		r := output.Results[0]
		Expect(r.Score).To(BeNumerically("~", r.Similarity+0.5, 1e-9))
	})

	It("leaves scores unboosted when no boost tag matches", func() {
		_, output, err := server.handleMemorySearch(ctx, nil, MemorySearchInput{
			Query:     "dark mode",
			BoostTags: []string{"infra"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(output.Results).To(HaveLen(1))

		r := output.Results[0]
		Expect(r.BoostMatches).To(BeZero())
		Expect(r.Score).To(BeNumerically("~", r.Similarity, 1e-9))
	})
})
