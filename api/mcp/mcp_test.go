package mcp_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/api/mcp"
	"github.com/NickSmet/mcp-local-memory/pkg/embeddings"
	"github.com/NickSmet/mcp-local-memory/pkg/modes"
	"github.com/NickSmet/mcp-local-memory/pkg/service"
	"github.com/NickSmet/mcp-local-memory/pkg/storage/sqlite"
	testutils "github.com/NickSmet/mcp-local-memory/pkg/utils/test"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

func TestMCP(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MCP Suite")
}

var _ = Describe("MCP Server", func() {
	var (
		d      *sqlite.Driver
		svc    *service.Service
		server *mcp.Server
	)

	BeforeEach(func() {
		var err error
		d, err = sqlite.NewDriver(sqlite.Config{DBPath: ":memory:"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

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

		svc, err = service.New(service.Config{
			Store:    d,
			Vectors:  d,
			Ledger:   d,
			Modes:    mgr,
			Splitter: testutils.NewMockSplitter(),
			Logger:   zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = mcp.NewServer(mcp.Config{
			Service:        svc,
			DefaultContext: "default",
			Logger:         zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(d.Close()).To(Succeed())
	})

	Describe("NewServer", func() {
		It("returns an error when the service is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Logger: zap.NewNop(),
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("service is required"))
		})

		It("returns an error when the logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Service: svc,
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("creates a server with valid config", func() {
			Expect(server).NotTo(BeNil())
		})

		It("returns an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})

		It("builds a toolless server when noop is set", func() {
			noop, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(noop).NotTo(BeNil())
		})
	})
})
