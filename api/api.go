package api

import (
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/service"
)

// Server is the HTTP API server for inspecting memories, facts, tags, and
// embedding-mode coverage.
type Server struct {
	config Config
	svc    *service.Service
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The service is injected to allow sharing with the MCP surface.
func NewServer(config Config, svc *service.Service, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		svc:    svc,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/memories", s.handleListMemories)
	app.Get("/memories/:id", s.handleGetMemory)
	app.Get("/memories/:id/facts", s.handleListFacts)
	app.Get("/tags", s.handleListTags)
	app.Get("/mode", s.handleModeStatus)
	app.Get("/search", s.handleSearch)

	return s
}

// MountMCP serves an MCP streamable HTTP handler under /mcp on the same
// listener as the inspection API.
func (s *Server) MountMCP(handler http.Handler) {
	s.app.All("/mcp", adaptor.HTTPHandler(handler))
	s.app.All("/mcp/*", adaptor.HTTPHandler(handler))
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
