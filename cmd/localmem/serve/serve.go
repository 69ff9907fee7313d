// Package servecmder provides the serve command for running the localmem
// server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/api"
	"github.com/NickSmet/mcp-local-memory/api/mcp"
	"github.com/NickSmet/mcp-local-memory/cmd/localmem/engine"
	"github.com/NickSmet/mcp-local-memory/pkg/config"
	"github.com/NickSmet/mcp-local-memory/pkg/logger"
)

type ServeCommander struct {
	apiListen  string
	sqlitePath string
	noMCP      bool
	debug      bool
	configDir  string
	logger     *zap.Logger
}

const serveLongDesc string = `Run the localmem server.

Serves the MCP tool surface under /mcp and the inspection REST API on the
same listener. Agents connect over streamable HTTP; the REST endpoints are
for humans poking at the store.

Examples:
  localmem serve
  localmem serve --api-listen :9000 --sqlite ./memory.db`

const serveShortDesc string = "Run the localmem server"

var serveFlags = config.FlagSet{
	config.FlagAPIListen: {
		Name:        "api-listen",
		Shorthand:   "a",
		ViperKey:    "api.listen",
		Description: "Address for the server to listen on",
	},
	config.FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to the SQLite database",
	},
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.apiListen)
	config.AddStringFlag(cmd, serveFlags, config.FlagSQLite, &cmder.sqlitePath)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the MCP tool surface")

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, serveFlags, []string{
		config.FlagAPIListen,
		config.FlagSQLite,
	})

	eng, err := engine.Build(v, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	apiServer := api.NewServer(api.Config{
		ListenAddr:     v.GetString("api.listen"),
		DefaultContext: eng.Context,
	}, eng.Service, c.logger)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Service:        eng.Service,
		DefaultContext: eng.Context,
		BoostWeight:    eng.BoostWeight,
		Noop:           c.noMCP,
		Logger:         c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}
	if !c.noMCP {
		apiServer.MountMCP(mcpServer.Handler())
	}

	c.logger.Info("starting localmem server",
		zap.String("listen", v.GetString("api.listen")),
		zap.Stringer("mode", eng.Modes.Active()),
		zap.Bool("mcp", !c.noMCP),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}
