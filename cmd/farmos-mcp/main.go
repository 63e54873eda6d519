// Command farmos-mcp is an MCP stdio server exposing a farmOS instance
// as callable tools for an AI assistant.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexjbarnes/farmos-mcp/internal/config"
	"github.com/alexjbarnes/farmos-mcp/internal/farm"
	"github.com/alexjbarnes/farmos-mcp/internal/farmos"
	"github.com/alexjbarnes/farmos-mcp/internal/logging"
	"github.com/alexjbarnes/farmos-mcp/internal/mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Environment, cfg.LogLevel)

	grant := "client_credentials"
	if cfg.PasswordGrant() {
		grant = "password"
	}

	logger.Info("connecting to farmOS",
		slog.String("url", cfg.URL),
		slog.String("grant", grant),
		slog.Bool("read_only", cfg.ReadOnly),
	)

	client := farmos.New(farmos.Options{
		BaseURL:      cfg.URL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Logger:       logger,
	})

	svc := farm.New(client)

	server := mcp.NewServer(
		&mcp.Implementation{Name: "farmos-mcp", Version: Version},
		nil,
	)
	mcpserver.RegisterTools(server, svc, !cfg.ReadOnly)
	mcpserver.RegisterPrompts(server)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting MCP server on stdio")

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
