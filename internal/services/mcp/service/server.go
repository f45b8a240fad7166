package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/warroom/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "warroom MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Config configures the MCP server.
type Config struct {
	// Engine is the in-process game engine the tools drive.
	Engine domain.Engine
	// UserID is the account the connected agent plays as. Every tool call
	// acts through this user's seats.
	UserID string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New creates an MCP server exposing the game tools for one agent identity.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine is required")
	}
	userID := strings.TrimSpace(cfg.UserID)
	if userID == "" {
		return nil, errors.New("agent user id is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, domain.GameStatusTool(), domain.GameStatusHandler(cfg.Engine, userID))
	mcp.AddTool(mcpServer, domain.ProposeTool(), domain.ProposeHandler(cfg.Engine, userID))
	mcp.AddTool(mcpServer, domain.AddArgumentTool(), domain.AddArgumentHandler(cfg.Engine, userID))
	mcp.AddTool(mcpServer, domain.SubmitVoteTool(), domain.SubmitVoteHandler(cfg.Engine, userID))
	mcp.AddTool(mcpServer, domain.SubmitNarrationTool(), domain.SubmitNarrationHandler(cfg.Engine, userID))

	return &Server{mcpServer: mcpServer}, nil
}

// Run is the service entrypoint for MCP and blocks until the client
// disconnects or the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
// Context cancellation is the normal shutdown path, not an error.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
