package mcp

import (
	"context"
	"fmt"

	"ecopack-forecast/internal/forecast"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// ServerName identifies this server to MCP clients.
const ServerName = "ecopack-forecast"

// Server exposes the forecast service as MCP tools.
type Server struct {
	svc     *forecast.Service
	version string
	server  *sdk.Server
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(svc *forecast.Service, version string) (*Server, error) {
	s := &Server{
		svc:     svc,
		version: version,
		server: sdk.NewServer(&sdk.Implementation{
			Name:    ServerName,
			Version: version,
		}, nil),
	}
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	return s, nil
}

// Serve runs the MCP protocol over stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("version", s.version).Msg("MCP server listening on stdio")
	if err := s.server.Run(ctx, &sdk.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// Connect serves a single session over the given transport.
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}
