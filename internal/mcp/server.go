// ABOUTME: MCP server initialization and configuration for chainjournal.
// ABOUTME: Exposes the journal accessors as tools for AI agent access over stdio.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/chainjournal/internal/journal"
)

// Server wraps the MCP server around a journal program accessor.
type Server struct {
	mcp     *gomcp.Server
	program *journal.Program
	version string
}

// ServerOption configures optional Server settings.
type ServerOption func(*Server)

// WithVersion sets the implementation version reported to clients.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates an MCP server with journal entry tools.
func NewServer(program *journal.Program, opts ...ServerOption) (*Server, error) {
	if program == nil {
		return nil, fmt.Errorf("journal program is required")
	}

	s := &Server{
		program: program,
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "chainjournal",
			Version: s.version,
		},
		nil,
	)

	s.registerJournalTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
