// Package mcp exposes the staffing assistant as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/pipeline"
	"github.com/spigell/hr-assistant/internal/roster"
)

// Processor answers queries over a fixed roster.
type Processor interface {
	Process(ctx context.Context, query string) (*pipeline.QueryResult, error)
	Roster() *roster.Store
}

// Server wraps the MCP server around a query processor.
type Server struct {
	mcp       *gomcp.Server
	processor Processor
	logger    *zap.Logger
}

// NewServer creates an MCP server with the staffing tools registered.
func NewServer(processor Processor, version string, logger *zap.Logger) (*Server, error) {
	if processor == nil {
		return nil, fmt.Errorf("query processor is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mcp: gomcp.NewServer(
			&gomcp.Implementation{
				Name:    "hr-assistant",
				Version: version,
			},
			nil,
		),
		processor: processor,
		logger:    logger,
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
