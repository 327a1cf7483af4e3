package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/filtering"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "ask_staffing",
		Description: "Ask a natural-language staffing question. Returns a recommendation and the best matching employees ranked by relevance.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Staffing question, e.g. 'who knows React and has healthcare experience?'"}
			},
			"required": ["query"]
		}`),
	}, s.handleAsk)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "search_employees",
		Description: "Filter the employee roster with exact criteria. All criteria are optional and combined with AND.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"skills": {"type": "string", "description": "Comma-separated skills; an employee matches when any skill matches"},
				"min_experience": {"type": "integer", "minimum": 0, "description": "Minimum years of experience"},
				"availability": {"type": "string", "description": "Availability status, e.g. available or busy"},
				"department": {"type": "string", "description": "Department name"}
			}
		}`),
	}, s.handleSearch)
}

func (s *Server) handleAsk(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	query := strings.TrimSpace(args.Query)
	if query == "" {
		return toolError("query is required"), nil
	}

	result, err := s.processor.Process(ctx, query)
	if err != nil {
		s.logger.Error("mcp query failed", zap.Error(err))
		return toolError("error processing query: %v", err), nil
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return toolError("encode result: %v", err), nil
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{
			&gomcp.TextContent{Text: result.Response},
			&gomcp.TextContent{Text: string(payload)},
		},
	}, nil
}

func (s *Server) handleSearch(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Skills        string `json:"skills"`
		MinExperience int    `json:"min_experience"`
		Availability  string `json:"availability"`
		Department    string `json:"department"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError("invalid arguments: %v", err), nil
		}
	}

	employees, err := filtering.Search(ctx, &filtering.Config{
		Skills:        filtering.ParseSkills(args.Skills),
		MinExperience: args.MinExperience,
		Availability:  args.Availability,
		Department:    args.Department,
	}, s.processor.Roster().All(), s.logger)
	if err != nil {
		return toolError("invalid criteria: %v", err), nil
	}

	if len(employees) == 0 {
		return &gomcp.CallToolResult{
			Content: []gomcp.Content{&gomcp.TextContent{Text: "No matching employees found."}},
		}, nil
	}

	payload, err := json.MarshalIndent(employees, "", "  ")
	if err != nil {
		return toolError("encode employees: %v", err), nil
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{
			&gomcp.TextContent{Text: fmt.Sprintf("Found %d employee(s).", len(employees))},
			&gomcp.TextContent{Text: string(payload)},
		},
	}, nil
}

func toolError(format string, args ...any) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
