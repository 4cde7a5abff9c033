package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"devops-report/internal/report"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Reporter produces status reports for the default or an explicit strategy.
type Reporter interface {
	Run(ctx context.Context) string
	RunStrategy(ctx context.Context, strategy report.Strategy) string
}

// ReportArgs are the arguments of the generate_status_report tool.
type ReportArgs struct {
	Strategy string `json:"strategy,omitempty" jsonschema:"Report strategy: 'active-stories' (flat list of active user stories) or 'open-hierarchy' (Epic/User Story/Task tree of everything not closed). Defaults to the configured strategy."`
}

// Server exposes report generation as MCP tools over stdio.
type Server struct {
	reporter Reporter
	inner    *sdk.Server
}

// NewServer creates a new MCP server.
func NewServer(reporter Reporter, version string) (*Server, error) {
	s := &Server{reporter: reporter}
	s.inner = sdk.NewServer(&sdk.Implementation{Name: "devops-report", Version: version}, nil)

	schema, err := jsonschema.For[ReportArgs](nil)
	if err != nil {
		return nil, fmt.Errorf("build tool schema: %w", err)
	}

	sdk.AddTool(s.inner, &sdk.Tool{
		Name:        "generate_status_report",
		Description: "Fetch work items from Azure DevOps and generate a markdown status report (summary, totals, risks and blockers, progress).",
		InputSchema: schema,
	}, s.handleGenerateReport)

	sdk.AddTool(s.inner, &sdk.Tool{
		Name:        "list_report_strategies",
		Description: "List the available report strategies and which work item types and states each one covers.",
	}, s.handleListStrategies)

	return s, nil
}

// Serve runs the MCP session over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Msg("MCP Server starting Stdio loop")
	return s.inner.Run(ctx, &sdk.StdioTransport{})
}

func (s *Server) handleGenerateReport(ctx context.Context, _ *sdk.CallToolRequest, args ReportArgs) (*sdk.CallToolResult, any, error) {
	if args.Strategy == "" {
		return textResult(s.reporter.Run(ctx)), nil, nil
	}

	strategy, err := report.LookupStrategy(args.Strategy)
	if err != nil {
		res := textResult(err.Error())
		res.IsError = true
		return res, nil, nil
	}
	return textResult(s.reporter.RunStrategy(ctx, strategy)), nil, nil
}

func (s *Server) handleListStrategies(_ context.Context, _ *sdk.CallToolRequest, _ struct{}) (*sdk.CallToolResult, any, error) {
	out, err := json.MarshalIndent([]report.Strategy{report.ActiveStories(), report.OpenHierarchy()}, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return textResult(string(out)), nil, nil
}

func textResult(text string) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: text}},
	}
}
