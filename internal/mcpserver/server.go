// Package mcpserver exposes APOD lookups and the analysis agent as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fpt/go-apod-agent/internal/agent"
	"github.com/fpt/go-apod-agent/internal/apod"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

const serverName = "nasa-apod-mcp-server"

// Server wraps an MCP server with the APOD and agent tools registered
type Server struct {
	mcp      *server.MCPServer
	agent    *agent.Agent
	pictures *apod.Client
	logger   *pkgLogger.Logger
	tools    []mcp.Tool
}

// New creates the MCP server and registers all tools
func New(a *agent.Agent, pictures *apod.Client, version string, logger *pkgLogger.Logger) *Server {
	if logger == nil {
		logger = pkgLogger.NewComponentLogger("mcp-server")
	}
	s := &Server{
		mcp:      server.NewMCPServer(serverName, version, server.WithToolCapabilities(false)),
		agent:    a,
		pictures: pictures,
		logger:   logger,
	}
	s.registerTools()
	return s
}

// Tools lists registered tools in registration order
func (s *Server) Tools() []mcp.Tool {
	return s.tools
}

// ToolNames lists registered tool names in registration order
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.tools))
	for _, tool := range s.tools {
		names = append(names, tool.Name)
	}
	return names
}

// ServeStdio blocks serving JSON-RPC on stdin/stdout. Logs must go to stderr.
func (s *Server) ServeStdio() error {
	s.logger.InfoWithIcon("📡", "MCP server running on stdio", "tools", len(s.tools))
	return server.ServeStdio(s.mcp)
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
	s.tools = append(s.tools, tool)
}

func (s *Server) registerTools() {
	s.addTool(mcp.NewTool("get_image_of_the_day",
		mcp.WithDescription("Get NASA's Astronomy Picture of the Day (APOD)"),
		mcp.WithString("date", mcp.Description("Date in YYYY-MM-DD or MM/DD/YYYY format (optional, defaults to today)")),
		mcp.WithBoolean("hd", mcp.Description("Whether to return HD version of the image (default: false)")),
	), s.handleImageOfTheDay)

	s.addTool(mcp.NewTool("get_image_info",
		mcp.WithDescription("Get detailed information about a specific APOD image"),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date in YYYY-MM-DD or MM/DD/YYYY format")),
	), s.handleImageInfo)

	s.addTool(mcp.NewTool("search_apod",
		mcp.WithDescription("Search APOD images by date range, or return random images when no range is given"),
		mcp.WithString("start_date", mcp.Description("Start date in YYYY-MM-DD or MM/DD/YYYY format")),
		mcp.WithString("end_date", mcp.Description("End date in YYYY-MM-DD or MM/DD/YYYY format")),
		mcp.WithNumber("count", mcp.Description("Number of random images to return without a range (max 100)")),
	), s.handleSearch)

	s.addTool(mcp.NewTool("analyze_image",
		mcp.WithDescription("Analyze an astronomy image with the configured AI provider"),
		mcp.WithString("image_url", mcp.Required(), mcp.Description("URL of the image to analyze")),
		mcp.WithString("question", mcp.Description("Optional question to focus the analysis")),
	), s.handleAnalyzeImage)

	s.addTool(mcp.NewTool("ask_question",
		mcp.WithDescription("Ask an astronomy question, optionally about a specific image"),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer")),
		mcp.WithString("image_url", mcp.Description("Optional image to use as context")),
	), s.handleAskQuestion)

	s.addTool(mcp.NewTool("agent_status",
		mcp.WithDescription("Report which AI provider is answering and its capabilities"),
	), s.handleAgentStatus)
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + err.Error())
}

func (s *Server) handleImageOfTheDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hd := req.GetBool("hd", false)
	entry, err := s.pictures.Get(ctx, req.GetString("date", ""), hd)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(apod.FormatToday(entry, hd)), nil
}

func (s *Server) handleImageInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entry, err := s.pictures.Info(ctx, req.GetString("date", ""))
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(apod.FormatInfo(entry)), nil
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := s.pictures.Search(ctx,
		req.GetString("start_date", ""),
		req.GetString("end_date", ""),
		int(req.GetFloat("count", apod.DefaultSearchCount)))
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(payload.Raw), nil
}

func (s *Server) handleAnalyzeImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	analysis, err := s.agent.AnalyzeImage(ctx, req.GetString("image_url", ""), req.GetString("question", ""))
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(analysis), nil
}

func (s *Server) handleAskQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	answer, err := s.agent.AnswerQuestion(ctx, req.GetString("question", ""), req.GetString("image_url", ""))
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(answer), nil
}

func (s *Server) handleAgentStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(s.agent.AgentInfo(), "", "  ")
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
