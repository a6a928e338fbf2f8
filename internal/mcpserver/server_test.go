package mcpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fpt/go-apod-agent/internal/agent"
	"github.com/fpt/go-apod-agent/internal/apod"
	"github.com/fpt/go-apod-agent/pkg/knowledge"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

const entryJSON = `{"date":"2024-01-15","title":"Andromeda Galaxy","explanation":"Our nearest large neighbor.","url":"https://apod.nasa.gov/apod/image/2401/m31.jpg","media_type":"image"}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	nasa := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") == "1990-01-01" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":400,"msg":"Date must be between Jun 16, 1995 and today."}`))
			return
		}
		if r.URL.Query().Get("start_date") != "" || r.URL.Query().Get("count") != "" {
			w.Write([]byte("[" + entryJSON + "]"))
			return
		}
		w.Write([]byte(entryJSON))
	}))
	t.Cleanup(nasa.Close)

	pictures := apod.New(apod.Options{BaseURL: nasa.URL, PageURL: "-", HTTPClient: nasa.Client()})
	kb, err := knowledge.New("basic", knowledge.NewRand(5))
	if err != nil {
		t.Fatal(err)
	}
	logger := pkgLogger.NewDiscardLogger()
	a := agent.NewAgent(nil, false, agent.NewFreeAgent(agent.Providers{}, kb, logger), pictures, logger)
	return New(a, pictures, "test", logger)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestToolNames(t *testing.T) {
	s := newTestServer(t)
	want := []string{"get_image_of_the_day", "get_image_info", "search_apod", "analyze_image", "ask_question", "agent_status"}
	if strings.Join(s.ToolNames(), ",") != strings.Join(want, ",") {
		t.Errorf("unexpected tools %v", s.ToolNames())
	}
}

func TestTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]any
		want    string
		isError bool
	}{
		{"today", s.handleImageOfTheDay, map[string]any{}, "# NASA Astronomy Picture of the Day - 2024-01-15", false},
		{"info", s.handleImageInfo, map[string]any{"date": "01/15/2024"}, "# APOD Information for 2024-01-15", false},
		{"info without date", s.handleImageInfo, map[string]any{}, "Error: date is required", true},
		{"info upstream error", s.handleImageInfo, map[string]any{"date": "1990-01-01"}, "Date must be between", true},
		{"search", s.handleSearch, map[string]any{"count": float64(3)}, "Found 1 image(s)", false},
		{"analyze", s.handleAnalyzeImage, map[string]any{"image_url": "https://example/a.jpg"}, "Basic Astronomical Analysis", false},
		{"analyze without url", s.handleAnalyzeImage, map[string]any{}, "Error: imageUrl is required", true},
		{"ask", s.handleAskQuestion, map[string]any{"question": "What is a nebula?"}, "Nebulae are clouds of gas", false},
		{"ask without question", s.handleAskQuestion, map[string]any{}, "Error: question is required", true},
		{"status", s.handleAgentStatus, map[string]any{}, `"type": "basic"`, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := tc.handler(ctx, callRequest(tc.args))
			if err != nil {
				t.Fatalf("tool failures must be results, not protocol errors: %v", err)
			}
			if res.IsError != tc.isError {
				t.Errorf("expected IsError=%v", tc.isError)
			}
			if text := resultText(t, res); !strings.Contains(text, tc.want) {
				t.Errorf("expected %q in %q", tc.want, text)
			}
		})
	}
}
