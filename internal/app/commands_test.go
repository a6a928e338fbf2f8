package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fpt/go-apod-agent/internal/agent"
	"github.com/fpt/go-apod-agent/internal/apod"
	"github.com/fpt/go-apod-agent/internal/config"
	"github.com/fpt/go-apod-agent/pkg/knowledge"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

const entryJSON = `{"date":"2024-01-15","title":"Andromeda Galaxy","explanation":"Our nearest large neighbor.","url":"https://apod.nasa.gov/apod/image/2401/m31.jpg","hdurl":"https://apod.nasa.gov/apod/image/2401/m31_big.jpg","media_type":"image"}`

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	nasa := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start_date") != "" {
			w.Write([]byte("[" + entryJSON + "," + entryJSON + "]"))
			return
		}
		w.Write([]byte(entryJSON))
	}))
	t.Cleanup(nasa.Close)

	pictures := apod.New(apod.Options{BaseURL: nasa.URL, PageURL: "-", HTTPClient: nasa.Client()})
	kb, err := knowledge.New("basic", knowledge.NewRand(3))
	if err != nil {
		t.Fatal(err)
	}
	logger := pkgLogger.NewDiscardLogger()
	a := agent.NewAgent(nil, false, agent.NewFreeAgent(agent.Providers{}, kb, logger), pictures, logger)

	var out bytes.Buffer
	tools := []ToolInfo{{Name: "get_image_of_the_day", Description: "Get NASA's Astronomy Picture of the Day (APOD)"}}
	return NewShell(a, pictures, config.GetDefaultSettings(), tools, &out), &out
}

func TestExecute(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []string
	}{
		{"today", "today", []string{"# NASA Astronomy Picture of the Day - 2024-01-15", "m31.jpg"}},
		{"today hd", "/today --hd", []string{"m31_big.jpg"}},
		{"today analyze", "today --analyze", []string{"🤖 AI Analysis:", "Basic Astronomical Analysis"}},
		{"date", "date 01/15/2024", []string{"# APOD Information for 2024-01-15"}},
		{"date usage", "date", []string{"Usage: date"}},
		{"date invalid", "date yesterday", []string{"❌ Error: invalid date"}},
		{"search", "search 2024-01-01 2024-01-15", []string{"Found 2 image(s)"}},
		{"search analyze", "search 2024-01-01 2024-01-15 --analyze", []string{"🤖 Analysis 1", "🤖 Analysis 2"}},
		{"search usage", "search", []string{"Usage: search"}},
		{"ask", "ask What is a nebula?", []string{"Nebulae are clouds of gas"}},
		{"ask empty", "ask", []string{"❌ Error: question is required"}},
		{"free text asks", "tell me about a galaxy", []string{"Galaxies are vast collections"}},
		{"analyze", "analyze https://example/a.jpg what is this", []string{"Basic Astronomical Analysis"}},
		{"analyze usage", "analyze", []string{"Usage: analyze"}},
		{"tools", "tools", []string{"get_image_of_the_day"}},
		{"status", "/status", []string{"Type:   basic", "Basic astronomy knowledge"}},
		{"config", "config", []string{"NASA API: Using the shared demo key", "No AI service configured"}},
		{"help", "help", []string{"today [--hd] [--analyze]", "analyze <image-url> [question]"}},
		{"unknown slash", "/bogus", []string{"Unknown command: /bogus"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			shell, out := newTestShell(t)
			if shell.Execute(context.Background(), tc.input) {
				t.Fatal("command should not end the session")
			}
			for _, want := range tc.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected %q in output:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestExecute_Exit(t *testing.T) {
	for _, input := range []string{"exit", "/exit", "quit", "EXIT"} {
		shell, out := newTestShell(t)
		if !shell.Execute(context.Background(), input) {
			t.Errorf("%q should end the session", input)
		}
		if !strings.Contains(out.String(), "Goodbye") {
			t.Errorf("expected goodbye for %q", input)
		}
	}
}

func TestExecute_BlankLine(t *testing.T) {
	shell, out := newTestShell(t)
	if shell.Execute(context.Background(), "   ") || out.Len() != 0 {
		t.Error("blank line should do nothing")
	}
}

func TestSplitFlags(t *testing.T) {
	positional, flags := splitFlags([]string{"2024-01-01", "--analyze", "2024-01-05"})
	if strings.Join(positional, ",") != "2024-01-01,2024-01-05" {
		t.Errorf("unexpected positional %v", positional)
	}
	if len(flags) != 1 || flags[0] != "analyze" {
		t.Errorf("unexpected flags %v", flags)
	}
}
