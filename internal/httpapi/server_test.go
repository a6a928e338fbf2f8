package httpapi

import (
	"encoding/json"
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

const todayJSON = `{"date":"2024-01-15","title":"Andromeda Galaxy","explanation":"Our nearest large neighbor.","url":"https://apod.nasa.gov/apod/image/2401/m31.jpg","hdurl":"https://apod.nasa.gov/apod/image/2401/m31_hd.jpg","media_type":"image","service_version":"v1"}`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	nasa := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("start_date") != "" || r.URL.Query().Get("count") != "" {
			w.Write([]byte("[" + todayJSON + "," + todayJSON + "]"))
			return
		}
		w.Write([]byte(todayJSON))
	}))
	t.Cleanup(nasa.Close)

	pictures := apod.New(apod.Options{BaseURL: nasa.URL, PageURL: "-", HTTPClient: nasa.Client()})

	kb, err := knowledge.New("basic", knowledge.NewRand(3))
	if err != nil {
		t.Fatal(err)
	}
	logger := pkgLogger.NewDiscardLogger()
	free := agent.NewFreeAgent(agent.Providers{}, kb, logger)
	a := agent.NewAgent(nil, false, free, pictures, logger)

	return NewServer(config.GetDefaultSettings(), a, pictures, logger)
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	testCases := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantKey    string
	}{
		{"today", http.MethodGet, "/api/image-of-the-day", "", http.StatusOK, "summary"},
		{"today analyzed", http.MethodGet, "/api/image-of-the-day?analyze=true", "", http.StatusOK, "analysis"},
		{"info", http.MethodGet, "/api/image-info/2024-01-15", "", http.StatusOK, "text"},
		{"info bad date", http.MethodGet, "/api/image-info/15-01-2024", "", http.StatusBadRequest, "error"},
		{"search", http.MethodGet, "/api/search?start_date=2024-01-14&end_date=2024-01-15", "", http.StatusOK, "raw"},
		{"search analyzed", http.MethodGet, "/api/search?count=2&analyze=true", "", http.StatusOK, "analyses"},
		{"ask", http.MethodPost, "/api/ask", `{"question":"What is a nebula?"}`, http.StatusOK, "answer"},
		{"ask missing question", http.MethodPost, "/api/ask", `{"imageUrl":"https://example/a.jpg"}`, http.StatusBadRequest, "error"},
		{"analyze", http.MethodPost, "/api/analyze-image", `{"imageUrl":"https://example/a.jpg"}`, http.StatusOK, "analysis"},
		{"analyze missing url", http.MethodPost, "/api/analyze-image", `{}`, http.StatusBadRequest, "error"},
		{"analyze no body", http.MethodPost, "/api/analyze-image", "", http.StatusBadRequest, "error"},
		{"context", http.MethodGet, "/api/context", "", http.StatusOK, "reference"},
		{"health", http.MethodGet, "/api/health", "", http.StatusOK, "timestamp"},
		{"agent status", http.MethodGet, "/api/agent-status", "", http.StatusOK, "capabilities"},
		{"config status", http.MethodGet, "/api/config-status", "", http.StatusOK, "setupInstructions"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, out := do(t, s, tc.method, tc.path, tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if _, ok := out[tc.wantKey]; !ok {
				t.Errorf("expected key %q in %s", tc.wantKey, rec.Body.String())
			}
		})
	}
}

func TestAskAnswerContent(t *testing.T) {
	s := newTestServer(t)

	_, out := do(t, s, http.MethodPost, "/api/ask", `{"question":"What is a nebula?"}`)
	answer, _ := out["answer"].(string)
	if !strings.Contains(answer, "Nebulae are clouds of gas and dust in space") {
		t.Errorf("expected nebula fact, got %q", answer)
	}
}

func TestSearchAnalyzedCapsAnalyses(t *testing.T) {
	s := newTestServer(t)

	_, out := do(t, s, http.MethodGet, "/api/search?analyze=true", "")
	analyses, _ := out["analyses"].([]any)
	if len(analyses) == 0 || len(analyses) > agent.MaxSearchAnalyses {
		t.Errorf("unexpected analyses count %d", len(analyses))
	}
}

func TestRequestIDAndCORS(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, http.MethodGet, "/api/health", "")
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("expected generated request ID header")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Header().Get(requestIDHeader) != "abc-123" {
		t.Errorf("expected caller request ID to be echoed, got %q", rec.Header().Get(requestIDHeader))
	}

	rec, _ = do(t, s, http.MethodOptions, "/api/ask", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
}
