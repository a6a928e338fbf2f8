package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/openai/openai-go/v2/option"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	"github.com/fpt/go-apod-agent/pkg/imagefetch"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": {{content}}}}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

type fakeOpenAI struct {
	srv      *httptest.Server
	mu       sync.Mutex
	lastBody map[string]any
}

func (f *fakeOpenAI) body() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}

func newFakeOpenAI(t *testing.T, status int, content string) *fakeOpenAI {
	t.Helper()
	f := &fakeOpenAI{}
	mux := http.NewServeMux()
	mux.HandleFunc("/image.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.lastBody = body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota"}}`))
			return
		}
		w.Write([]byte(strings.Replace(completionBody, "{{content}}", jsonString(content), 1)))
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newTestClient(t *testing.T, f *fakeOpenAI) *VisionClient {
	t.Helper()
	c, err := NewVisionClient("sk-test", "gpt-4o", imagefetch.New(f.srv.Client()),
		option.WithBaseURL(f.srv.URL+"/"),
		option.WithHTTPClient(f.srv.Client()),
		option.WithMaxRetries(0),
	)
	if err != nil {
		t.Fatalf("NewVisionClient failed: %v", err)
	}
	return c
}

func TestAnalyzeImage(t *testing.T) {
	f := newFakeOpenAI(t, http.StatusOK, "A spiral galaxy with dust lanes.")
	c := newTestClient(t, f)

	text, err := c.AnalyzeImage(context.Background(), f.srv.URL+"/image.jpg", "")
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}
	if text != "A spiral galaxy with dust lanes." {
		t.Errorf("unexpected text %q", text)
	}

	if got := f.body()["max_completion_tokens"]; got != float64(domain.AnalysisMaxTokens) {
		t.Errorf("expected analysis token budget, got %v", got)
	}
	raw, _ := json.Marshal(f.body()["messages"])
	if !strings.Contains(string(raw), "data:image/jpeg;base64,") {
		t.Errorf("expected inline data URL in request, got %s", raw)
	}
	if !strings.Contains(string(raw), "Analyze this NASA Astronomy Picture of the Day") {
		t.Errorf("expected default instruction in request, got %s", raw)
	}
}

func TestAnswer(t *testing.T) {
	f := newFakeOpenAI(t, http.StatusOK, "Nebulae are clouds of gas.")
	c := newTestClient(t, f)

	text, err := c.Answer(context.Background(), "Image analysis: red glow\n\n", "What is a nebula?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if text != "Nebulae are clouds of gas." {
		t.Errorf("unexpected text %q", text)
	}
	if got := f.body()["max_completion_tokens"]; got != float64(domain.AnswerMaxTokens) {
		t.Errorf("expected answer token budget, got %v", got)
	}
	raw, _ := json.Marshal(f.body()["messages"])
	if !strings.Contains(string(raw), "Image analysis: red glow") {
		t.Errorf("expected context in system prompt, got %s", raw)
	}
}

func TestFailuresAreProviderErrors(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		content    string
		imagePath  string
		wantStatus int
	}{
		{"quota exceeded", http.StatusTooManyRequests, "", "/image.jpg", http.StatusTooManyRequests},
		{"server error", http.StatusInternalServerError, "", "/image.jpg", http.StatusInternalServerError},
		{"empty content", http.StatusOK, "", "/image.jpg", 0},
		{"image missing", http.StatusOK, "unused", "/missing.jpg", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeOpenAI(t, tc.status, tc.content)
			c := newTestClient(t, f)

			_, err := c.AnalyzeImage(context.Background(), f.srv.URL+tc.imagePath, "")
			var pe *domain.ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if pe.Provider != providerName {
				t.Errorf("expected provider %q, got %q", providerName, pe.Provider)
			}
			if pe.StatusCode != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, pe.StatusCode)
			}
		})
	}
}

func TestGetOpenAIModel(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"gpt-4o", "gpt-4o"},
		{"gpt-4o-mini", "gpt-4o-mini"},
		{"gpt-5", "gpt-5"},
		{"", "gpt-4o"},
		{"unknown-model", "gpt-4o"},
	}

	for _, tc := range testCases {
		if result := getOpenAIModel(tc.input); result != tc.expected {
			t.Errorf("getOpenAIModel(%q) = %q, expected %q", tc.input, result, tc.expected)
		}
	}
}

func TestNewVisionClient_NoAPIKey(t *testing.T) {
	if _, err := NewVisionClient("", "gpt-4o", nil); err == nil {
		t.Error("expected error without API key")
	}
}

func TestMaxTokensFor(t *testing.T) {
	testCases := []struct {
		model     string
		requested int
		expected  int
	}{
		{"gpt-4o", domain.AnalysisMaxTokens, domain.AnalysisMaxTokens},
		{"gpt-4o", 20000, 8192},
		{"gpt-4o-mini", 5000, 4096},
		{"gpt-5", 20000, 16384},
	}

	for _, tc := range testCases {
		if got := maxTokensFor(tc.model, tc.requested); got != tc.expected {
			t.Errorf("maxTokensFor(%q, %d) = %d, expected %d", tc.model, tc.requested, got, tc.expected)
		}
	}
}
