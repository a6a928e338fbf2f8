package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	"github.com/fpt/go-apod-agent/pkg/knowledge"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
}

func (f *fakeAnalyzer) AnalyzeImage(ctx context.Context, imageURL, question string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePaid struct {
	fakeAnalyzer
	answer      string
	answerErr   error
	answerCalls int
	lastContext string
}

func (f *fakePaid) Answer(ctx context.Context, contextText, question string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answerCalls++
	f.lastContext = contextText
	if f.answerErr != nil {
		return "", f.answerErr
	}
	return f.answer, nil
}

func (f *fakePaid) ModelID() string      { return "vision-test" }
func (f *fakePaid) ProviderName() string { return "fakeai" }

type fakePictures struct {
	picture    domain.Picture
	pictureErr error
	payload    domain.SearchPayload
	searchErr  error
}

func (f *fakePictures) Picture(ctx context.Context, date string, hd bool) (domain.Picture, error) {
	return f.picture, f.pictureErr
}

func (f *fakePictures) Search(ctx context.Context, startDate, endDate string, count int) (domain.SearchPayload, error) {
	return f.payload, f.searchErr
}

func newTestKnowledge(t *testing.T, kind domain.ProviderKind) *knowledge.Base {
	t.Helper()
	kb, err := knowledge.New(ModeLabel(kind), knowledge.NewRand(7))
	if err != nil {
		t.Fatalf("knowledge.New failed: %v", err)
	}
	return kb
}

func newTestFreeAgent(t *testing.T, providers Providers) *FreeAgent {
	t.Helper()
	kind := domain.ProviderBasic
	switch {
	case providers.Local != nil:
		kind = domain.ProviderLocalModel
	case providers.Hosted != nil:
		kind = domain.ProviderHostedFree
	}
	return NewFreeAgent(providers, newTestKnowledge(t, kind), pkgLogger.NewDiscardLogger())
}

var providerFailure = &domain.ProviderError{Provider: "fake", StatusCode: 429, Message: "quota exceeded"}
