// Package agent implements the analysis agents. Agent prefers a paid vision
// model and delegates to FreeAgent when none is usable or a paid call fails.
package agent

import (
	"context"
	"fmt"
	"math/rand/v2"

	pkgErrors "github.com/pkg/errors"

	"github.com/fpt/go-apod-agent/internal/config"
	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	"github.com/fpt/go-apod-agent/pkg/cache"
	"github.com/fpt/go-apod-agent/pkg/knowledge"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

// MaxSearchAnalyses bounds how many search results SearchAndAnalyze analyzes
const MaxSearchAnalyses = 3

// ImageAnalysis pairs an image reference with its analysis
type ImageAnalysis struct {
	URL      string `json:"url"`
	Analysis string `json:"analysis"`
}

// SearchAnalysis is the result of SearchAndAnalyze. SearchResults is the
// picture source's payload, unmodified.
type SearchAnalysis struct {
	SearchResults string          `json:"searchResults"`
	Analyses      []ImageAnalysis `json:"analyses"`
}

// PictureAnalysis is a picture with an optional analysis (empty for videos)
type PictureAnalysis struct {
	domain.Picture
	Analysis string `json:"analysis,omitempty"`
}

// Agent is the primary analysis agent. It is safe for concurrent use.
type Agent struct {
	paid      domain.PaidVisionLLM
	forceFree bool
	free      *FreeAgent
	pictures  domain.PictureSource
	cache     *cache.Store
	logger    *pkgLogger.Logger
}

// NewAgent assembles an agent from already built parts. paid may be nil.
func NewAgent(paid domain.PaidVisionLLM, forceFree bool, free *FreeAgent, pictures domain.PictureSource, logger *pkgLogger.Logger) *Agent {
	if logger == nil {
		logger = pkgLogger.NewComponentLogger("agent")
	}
	return &Agent{
		paid:      paid,
		forceFree: forceFree,
		free:      free,
		pictures:  pictures,
		cache:     cache.New(),
		logger:    logger,
	}
}

// New builds the provider adapters described by settings and wires both agents.
func New(ctx context.Context, settings *config.Settings, pictures domain.PictureSource) (*Agent, error) {
	avail := DetectAvailability(settings)

	var rng *rand.Rand
	if settings.Free.Seed != 0 {
		rng = knowledge.NewRand(settings.Free.Seed)
	}
	kb, err := knowledge.New(ModeLabel(avail.FreeKind()), rng)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}

	providers, err := BuildProviders(ctx, settings, avail, kb)
	if err != nil {
		return nil, err
	}

	logger := pkgLogger.NewComponentLogger("agent")
	free := NewFreeAgent(providers, kb, logger.WithComponent("free-agent"))
	a := NewAgent(providers.Paid, avail.ForceFree, free, pictures, logger)

	info := a.AgentInfo()
	logger.InfoWithIcon("🤖", "Agent initialized", "type", info.Type, "status", info.Status)
	return a, nil
}

// usePaid is the single precedence rule between the paid and free paths.
func (a *Agent) usePaid() bool {
	return a.paid != nil && !a.forceFree
}

// AnalyzeImage describes the image at imageURL, optionally focusing on question.
// The only error is *domain.InputError for an empty imageURL.
func (a *Agent) AnalyzeImage(ctx context.Context, imageURL, question string) (string, error) {
	if imageURL == "" {
		return "", &domain.InputError{Field: "imageUrl"}
	}

	if !a.usePaid() {
		return a.free.AnalyzeImage(ctx, imageURL, question), nil
	}

	text, hit, err := a.cache.Do(ctx, cache.Key(imageURL, question), func(ctx context.Context) (string, error) {
		return a.paid.AnalyzeImage(ctx, imageURL, question)
	})
	if err != nil {
		a.logger.WarnWithIcon("⚠️", "Paid analysis failed, using free agent", "error", err)
		return a.free.AnalyzeImage(ctx, imageURL, question), nil
	}
	if hit {
		a.logger.Debug("analysis cache hit", "image", imageURL)
	}
	return text, nil
}

// AnswerQuestion answers question, using imageURL (or today's picture when
// empty) as context. The only error is *domain.InputError for an empty question.
func (a *Agent) AnswerQuestion(ctx context.Context, question, imageURL string) (string, error) {
	if question == "" {
		return "", &domain.InputError{Field: "question"}
	}

	if !a.usePaid() {
		return a.free.AnswerQuestion(ctx, question, imageURL), nil
	}

	contextText := a.answerContext(ctx, question, imageURL)

	answer, err := a.paid.Answer(ctx, contextText, question)
	if err != nil {
		a.logger.WarnWithIcon("⚠️", "Paid answer failed, using free agent", "error", err)
		return a.free.AnswerQuestion(ctx, question, imageURL), nil
	}
	return answer, nil
}

func (a *Agent) answerContext(ctx context.Context, question, imageURL string) string {
	if imageURL != "" {
		analysis, _ := a.AnalyzeImage(ctx, imageURL, question)
		return fmt.Sprintf("Based on the NASA image analysis: %s\n\n", analysis)
	}

	if a.pictures == nil {
		return ""
	}
	today, err := a.pictures.Picture(ctx, "", false)
	if err != nil {
		a.logger.Warn("Could not load today's picture for context", "error", err)
		return ""
	}

	contextText := fmt.Sprintf("Current NASA APOD context: %s\n\n", today.Summary)
	if today.IsImage && today.Reference != "" {
		analysis, _ := a.AnalyzeImage(ctx, today.Reference, question)
		contextText += fmt.Sprintf("Image analysis: %s\n\n", analysis)
	}
	return contextText
}

// SearchAndAnalyze searches a date range and analyzes up to MaxSearchAnalyses
// of the returned images. Failures of individual analyses are skipped.
func (a *Agent) SearchAndAnalyze(ctx context.Context, startDate, endDate string, count int) (*SearchAnalysis, error) {
	if a.pictures == nil {
		return nil, pkgErrors.New("no picture source configured")
	}

	payload, err := a.pictures.Search(ctx, startDate, endDate, count)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "search failed")
	}

	refs := payload.References
	if len(refs) > MaxSearchAnalyses {
		refs = refs[:MaxSearchAnalyses]
	}

	result := &SearchAnalysis{SearchResults: payload.Raw, Analyses: []ImageAnalysis{}}
	for _, ref := range refs {
		analysis, err := a.AnalyzeImage(ctx, ref, "")
		if err != nil {
			a.logger.Warn("Failed to analyze image", "url", ref, "error", err)
			continue
		}
		result.Analyses = append(result.Analyses, ImageAnalysis{URL: ref, Analysis: analysis})
	}
	return result, nil
}

// ImageOfTheDayWithAnalysis fetches the picture for date (today when empty)
// and analyzes it when it is an image.
func (a *Agent) ImageOfTheDayWithAnalysis(ctx context.Context, date string, hd bool) (*PictureAnalysis, error) {
	if a.pictures == nil {
		return nil, pkgErrors.New("no picture source configured")
	}

	picture, err := a.pictures.Picture(ctx, date, hd)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "failed to get image of the day")
	}

	result := &PictureAnalysis{Picture: picture}
	if picture.IsImage && picture.Reference != "" {
		result.Analysis, _ = a.AnalyzeImage(ctx, picture.Reference, "")
	}
	return result, nil
}

// ConversationContext returns today's picture for seeding a conversation
func (a *Agent) ConversationContext(ctx context.Context) (domain.Picture, error) {
	if a.pictures == nil {
		return domain.Picture{}, pkgErrors.New("no picture source configured")
	}
	picture, err := a.pictures.Picture(ctx, "", false)
	if err != nil {
		return domain.Picture{}, pkgErrors.Wrap(err, "failed to get conversation context")
	}
	return picture, nil
}

// AgentInfo describes the provider currently answering
func (a *Agent) AgentInfo() domain.AgentInfo {
	if !a.usePaid() {
		return a.free.AgentInfo()
	}

	provider := "Paid"
	if namer, ok := a.paid.(domain.ProviderNamer); ok {
		provider = namer.ProviderName()
	}
	return domain.AgentInfo{
		Type:         domain.ProviderPaid,
		Capabilities: []string{"Image analysis", "Text generation", "Advanced AI", "Paid API"},
		Status:       fmt.Sprintf("🟢 %s %s - Full AI capabilities", provider, a.paid.ModelID()),
	}
}
