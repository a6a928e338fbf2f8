package agent

import (
	"context"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	"github.com/fpt/go-apod-agent/pkg/cache"
	"github.com/fpt/go-apod-agent/pkg/knowledge"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

// FreeAgent answers with whichever no-cost provider was available at
// construction and falls back to the knowledge base when that provider fails.
// Its methods never return errors.
type FreeAgent struct {
	kind      domain.ProviderKind
	analyzer  domain.ImageAnalyzer // nil in basic mode
	knowledge *knowledge.Base
	cache     *cache.Store
	logger    *pkgLogger.Logger
}

// NewFreeAgent selects the provider from what is present in providers:
// Local, then Hosted, else basic mode. Providers.Paid is ignored.
func NewFreeAgent(providers Providers, kb *knowledge.Base, logger *pkgLogger.Logger) *FreeAgent {
	if logger == nil {
		logger = pkgLogger.NewComponentLogger("free-agent")
	}

	fa := &FreeAgent{
		kind:      domain.ProviderBasic,
		knowledge: kb,
		cache:     cache.New(),
		logger:    logger,
	}
	switch {
	case providers.Local != nil:
		fa.kind = domain.ProviderLocalModel
		fa.analyzer = providers.Local
	case providers.Hosted != nil:
		fa.kind = domain.ProviderHostedFree
		fa.analyzer = providers.Hosted
	}

	logger.DebugWithIcon("🆓", "Free agent ready", "kind", fa.kind)
	return fa
}

// ModeLabel is the short mode name shown to users for a free-tier kind
func ModeLabel(kind domain.ProviderKind) string {
	switch kind {
	case domain.ProviderLocalModel:
		return "ollama"
	case domain.ProviderHostedFree:
		return "huggingface"
	default:
		return "basic"
	}
}

// Kind returns the provider kind fixed at construction
func (a *FreeAgent) Kind() domain.ProviderKind {
	return a.kind
}

// AnalyzeImage returns a cached or freshly computed analysis. Provider
// failures degrade to a canned description, which is not cached so a later
// call can still reach the provider.
func (a *FreeAgent) AnalyzeImage(ctx context.Context, imageURL, question string) string {
	if a.analyzer == nil {
		text, _, _ := a.cache.Do(ctx, cache.Key(imageURL, question), func(context.Context) (string, error) {
			return a.knowledge.BasicDescribe(imageURL), nil
		})
		return text
	}

	text, hit, err := a.cache.Do(ctx, cache.Key(imageURL, question), func(ctx context.Context) (string, error) {
		return a.analyzer.AnalyzeImage(ctx, imageURL, question)
	})
	if err != nil {
		a.logger.WarnWithIcon("⚠️", "Free-tier analysis failed, using basic analysis", "kind", a.kind, "error", err)
		return a.knowledge.BasicDescribe(imageURL)
	}
	if hit {
		a.logger.Debug("analysis cache hit", "image", imageURL)
	}
	return text
}

// AnswerQuestion answers from the knowledge base, folding in an analysis of
// imageURL when one is given.
func (a *FreeAgent) AnswerQuestion(ctx context.Context, question, imageURL string) string {
	var contextText string
	if imageURL != "" {
		contextText = "Based on the image analysis: " + a.AnalyzeImage(ctx, imageURL, question) + "\n\n"
	}
	return a.knowledge.GenerateAnswer(question, contextText)
}

// AgentInfo describes the free-tier provider
func (a *FreeAgent) AgentInfo() domain.AgentInfo {
	switch a.kind {
	case domain.ProviderLocalModel:
		return domain.AgentInfo{
			Type:         a.kind,
			Capabilities: []string{"Image analysis", "Text generation", "Local processing", "No API costs"},
			Status:       "🟢 Ollama (Local) - Full AI capabilities",
		}
	case domain.ProviderHostedFree:
		return domain.AgentInfo{
			Type:         a.kind,
			Capabilities: []string{"Image captioning", "Basic analysis", "Free API", "Limited requests"},
			Status:       "🟡 Hugging Face (Free API) - Basic AI capabilities",
		}
	default:
		return domain.AgentInfo{
			Type:         domain.ProviderBasic,
			Capabilities: []string{"Basic astronomy knowledge", "Pattern recognition", "Educational content", "No API costs"},
			Status:       "🔵 Basic Mode - Knowledge-based responses",
		}
	}
}
