package agent

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fpt/go-apod-agent/internal/config"
	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	"github.com/fpt/go-apod-agent/pkg/client"
	"github.com/fpt/go-apod-agent/pkg/client/huggingface"
	"github.com/fpt/go-apod-agent/pkg/client/ollama"
	"github.com/fpt/go-apod-agent/pkg/imagefetch"
)

// Availability records which providers the settings make usable. It is
// captured once when the agents are built and never re-detected.
type Availability struct {
	PaidConfigured bool
	ForceFree      bool
	LocalModel     bool
	HostedFree     bool
}

// DetectAvailability derives provider availability from settings
func DetectAvailability(s *config.Settings) Availability {
	return Availability{
		PaidConfigured: s.Paid.APIKey != "",
		ForceFree:      s.Paid.ForceFree,
		LocalModel:     s.LocalModelConfigured(),
		HostedFree:     s.Free.HuggingFace.APIKey != "",
	}
}

// FreeKind returns the free-tier provider the availability selects.
// Local model wins over hosted inference, which wins over basic mode.
func (a Availability) FreeKind() domain.ProviderKind {
	switch {
	case a.LocalModel:
		return domain.ProviderLocalModel
	case a.HostedFree:
		return domain.ProviderHostedFree
	default:
		return domain.ProviderBasic
	}
}

// Providers holds the adapters the agents dispatch to. Nil fields are unavailable.
type Providers struct {
	Paid   domain.PaidVisionLLM
	Local  domain.ImageAnalyzer
	Hosted domain.ImageAnalyzer
}

// BuildProviders creates the adapters selected by avail. Only the free-tier
// adapter for avail.FreeKind() is built.
func BuildProviders(ctx context.Context, s *config.Settings, avail Availability, facts huggingface.FactSource) (Providers, error) {
	httpClient := &http.Client{Timeout: s.Timeout()}
	fetcher := imagefetch.New(httpClient)

	var providers Providers

	if avail.PaidConfigured {
		paid, err := client.NewPaidVisionClient(ctx, client.PaidConfig{
			Backend:    s.Paid.Backend,
			APIKey:     s.Paid.APIKey,
			Model:      s.Paid.Model,
			BaseURL:    s.Paid.BaseURL,
			HTTPClient: httpClient,
			MaxRetries: s.Paid.MaxRetries,
		}, fetcher)
		if err != nil {
			return Providers{}, fmt.Errorf("failed to create paid client: %w", err)
		}
		providers.Paid = paid
	}

	switch avail.FreeKind() {
	case domain.ProviderLocalModel:
		// Generation on a local model is slower than the default timeout allows.
		local, err := ollama.NewVisionClient(s.Free.Ollama.Host, s.Free.Ollama.Model, nil, fetcher)
		if err != nil {
			return Providers{}, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		providers.Local = local
	case domain.ProviderHostedFree:
		hosted, err := huggingface.NewCaptionClient(s.Free.HuggingFace.APIKey, s.Free.HuggingFace.Endpoint, httpClient, facts)
		if err != nil {
			return Providers{}, fmt.Errorf("failed to create Hugging Face client: %w", err)
		}
		providers.Hosted = hosted
	}

	return providers, nil
}
