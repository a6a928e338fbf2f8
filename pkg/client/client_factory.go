package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	anthropicOption "github.com/anthropics/anthropic-sdk-go/option"
	openaiOption "github.com/openai/openai-go/v2/option"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	"github.com/fpt/go-apod-agent/pkg/client/anthropic"
	"github.com/fpt/go-apod-agent/pkg/client/gemini"
	"github.com/fpt/go-apod-agent/pkg/client/openai"
	"github.com/fpt/go-apod-agent/pkg/imagefetch"
)

// Paid backend names
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendGemini    = "gemini"
)

// PaidConfig selects and configures one paid vision backend
type PaidConfig struct {
	Backend    string // openai (default), anthropic or gemini
	APIKey     string
	Model      string // empty selects the backend default
	BaseURL    string // optional endpoint override
	HTTPClient *http.Client
	MaxRetries int // SDK retries before the agent falls back to the free tier
}

// NewPaidVisionClient creates the paid adapter named by cfg.Backend.
// The fetcher is shared so every adapter downloads images the same way.
func NewPaidVisionClient(ctx context.Context, cfg PaidConfig, fetcher *imagefetch.Fetcher) (domain.PaidVisionLLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for paid backend %q", cfg.Backend)
	}

	switch strings.ToLower(cfg.Backend) {
	case "", BackendOpenAI:
		opts := []openaiOption.RequestOption{openaiOption.WithMaxRetries(cfg.MaxRetries)}
		if cfg.BaseURL != "" {
			opts = append(opts, openaiOption.WithBaseURL(cfg.BaseURL))
		}
		if cfg.HTTPClient != nil {
			opts = append(opts, openaiOption.WithHTTPClient(cfg.HTTPClient))
		}
		return paidOrNil(openai.NewVisionClient(cfg.APIKey, cfg.Model, fetcher, opts...))
	case BackendAnthropic:
		opts := []anthropicOption.RequestOption{anthropicOption.WithMaxRetries(cfg.MaxRetries)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropicOption.WithBaseURL(cfg.BaseURL))
		}
		if cfg.HTTPClient != nil {
			opts = append(opts, anthropicOption.WithHTTPClient(cfg.HTTPClient))
		}
		return paidOrNil(anthropic.NewVisionClient(cfg.APIKey, cfg.Model, fetcher, opts...))
	case BackendGemini:
		return paidOrNil(gemini.NewVisionClient(ctx, gemini.Options{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: cfg.HTTPClient,
		}, fetcher))
	default:
		return nil, fmt.Errorf("unsupported paid backend: %s", cfg.Backend)
	}
}

// paidOrNil keeps a failed constructor from producing a non-nil interface
// holding a nil pointer.
func paidOrNil[T domain.PaidVisionLLM](c T, err error) (domain.PaidVisionLLM, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
