package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	"github.com/fpt/go-apod-agent/pkg/imagefetch"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

const (
	providerName = "gemini"

	// DefaultModel is used when no model is configured
	DefaultModel = "gemini-2.5-flash"
)

// Options configures a Gemini client. Zero values select SDK defaults.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// VisionClient implements domain.PaidVisionLLM with Gemini models
type VisionClient struct {
	client  *genai.Client
	fetcher *imagefetch.Fetcher
	model   string
	logger  *pkgLogger.Logger
}

// NewVisionClient creates a Gemini API client
func NewVisionClient(ctx context.Context, opts Options, fetcher *imagefetch.Fetcher) (*VisionClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if fetcher == nil {
		fetcher = imagefetch.New(nil)
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &VisionClient{
		client:  client,
		fetcher: fetcher,
		model:   opts.Model,
		logger:  pkgLogger.NewComponentLogger("gemini-client"),
	}, nil
}

// ModelID implements domain.ModelIdentifier
func (c *VisionClient) ModelID() string {
	return c.model
}

// ProviderName implements domain.ProviderNamer
func (c *VisionClient) ProviderName() string {
	return providerName
}

// AnalyzeImage sends the image bytes inline followed by the instruction text.
func (c *VisionClient) AnalyzeImage(ctx context.Context, imageURL, question string) (string, error) {
	img, err := c.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return "", imagefetch.Wrap(providerName, err)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(img.Data, img.MIMEType),
		genai.NewPartFromText(domain.AnalysisPrompt(question)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	return c.generate(ctx, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: int32(domain.AnalysisMaxTokens),
	})
}

// Answer implements domain.PaidVisionLLM
func (c *VisionClient) Answer(ctx context.Context, contextText, question string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(question, genai.RoleUser)}

	return c.generate(ctx, contents, &genai.GenerateContentConfig{
		MaxOutputTokens:   int32(domain.AnswerMaxTokens),
		SystemInstruction: genai.NewContentFromText(domain.AnswerSystemPrompt(contextText), genai.RoleUser),
	})
}

func (c *VisionClient) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", toProviderError(err)
	}

	if len(resp.Candidates) == 0 {
		return "", domain.NewProviderError(providerName, 0, domain.ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", domain.NewProviderError(providerName, 0, domain.ErrEmptyResponse)
	}

	if resp.UsageMetadata != nil {
		c.logger.Debug("Gemini API usage",
			"model", c.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}

	return text, nil
}

func toProviderError(err error) *domain.ProviderError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewProviderError(providerName, apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return domain.NewProviderError(providerName, apiErrPtr.Code, err)
	}
	return domain.NewProviderError(providerName, 0, err)
}
