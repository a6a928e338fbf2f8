// Package huggingface wraps the free hosted inference API's image captioning model.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

const (
	providerName = "huggingface"

	// DefaultEndpoint is the BLIP captioning model on the hosted inference API
	DefaultEndpoint = "https://api-inference.huggingface.co/models/Salesforce/blip-image-captioning-base"

	maxErrorBody = 4096
)

// FactSource supplies a domain fact appended to each caption
type FactSource interface {
	RandomFact() string
}

// CaptionClient captions an image URL and enriches the caption with astronomy
// context. It implements domain.ImageAnalyzer.
type CaptionClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	facts      FactSource
	logger     *pkgLogger.Logger
}

type captionRequest struct {
	Inputs string `json:"inputs"`
}

type captionResult struct {
	GeneratedText string `json:"generated_text"`
}

// NewCaptionClient creates a client. An empty endpoint uses DefaultEndpoint.
func NewCaptionClient(apiKey, endpoint string, httpClient *http.Client, facts FactSource) (*CaptionClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Hugging Face API key is required")
	}
	if facts == nil {
		return nil, fmt.Errorf("fact source is required")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	return &CaptionClient{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKey:     apiKey,
		facts:      facts,
		logger:     pkgLogger.NewComponentLogger("huggingface-client"),
	}, nil
}

// ProviderName implements domain.ProviderNamer
func (c *CaptionClient) ProviderName() string {
	return providerName
}

// ModelID implements domain.ModelIdentifier
func (c *CaptionClient) ModelID() string {
	if i := strings.Index(c.endpoint, "/models/"); i >= 0 {
		return c.endpoint[i+len("/models/"):]
	}
	return c.endpoint
}

// AnalyzeImage sends the image URL (not the bytes) to the captioning model.
// The captioning model ignores questions; question is accepted for interface parity.
func (c *CaptionClient) AnalyzeImage(ctx context.Context, imageURL, question string) (string, error) {
	caption, err := c.Caption(ctx, imageURL)
	if err != nil {
		return "", err
	}
	return c.compose(caption), nil
}

// Caption returns the raw caption for imageURL
func (c *CaptionClient) Caption(ctx context.Context, imageURL string) (string, error) {
	body, err := json.Marshal(captionRequest{Inputs: imageURL})
	if err != nil {
		return "", domain.NewProviderError(providerName, 0, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", domain.NewProviderError(providerName, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewProviderError(providerName, 0, fmt.Errorf("inference request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &domain.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(detail))),
		}
	}

	var results []captionResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", domain.NewProviderError(providerName, resp.StatusCode, fmt.Errorf("malformed caption response: %w", err))
	}
	if len(results) == 0 || strings.TrimSpace(results[0].GeneratedText) == "" {
		return "", domain.NewProviderError(providerName, resp.StatusCode, domain.ErrEmptyResponse)
	}

	caption := strings.TrimSpace(results[0].GeneratedText)
	c.logger.Debug("caption received", "chars", len(caption))
	return caption, nil
}

func (c *CaptionClient) compose(caption string) string {
	return fmt.Sprintf("Image Analysis: %s\n\nAstronomical Context: %s\n\nNote: This analysis was generated using free AI services. For more detailed analysis, consider using a paid AI service.",
		caption, c.facts.RandomFact())
}
