package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	"github.com/fpt/go-apod-agent/pkg/imagefetch"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

const (
	providerName = "ollama"

	// DefaultHost is where a local Ollama server listens by default
	DefaultHost = "http://localhost:11434"

	defaultPrompt = "Analyze this NASA Astronomy Picture of the Day. Describe what you see and explain the scientific concepts."
)

// VisionClient analyzes images with a multimodal model served by a local Ollama instance.
// It implements domain.ImageAnalyzer.
type VisionClient struct {
	client  *api.Client
	fetcher *imagefetch.Fetcher
	host    string
	model   string
	logger  *pkgLogger.Logger
}

// NewVisionClient creates a client for the Ollama server at host. Empty host and
// model fall back to DefaultHost and DefaultModel.
func NewVisionClient(host, model string, httpClient *http.Client, fetcher *imagefetch.Fetcher) (*VisionClient, error) {
	if host == "" {
		host = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama host %q: %w", host, err)
	}

	if httpClient == nil {
		// Local generation on CPU can be slow; allow generous time.
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if fetcher == nil {
		fetcher = imagefetch.New(nil)
	}

	logger := pkgLogger.NewComponentLogger("ollama-client")
	if warning := modelWarning(model); warning != "" {
		logger.WarnWithIcon("⚠️", warning, "model", model)
	}

	return &VisionClient{
		client:  api.NewClient(base, httpClient),
		fetcher: fetcher,
		host:    base.String(),
		model:   model,
		logger:  logger,
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

// Host returns the Ollama base URL in use
func (c *VisionClient) Host() string {
	return c.host
}

// AnalyzeImage downloads the image and asks the local model to describe it.
func (c *VisionClient) AnalyzeImage(ctx context.Context, imageURL, question string) (string, error) {
	img, err := c.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return "", imagefetch.Wrap(providerName, err)
	}

	prompt := question
	if prompt == "" {
		prompt = defaultPrompt
	}

	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Images: []api.ImageData{api.ImageData(img.Data)},
		Stream: &stream,
	}

	var out strings.Builder
	err = c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", toProviderError(err)
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", domain.NewProviderError(providerName, 0, domain.ErrEmptyResponse)
	}

	c.logger.Debug("ollama analysis complete", "model", c.model, "image_bytes", len(img.Data), "chars", len(text))
	return text, nil
}
