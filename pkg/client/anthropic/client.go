package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	"github.com/fpt/go-apod-agent/pkg/imagefetch"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

const (
	providerName = "anthropic"

	// DefaultModel is used when no model is configured
	DefaultModel = "claude-sonnet-4-20250514"
)

// VisionClient implements domain.PaidVisionLLM with Claude models
type VisionClient struct {
	client  *anthropic.Client
	fetcher *imagefetch.Fetcher
	model   string
	logger  *pkgLogger.Logger
}

// NewVisionClient creates a Claude client. Extra request options are passed to the SDK.
func NewVisionClient(apiKey, model string, fetcher *imagefetch.Fetcher, opts ...option.RequestOption) (*VisionClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if fetcher == nil {
		fetcher = imagefetch.New(nil)
	}

	allOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(allOpts...)

	return &VisionClient{
		client:  &client,
		fetcher: fetcher,
		model:   model,
		logger:  pkgLogger.NewComponentLogger("anthropic-client"),
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

// AnalyzeImage sends the image as a base64 block followed by the instruction.
func (c *VisionClient) AnalyzeImage(ctx context.Context, imageURL, question string) (string, error) {
	img, err := c.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return "", imagefetch.Wrap(providerName, err)
	}

	params := anthropic.MessageNewParams{
		MaxTokens: domain.AnalysisMaxTokens,
		Model:     anthropic.Model(c.model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(img.MIMEType, img.Base64()),
				anthropic.NewTextBlock(domain.AnalysisPrompt(question)),
			),
		},
	}
	return c.send(ctx, params)
}

// Answer implements domain.PaidVisionLLM
func (c *VisionClient) Answer(ctx context.Context, contextText, question string) (string, error) {
	params := anthropic.MessageNewParams{
		MaxTokens: domain.AnswerMaxTokens,
		Model:     anthropic.Model(c.model),
		System:    []anthropic.TextBlockParam{{Text: domain.AnswerSystemPrompt(contextText)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
		},
	}
	return c.send(ctx, params)
}

func (c *VisionClient) send(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", domain.NewProviderError(providerName, apiErr.StatusCode, err)
		}
		return "", domain.NewProviderError(providerName, 0, err)
	}

	var content strings.Builder
	for _, contentBlock := range msg.Content {
		if variant, ok := contentBlock.AsAny().(anthropic.TextBlock); ok {
			content.WriteString(variant.Text)
		}
	}

	text := strings.TrimSpace(content.String())
	if text == "" {
		return "", domain.NewProviderError(providerName, 0, domain.ErrEmptyResponse)
	}

	c.logger.Debug("Anthropic API usage",
		"model", c.model,
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens,
		"stop_reason", msg.StopReason)

	return text, nil
}
