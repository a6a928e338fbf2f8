package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	"github.com/fpt/go-apod-agent/pkg/imagefetch"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

const providerName = "openai"

// VisionClient implements domain.PaidVisionLLM on top of the Chat Completions API
type VisionClient struct {
	client  *openai.Client
	fetcher *imagefetch.Fetcher
	model   string
	logger  *pkgLogger.Logger
}

// NewVisionClient creates a client for model using apiKey. Extra request options
// (base URL, HTTP client, retries) are passed through to the SDK.
func NewVisionClient(apiKey, model string, fetcher *imagefetch.Fetcher, opts ...option.RequestOption) (*VisionClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if fetcher == nil {
		fetcher = imagefetch.New(nil)
	}

	allOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(allOpts...)

	openaiModel := getOpenAIModel(model)
	if !getModelCapabilities(openaiModel).SupportsVision {
		return nil, fmt.Errorf("model %s does not support vision", openaiModel)
	}

	return &VisionClient{
		client:  &client,
		fetcher: fetcher,
		model:   openaiModel,
		logger:  pkgLogger.NewComponentLogger("openai-client"),
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

// AnalyzeImage sends the image inline as a base64 data URL together with the instruction text.
func (c *VisionClient) AnalyzeImage(ctx context.Context, imageURL, question string) (string, error) {
	img, err := c.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return "", imagefetch.Wrap(providerName, err)
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(domain.AnalysisPrompt(question)),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: img.DataURL(),
		}),
	}

	return c.complete(ctx, []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)}, domain.AnalysisMaxTokens)
}

// Answer implements domain.PaidVisionLLM
func (c *VisionClient) Answer(ctx context.Context, contextText, question string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(domain.AnswerSystemPrompt(contextText)),
		openai.UserMessage(question),
	}
	return c.complete(ctx, messages, domain.AnswerMaxTokens)
}

func (c *VisionClient) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, maxTokens int) (string, error) {
	maxTokens = maxTokensFor(c.model, maxTokens)
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               shared.ChatModel(c.model),
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", toProviderError(err)
	}

	if len(completion.Choices) == 0 {
		return "", domain.NewProviderError(providerName, 0, domain.ErrEmptyResponse)
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", domain.NewProviderError(providerName, 0, domain.ErrEmptyResponse)
	}

	c.logger.Debug("OpenAI API usage",
		"model", c.model,
		"input_tokens", completion.Usage.PromptTokens,
		"output_tokens", completion.Usage.CompletionTokens,
		"max_tokens", maxTokens)

	return content, nil
}
