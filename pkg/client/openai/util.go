package openai

import (
	"errors"

	"github.com/openai/openai-go/v2"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
)

// Model constants
const (
	modelGPT5      = "gpt-5"
	modelGPT5Mini  = "gpt-5-mini"
	modelGPT4o     = "gpt-4o"
	modelGPT4oMini = "gpt-4o-mini"

	// DefaultModel is used when no model is configured
	DefaultModel = modelGPT4o
)

// getOpenAIModel maps configured model names to OpenAI model identifiers.
// Unknown and empty names fall back to DefaultModel.
func getOpenAIModel(model string) string {
	if isValidOpenAIModel(model) {
		return model
	}
	return DefaultModel
}

func isValidOpenAIModel(model string) bool {
	switch model {
	case modelGPT5, modelGPT5Mini, modelGPT4o, modelGPT4oMini:
		return true
	}
	return false
}

// ModelCapabilities describes what a model can do
type ModelCapabilities struct {
	SupportsVision bool
	MaxTokens      int
}

// getModelCapabilities returns the capabilities of a specific OpenAI model
func getModelCapabilities(model string) ModelCapabilities {
	switch model {
	case modelGPT5, modelGPT5Mini:
		return ModelCapabilities{SupportsVision: true, MaxTokens: 16384}
	case modelGPT4o:
		return ModelCapabilities{SupportsVision: true, MaxTokens: 8192}
	case modelGPT4oMini:
		return ModelCapabilities{SupportsVision: true, MaxTokens: 4096}
	default:
		return ModelCapabilities{SupportsVision: false, MaxTokens: 4096}
	}
}

// maxTokensFor clamps a requested completion budget to the model's limit
func maxTokensFor(model string, requested int) int {
	return min(requested, getModelCapabilities(model).MaxTokens)
}

// toProviderError keeps the upstream HTTP status when the SDK reports one
func toProviderError(err error) *domain.ProviderError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return domain.NewProviderError(providerName, apiErr.StatusCode, err)
	}
	return domain.NewProviderError(providerName, 0, err)
}
