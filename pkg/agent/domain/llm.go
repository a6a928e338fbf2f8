package domain

import (
	"context"
)

// ImageAnalyzer is implemented by every provider adapter that can describe an image.
// question may be empty, in which case the adapter uses its default instruction.
// Failures are reported as *ProviderError.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, imageURL, question string) (string, error)
}

// PaidVisionLLM is a metered, vision-capable chat model. Besides image analysis it can
// answer free-form questions given some context text.
type PaidVisionLLM interface {
	ImageAnalyzer
	ModelIdentifier

	// Answer asks the model a question; contextText is folded into the system prompt.
	Answer(ctx context.Context, contextText, question string) (string, error)
}
