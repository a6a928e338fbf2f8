package ollama

import "strings"

// OllamaModel is one entry of the known local model list
type OllamaModel struct {
	Name string

	// Vision indicates whether the model supports image input (multimodal)
	Vision bool
}

// DefaultModel is the multimodal model requested from the local server
const DefaultModel = "llava:7b"

// This is from https://ollama.com/search?c=vision
// List must be kept in sync with the Ollama models by human.
var ollamaModels = []OllamaModel{
	{Name: "llava:7b", Vision: true},
	{Name: "llava:13b", Vision: true},
	{Name: "llava:34b", Vision: true},
	{Name: "llama3.2-vision", Vision: true},
	{Name: "bakllava", Vision: true},
	{Name: "moondream", Vision: true},
	{Name: "gpt-oss:latest", Vision: false},
}

// IsVisionCapableModel checks if a model supports vision/image input
func IsVisionCapableModel(model string) bool {
	modelLower := strings.ToLower(model)

	for _, ollamaModel := range ollamaModels {
		if strings.Contains(modelLower, strings.ToLower(ollamaModel.Name)) {
			return ollamaModel.Vision
		}
	}

	return false
}

// IsModelInKnownList checks if a model is in our known models list
func IsModelInKnownList(model string) bool {
	modelLower := strings.ToLower(model)

	for _, ollamaModel := range ollamaModels {
		if strings.Contains(modelLower, strings.ToLower(ollamaModel.Name)) {
			return true
		}
	}

	return false
}

// modelWarning explains why model may fail on image input; empty when it is a
// known vision model.
func modelWarning(model string) string {
	switch {
	case !IsModelInKnownList(model):
		return "Model not in known capabilities list, image input may not be supported"
	case !IsVisionCapableModel(model):
		return "Model does not support image input"
	default:
		return ""
	}
}
