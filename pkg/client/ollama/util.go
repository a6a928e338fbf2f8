package ollama

import (
	"errors"
	"fmt"

	"github.com/ollama/ollama/api"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
)

// toProviderError keeps the HTTP status from api.StatusError when present
func toProviderError(err error) *domain.ProviderError {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.ErrorMessage
		if msg == "" {
			msg = statusErr.Status
		}
		return &domain.ProviderError{Provider: providerName, StatusCode: statusErr.StatusCode, Message: msg, Err: err}
	}
	return domain.NewProviderError(providerName, 0, fmt.Errorf("ollama generate error: %w", err))
}
