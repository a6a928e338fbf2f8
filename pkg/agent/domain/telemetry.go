package domain

// ModelIdentifier is an optional extension that clients can implement to
// return a stable identifier for the underlying model. It is shown in agent
// status output.
type ModelIdentifier interface {
	ModelID() string
}

// ProviderNamer reports a short provider name ("openai", "ollama", ...) used in
// logs and ProviderError values.
type ProviderNamer interface {
	ProviderName() string
}
