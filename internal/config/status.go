package config

import "fmt"

// KeySource tells where a credential came from
type KeySource string

const (
	KeySourceUser    KeySource = "user"
	KeySourceDefault KeySource = "default"
	KeySourceNone    KeySource = "none"
)

// CredentialStatus describes one credential without revealing it
type CredentialStatus struct {
	Available bool      `json:"available"`
	Source    KeySource `json:"source"`
}

// KeyStatus summarizes which services are configured
type KeyStatus struct {
	NASA        CredentialStatus `json:"nasa"`
	Paid        CredentialStatus `json:"paid"`
	PaidBackend string           `json:"paidBackend"`
	FreeAgent   bool             `json:"freeAgent"`
	Ollama      bool             `json:"ollama"`
	HuggingFace bool             `json:"huggingface"`
}

// Instruction is one line of setup guidance. Action is empty when nothing needs doing.
type Instruction struct {
	Type    string `json:"type"` // success, info or warning
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// ValidationReport lists problems found in otherwise loadable settings
type ValidationReport struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// KeyStatus reports credential availability
func (s *Settings) KeyStatus() KeyStatus {
	nasa := CredentialStatus{Available: s.NASA.APIKey != "", Source: KeySourceUser}
	if s.NASA.APIKey == "" || s.NASA.APIKey == DemoNASAKey {
		nasa.Source = KeySourceDefault
	}

	paid := CredentialStatus{Available: s.Paid.APIKey != "", Source: KeySourceNone}
	if paid.Available {
		paid.Source = KeySourceUser
	}

	return KeyStatus{
		NASA:        nasa,
		Paid:        paid,
		PaidBackend: s.Paid.Backend,
		FreeAgent:   s.Paid.ForceFree,
		Ollama:      s.LocalModelConfigured(),
		HuggingFace: s.Free.HuggingFace.APIKey != "",
	}
}

// SetupInstructions explains how to improve the current configuration
func (s *Settings) SetupInstructions() []Instruction {
	status := s.KeyStatus()
	keyEnv := PaidKeyEnv(s.Paid.Backend)
	var instructions []Instruction

	if status.NASA.Source == KeySourceDefault {
		instructions = append(instructions, Instruction{
			Type:    "info",
			Message: "🌍 NASA API: Using the shared demo key (rate limited)",
			Action:  "To use your own NASA API key, set NASA_API_KEY=your_key",
		})
	} else {
		instructions = append(instructions, Instruction{
			Type:    "success",
			Message: "🌍 NASA API: Using your personal key",
		})
	}

	switch {
	case status.Paid.Available && !status.FreeAgent:
		instructions = append(instructions, Instruction{
			Type:    "success",
			Message: fmt.Sprintf("🤖 %s API: Using your personal key", s.Paid.Backend),
		})
	case status.FreeAgent || status.Ollama || status.HuggingFace:
		instructions = append(instructions, Instruction{
			Type:    "info",
			Message: "🤖 AI: Using free agent mode (no API costs)",
			Action:  fmt.Sprintf("For advanced AI features, set %s=your_key", keyEnv),
		})
	default:
		instructions = append(instructions, Instruction{
			Type:    "warning",
			Message: "🤖 AI: Only basic knowledge-based responses are available",
			Action:  fmt.Sprintf("Set %s=your_key, OLLAMA_HOST, or HUGGINGFACE_API_KEY", keyEnv),
		})
	}

	return instructions
}

// Validate returns warnings for settings that work but are degraded
func (s *Settings) Validate() ValidationReport {
	report := ValidationReport{Errors: []string{}, Warnings: []string{}}

	if err := ValidateSettings(s); err != nil {
		report.Errors = append(report.Errors, err.Error())
	}

	if s.NASA.APIKey == "" || s.NASA.APIKey == DemoNASAKey {
		report.Warnings = append(report.Warnings, "NASA API key is not configured. Using demo key with limited functionality.")
	}

	if s.Paid.APIKey == "" && !s.Paid.ForceFree && !s.LocalModelConfigured() && s.Free.HuggingFace.APIKey == "" {
		report.Warnings = append(report.Warnings, "No AI service configured. Set USE_FREE_AGENT=true for basic functionality or add an API key.")
	}

	return report
}
