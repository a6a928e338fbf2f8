package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadSettings_CreatesDefaultsAtMissingPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".apod", "settings.json")

	settings, err := loadSettingsFile(path)
	if err != nil {
		t.Fatalf("loadSettingsFile failed: %v", err)
	}
	if settings.Paid.Backend != "openai" || settings.NASA.APIKey != DemoNASAKey || settings.Server.Port != DefaultPort {
		t.Errorf("unexpected defaults: %+v", settings)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected default settings file to be written: %v", err)
	}
}

func TestLoadSettings_FileValuesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{"paid":{"backend":"anthropic","model":"claude-3-5-haiku-latest"},"free":{"ollama":{"host":"http://gpu-box:11434"}}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	settings, err := loadSettingsFile(path)
	if err != nil {
		t.Fatalf("loadSettingsFile failed: %v", err)
	}
	if settings.Paid.Backend != "anthropic" || settings.Paid.Model != "claude-3-5-haiku-latest" {
		t.Errorf("file values not loaded: %+v", settings.Paid)
	}
	if !settings.LocalModelConfigured() {
		t.Error("expected local model to be configured from file host")
	}
	if settings.Agent.TimeoutSeconds != DefaultTimeoutSeconds || settings.Agent.LogLevel != "info" {
		t.Errorf("defaults not applied: %+v", settings.Agent)
	}
}

func TestLoadSettings_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte("{not json"), 0600)

	if _, err := loadSettingsFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	testCases := []struct {
		name  string
		base  func() *Settings
		env   map[string]string
		check func(t *testing.T, s *Settings)
	}{
		{
			name: "openai key and force free",
			base: GetDefaultSettings,
			env:  map[string]string{"OPENAI_API_KEY": "sk-1", "USE_FREE_AGENT": "true"},
			check: func(t *testing.T, s *Settings) {
				if s.Paid.APIKey != "sk-1" || !s.Paid.ForceFree {
					t.Errorf("unexpected paid settings %+v", s.Paid)
				}
			},
		},
		{
			name: "key follows backend",
			base: func() *Settings {
				s := GetDefaultSettings()
				s.Paid.Backend = "gemini"
				return s
			},
			env: map[string]string{"OPENAI_API_KEY": "sk-1", "GEMINI_API_KEY": "gm-1"},
			check: func(t *testing.T, s *Settings) {
				if s.Paid.APIKey != "gm-1" {
					t.Errorf("expected gemini key, got %q", s.Paid.APIKey)
				}
			},
		},
		{
			name: "free tier and server",
			base: GetDefaultSettings,
			env: map[string]string{
				"USE_OLLAMA": "true", "HUGGINGFACE_API_KEY": "hf_1",
				"NASA_API_KEY": "nasa-1", "PORT": "8080", "USE_FREE_AGENT": "yes",
			},
			check: func(t *testing.T, s *Settings) {
				if !s.Free.Ollama.Enabled || s.Free.HuggingFace.APIKey != "hf_1" {
					t.Errorf("unexpected free settings %+v", s.Free)
				}
				if s.NASA.APIKey != "nasa-1" || s.Server.Port != 8080 {
					t.Errorf("unexpected nasa/server settings")
				}
				if s.Paid.ForceFree {
					t.Error("only the literal 'true' enables force free")
				}
			},
		},
		{
			name: "bad port ignored",
			base: GetDefaultSettings,
			env:  map[string]string{"PORT": "eighty"},
			check: func(t *testing.T, s *Settings) {
				if s.Server.Port != DefaultPort {
					t.Errorf("expected default port, got %d", s.Server.Port)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.base()
			ApplyEnv(s, envMap(tc.env))
			tc.check(t, s)
		})
	}
}

func TestValidateSettings(t *testing.T) {
	s := GetDefaultSettings()
	if err := ValidateSettings(s); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	s.Paid.Backend = "mistral"
	if err := ValidateSettings(s); err == nil {
		t.Error("expected unsupported backend error")
	}

	s = GetDefaultSettings()
	s.Agent.LogLevel = "chatty"
	if err := ValidateSettings(s); err == nil {
		t.Error("expected log level error")
	}

	s = GetDefaultSettings()
	s.Paid.MaxRetries = -1
	if err := ValidateSettings(s); err == nil {
		t.Error("expected negative retries error")
	}
}

func TestKeyStatusAndInstructions(t *testing.T) {
	s := GetDefaultSettings()

	status := s.KeyStatus()
	if status.NASA.Source != KeySourceDefault || status.Paid.Available {
		t.Errorf("unexpected status for defaults: %+v", status)
	}
	instructions := s.SetupInstructions()
	if len(instructions) != 2 || instructions[1].Type != "warning" {
		t.Errorf("expected NASA info and AI warning, got %+v", instructions)
	}

	s.NASA.APIKey = "mine"
	s.Paid.APIKey = "sk-1"
	instructions = s.SetupInstructions()
	if instructions[0].Type != "success" || instructions[1].Type != "success" {
		t.Errorf("expected all success, got %+v", instructions)
	}

	s.Paid.ForceFree = true
	instructions = s.SetupInstructions()
	if instructions[1].Type != "info" || !strings.Contains(instructions[1].Action, "OPENAI_API_KEY") {
		t.Errorf("expected free agent info, got %+v", instructions[1])
	}
}

func TestValidateReport(t *testing.T) {
	report := GetDefaultSettings().Validate()
	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
	if len(report.Warnings) != 2 {
		t.Errorf("expected NASA and AI warnings, got %v", report.Warnings)
	}

	s := GetDefaultSettings()
	s.Free.HuggingFace.APIKey = "hf_1"
	s.NASA.APIKey = "mine"
	if report := s.Validate(); len(report.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", report.Warnings)
	}
}
