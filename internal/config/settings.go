package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

const (
	settingsDirName  = ".apod"
	settingsFileName = "settings.json"

	// DemoNASAKey is NASA's shared, heavily rate-limited key
	DemoNASAKey = "DEMO_KEY"

	DefaultPort           = 3000
	DefaultTimeoutSeconds = 60
)

// Settings represents the main application settings. It is loaded once and
// treated as immutable afterwards.
type Settings struct {
	Paid   PaidSettings   `json:"paid"`
	Free   FreeSettings   `json:"free"`
	NASA   NASASettings   `json:"nasa"`
	Server ServerSettings `json:"server"`
	Agent  AgentSettings  `json:"agent"`
}

// PaidSettings configures the metered vision backend
type PaidSettings struct {
	Backend   string `json:"backend"`              // "openai", "anthropic" or "gemini"
	Model     string `json:"model,omitempty"`      // empty selects the backend default
	BaseURL   string `json:"base_url,omitempty"`   // endpoint override (Azure, proxies)
	APIKey    string `json:"api_key,omitempty"`    // usually supplied through the environment
	ForceFree bool   `json:"force_free,omitempty"` // use the free tier even when a key is present

	// MaxRetries is how often the SDK retries a failed call before the free
	// tier answers instead. 0 falls back on the first failure.
	MaxRetries int `json:"max_retries,omitempty"`
}

// FreeSettings configures the free-tier providers
type FreeSettings struct {
	Ollama      OllamaSettings      `json:"ollama"`
	HuggingFace HuggingFaceSettings `json:"huggingface"`
	Seed        uint64              `json:"seed,omitempty"` // fixed seed for canned responses; 0 = time based
}

// OllamaSettings configures the local model server
type OllamaSettings struct {
	Host    string `json:"host,omitempty"`
	Enabled bool   `json:"enabled,omitempty"`
	Model   string `json:"model,omitempty"`
}

// HuggingFaceSettings configures the hosted captioning API
type HuggingFaceSettings struct {
	APIKey   string `json:"api_key,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// NASASettings configures the picture source
type NASASettings struct {
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	PageURL string `json:"page_url,omitempty"`
}

// ServerSettings configures the HTTP API
type ServerSettings struct {
	Port int `json:"port"`
}

// AgentSettings contains agent behavior configuration
type AgentSettings struct {
	LogLevel       string `json:"log_level"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Timeout returns the outbound HTTP timeout
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.Agent.TimeoutSeconds) * time.Second
}

// LocalModelConfigured reports whether the local model server should be used
func (s *Settings) LocalModelConfigured() bool {
	return s.Free.Ollama.Host != "" || s.Free.Ollama.Enabled
}

// LoadSettings loads application settings from a JSON file and applies
// environment overrides. An empty configPath searches the default locations.
func LoadSettings(configPath string) (*Settings, error) {
	settings, err := loadSettingsFile(configPath)
	if err != nil {
		return nil, err
	}
	ApplyEnv(settings, os.Getenv)
	return settings, nil
}

func loadSettingsFile(configPath string) (*Settings, error) {
	if configPath == "" {
		configPath = findSettingsFile()
		if configPath == "" {
			// No settings file found, create default one and return defaults
			return createDefaultSettingsFile()
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createSettingsFileAtPath(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	applyDefaults(&settings)

	return &settings, nil
}

// SaveSettings saves application settings to a JSON file
func SaveSettings(configPath string, settings *Settings) error {
	if configPath == "" {
		configPath = findSettingsFile()
		if configPath == "" {
			configPath = filepath.Join(settingsDirName, settingsFileName)
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// GetDefaultSettings returns default application settings
func GetDefaultSettings() *Settings {
	return &Settings{
		Paid: PaidSettings{
			Backend: "openai",
		},
		NASA: NASASettings{
			APIKey: DemoNASAKey,
		},
		Server: ServerSettings{
			Port: DefaultPort,
		},
		Agent: AgentSettings{
			LogLevel:       "info",
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
	}
}

// applyDefaults fills in missing fields with default values
func applyDefaults(settings *Settings) {
	defaults := GetDefaultSettings()

	if settings.Paid.Backend == "" {
		settings.Paid.Backend = defaults.Paid.Backend
	}
	if settings.NASA.APIKey == "" {
		settings.NASA.APIKey = defaults.NASA.APIKey
	}
	if settings.Server.Port == 0 {
		settings.Server.Port = defaults.Server.Port
	}
	if settings.Agent.LogLevel == "" {
		settings.Agent.LogLevel = defaults.Agent.LogLevel
	}
	if settings.Agent.TimeoutSeconds == 0 {
		settings.Agent.TimeoutSeconds = defaults.Agent.TimeoutSeconds
	}
}

// PaidKeyEnv returns the environment variable holding the key for backend
func PaidKeyEnv(backend string) string {
	switch strings.ToLower(backend) {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// ApplyEnv overrides settings from environment variables read through getenv.
// Credentials set in the environment win over the file.
func ApplyEnv(settings *Settings, getenv func(string) string) {
	if v := getenv(PaidKeyEnv(settings.Paid.Backend)); v != "" {
		settings.Paid.APIKey = v
	}
	if getenv("USE_FREE_AGENT") == "true" {
		settings.Paid.ForceFree = true
	}
	if v := getenv("OLLAMA_HOST"); v != "" {
		settings.Free.Ollama.Host = v
	}
	if getenv("USE_OLLAMA") == "true" {
		settings.Free.Ollama.Enabled = true
	}
	if v := getenv("HUGGINGFACE_API_KEY"); v != "" {
		settings.Free.HuggingFace.APIKey = v
	}
	if v := getenv("NASA_API_KEY"); v != "" {
		settings.NASA.APIKey = v
	}
	if v := getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			settings.Server.Port = port
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		settings.Agent.LogLevel = v
	}
}

// ValidateSettings validates the settings configuration
func ValidateSettings(settings *Settings) error {
	switch strings.ToLower(settings.Paid.Backend) {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("unsupported paid backend: %s (must be 'openai', 'anthropic', or 'gemini')", settings.Paid.Backend)
	}

	if settings.Server.Port <= 0 || settings.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", settings.Server.Port)
	}

	if settings.Paid.MaxRetries < 0 {
		return fmt.Errorf("paid.max_retries must not be negative")
	}

	if settings.Agent.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}

	if _, err := pkgLogger.ParseLogLevel(settings.Agent.LogLevel); err != nil {
		return err
	}

	return nil
}

// findSettingsFile searches for settings.json in order of preference:
// 1. .apod/settings.json in current directory
// 2. $HOME/.apod/settings.json
// Returns empty string if none found
func findSettingsFile() string {
	currentDirPath := filepath.Join(settingsDirName, settingsFileName)
	if _, err := os.Stat(currentDirPath); err == nil {
		return currentDirPath
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		homeDirPath := filepath.Join(homeDir, settingsDirName, settingsFileName)
		if _, err := os.Stat(homeDirPath); err == nil {
			return homeDirPath
		}
	}

	return ""
}

// createDefaultSettingsFile creates a default settings.json file in ~/.apod/
func createDefaultSettingsFile() (*Settings, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return GetDefaultSettings(), nil
	}

	settingsPath := filepath.Join(homeDir, settingsDirName, settingsFileName)
	return createSettingsFileAtPath(settingsPath)
}

// createSettingsFileAtPath writes default settings to settingsPath. Write
// failures are not fatal; the defaults are returned either way.
func createSettingsFileAtPath(settingsPath string) (*Settings, error) {
	settings := GetDefaultSettings()

	if err := SaveSettings(settingsPath, settings); err != nil {
		return settings, nil
	}

	logger := pkgLogger.NewComponentLogger("settings")
	logger.InfoWithIcon("📝", "Created default settings file", "path", settingsPath)
	logger.InfoWithIcon("💡", "You can edit this file to customize your configuration")

	return settings, nil
}
