// Package config provides configuration management for lector. Settings are
// loaded from environment variables with the LECTOR_ prefix, with sensible
// defaults for every option, and may be overridden by an optional YAML
// config file (file values take precedence over the environment).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the lector application.
type Config struct {
	Server   ServerConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Study    StudyConfig
	Security SecurityConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 7147)
	Host string // Server host (default: 127.0.0.1)
}

// LLMConfig contains inference-service provider configuration.
type LLMConfig struct {
	Provider        string // LLM provider: ollama, openai, anthropic (default: ollama)
	OllamaURL       string // Ollama API URL (default: http://localhost:11434)
	OllamaModel     string // Ollama model name (default: qwen2.5:7b)
	OpenAIAPIKey    string // OpenAI API key
	OpenAIModel     string // OpenAI model name (default: gpt-4o-mini)
	OpenAIBaseURL   string // OpenAI-compatible base URL override
	AnthropicAPIKey string // Anthropic API key
	AnthropicModel  string // Anthropic model name (default: claude-haiku-4-5-20251001)
}

// PipelineConfig contains the decision-pipeline policy knobs.
type PipelineConfig struct {
	MinInterventionGap time.Duration // Minimum wall-clock interval between processed observations (default: 2s)
	RecentWindow       int           // Observations fed to the analyzer per cycle (default: 5)
}

// StudyConfig contains study-session bookkeeping configuration.
type StudyConfig struct {
	DataPath      string // Path to the session database directory (default: ./data)
	Mode          string // Study mode: testing, evaluation (default: testing)
	ParticipantID string // Participant ID; generated when empty
}

// SecurityConfig contains security and rate-limit settings.
type SecurityConfig struct {
	SecurityMode    string  // Security mode: development, production (default: development)
	APIToken        string  // API authentication token (required in production)
	RateLimitPerSec float64 // Sustained request rate per client (default: 10)
	RateLimitBurst  int     // Burst size (default: 20)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the LECTOR_ prefix.
func LoadConfig() (*Config, error) {
	return buildBaseConfig(), nil
}

// LoadConfigFile loads configuration from environment variables and then
// overlays values from a YAML file. Non-zero file values take precedence.
func LoadConfigFile(path string) (*Config, error) {
	cfg := buildBaseConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	file.applyTo(cfg)
	return cfg, nil
}

// fileConfig mirrors Config for YAML decoding. Pointer and zero-value checks
// let the file override only what it mentions.
type fileConfig struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`
	LLM struct {
		Provider        string `yaml:"provider"`
		OllamaURL       string `yaml:"ollama_url"`
		OllamaModel     string `yaml:"ollama_model"`
		OpenAIAPIKey    string `yaml:"openai_api_key"`
		OpenAIModel     string `yaml:"openai_model"`
		OpenAIBaseURL   string `yaml:"openai_base_url"`
		AnthropicAPIKey string `yaml:"anthropic_api_key"`
		AnthropicModel  string `yaml:"anthropic_model"`
	} `yaml:"llm"`
	Pipeline struct {
		MinInterventionGap string `yaml:"min_intervention_gap"`
		RecentWindow       int    `yaml:"recent_window"`
	} `yaml:"pipeline"`
	Study struct {
		DataPath      string `yaml:"data_path"`
		Mode          string `yaml:"mode"`
		ParticipantID string `yaml:"participant_id"`
	} `yaml:"study"`
	Security struct {
		SecurityMode    string  `yaml:"security_mode"`
		APIToken        string  `yaml:"api_token"`
		RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
		RateLimitBurst  int     `yaml:"rate_limit_burst"`
	} `yaml:"security"`
}

func (f *fileConfig) applyTo(cfg *Config) {
	if f.Server.Port != 0 {
		cfg.Server.Port = f.Server.Port
	}
	if f.Server.Host != "" {
		cfg.Server.Host = f.Server.Host
	}
	if f.LLM.Provider != "" {
		cfg.LLM.Provider = f.LLM.Provider
	}
	if f.LLM.OllamaURL != "" {
		cfg.LLM.OllamaURL = f.LLM.OllamaURL
	}
	if f.LLM.OllamaModel != "" {
		cfg.LLM.OllamaModel = f.LLM.OllamaModel
	}
	if f.LLM.OpenAIAPIKey != "" {
		cfg.LLM.OpenAIAPIKey = f.LLM.OpenAIAPIKey
	}
	if f.LLM.OpenAIModel != "" {
		cfg.LLM.OpenAIModel = f.LLM.OpenAIModel
	}
	if f.LLM.OpenAIBaseURL != "" {
		cfg.LLM.OpenAIBaseURL = f.LLM.OpenAIBaseURL
	}
	if f.LLM.AnthropicAPIKey != "" {
		cfg.LLM.AnthropicAPIKey = f.LLM.AnthropicAPIKey
	}
	if f.LLM.AnthropicModel != "" {
		cfg.LLM.AnthropicModel = f.LLM.AnthropicModel
	}
	if f.Pipeline.MinInterventionGap != "" {
		if d, err := time.ParseDuration(f.Pipeline.MinInterventionGap); err == nil {
			cfg.Pipeline.MinInterventionGap = d
		}
	}
	if f.Pipeline.RecentWindow != 0 {
		cfg.Pipeline.RecentWindow = f.Pipeline.RecentWindow
	}
	if f.Study.DataPath != "" {
		cfg.Study.DataPath = f.Study.DataPath
	}
	if f.Study.Mode != "" {
		cfg.Study.Mode = f.Study.Mode
	}
	if f.Study.ParticipantID != "" {
		cfg.Study.ParticipantID = f.Study.ParticipantID
	}
	if f.Security.SecurityMode != "" {
		cfg.Security.SecurityMode = f.Security.SecurityMode
	}
	if f.Security.APIToken != "" {
		cfg.Security.APIToken = f.Security.APIToken
	}
	if f.Security.RateLimitPerSec != 0 {
		cfg.Security.RateLimitPerSec = f.Security.RateLimitPerSec
	}
	if f.Security.RateLimitBurst != 0 {
		cfg.Security.RateLimitBurst = f.Security.RateLimitBurst
	}
}

// buildBaseConfig constructs a Config with values from environment variables
// and defaults.
func buildBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("LECTOR_PORT", 7147),
			Host: getEnv("LECTOR_HOST", "127.0.0.1"),
		},
		LLM: LLMConfig{
			Provider:        getEnv("LECTOR_LLM_PROVIDER", "ollama"),
			OllamaURL:       getEnv("LECTOR_OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:     getEnv("LECTOR_OLLAMA_MODEL", "qwen2.5:7b"),
			OpenAIAPIKey:    getEnv("LECTOR_OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("LECTOR_OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:   getEnv("LECTOR_OPENAI_BASE_URL", ""),
			AnthropicAPIKey: getEnv("LECTOR_ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("LECTOR_ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
		},
		Pipeline: PipelineConfig{
			MinInterventionGap: getEnvDuration("LECTOR_MIN_INTERVENTION_GAP", 2*time.Second),
			RecentWindow:       getEnvInt("LECTOR_RECENT_WINDOW", 5),
		},
		Study: StudyConfig{
			DataPath:      getEnv("LECTOR_DATA_PATH", "./data"),
			Mode:          getEnv("LECTOR_STUDY_MODE", "testing"),
			ParticipantID: getEnv("LECTOR_PARTICIPANT_ID", ""),
		},
		Security: SecurityConfig{
			SecurityMode:    getEnv("LECTOR_SECURITY_MODE", "development"),
			APIToken:        getEnv("LECTOR_API_TOKEN", ""),
			RateLimitPerSec: getEnvFloat("LECTOR_RATE_LIMIT_PER_SEC", 10.0),
			RateLimitBurst:  getEnvInt("LECTOR_RATE_LIMIT_BURST", 20),
		},
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the variable exists but cannot be parsed, the default is used.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value. If the variable exists but cannot be parsed, the default is used.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (Go duration
// syntax, e.g. "2s") or returns a default value. If the variable exists but
// cannot be parsed, the default is used.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
