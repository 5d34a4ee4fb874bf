// Package config provides configuration loading and management for todone.
package config

import (
	"os"
	"time"
)

// Provider names accepted by agent.provider.
const (
	ProviderTemplate = "template"
	ProviderOpenAI   = "openai"
)

// Config is the root configuration.
type Config struct {
	Agent  AgentConfig  `json:"agent"  mapstructure:"agent"`
	OpenAI OpenAIConfig `json:"openai" mapstructure:"openai"`
	Store  StoreConfig  `json:"store"  mapstructure:"store"`
	Skills SkillsConfig `json:"skills" mapstructure:"skills"`
	Web    WebConfig    `json:"web"    mapstructure:"web"`
}

// AgentConfig controls the orchestrator and its intelligence provider.
type AgentConfig struct {
	Provider           string        `json:"provider"             mapstructure:"provider"`
	ThinkingDelay      time.Duration `json:"thinking_delay"       mapstructure:"thinking_delay"`
	ProviderTimeout    time.Duration `json:"provider_timeout"     mapstructure:"provider_timeout"`
	SkillTimeout       time.Duration `json:"skill_timeout"        mapstructure:"skill_timeout"`
	FallbackToTemplate bool          `json:"fallback_to_template" mapstructure:"fallback_to_template"`
	MaxSubtasks        int           `json:"max_subtasks"         mapstructure:"max_subtasks"`
}

// OpenAIConfig configures the model-backed provider.
type OpenAIConfig struct {
	Model     string        `json:"model"       mapstructure:"model"`
	BaseURL   string        `json:"base_url"    mapstructure:"base_url"`
	APIKeyEnv string        `json:"api_key_env" mapstructure:"api_key_env"`
	Timeout   time.Duration `json:"timeout"     mapstructure:"timeout"`
}

// APIKey resolves the key from the configured environment variable.
func (c OpenAIConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// StoreConfig locates the task database.
type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// SkillsConfig lists extra skill directories to load at startup.
type SkillsConfig struct {
	Dirs []string `json:"dirs" mapstructure:"dirs"`
}

// WebConfig configures `todone serve`.
type WebConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}
