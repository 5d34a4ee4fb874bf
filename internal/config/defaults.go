package config

import "github.com/spf13/viper"

// DefaultDir is the per-workspace state directory.
const DefaultDir = ".todone"

// SetDefaults registers default values on v. Durations are strings so the
// raw settings validate against the schema before decoding.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("agent.provider", ProviderTemplate)
	v.SetDefault("agent.thinking_delay", "0s")
	v.SetDefault("agent.provider_timeout", "30s")
	v.SetDefault("agent.skill_timeout", "30s")
	v.SetDefault("agent.fallback_to_template", true)
	v.SetDefault("agent.max_subtasks", 10)

	v.SetDefault("openai.model", "gpt-4.1-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.api_key_env", "OPENAI_API_KEY")
	v.SetDefault("openai.timeout", "60s")

	v.SetDefault("store.path", DefaultDir+"/todone.db")
	v.SetDefault("skills.dirs", []string{})
	v.SetDefault("web.addr", "127.0.0.1:8080")
}
