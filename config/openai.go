package config

import "luna/pkg/config"

func init() {
	config.Add("openai", func() map[string]interface{} {
		return map[string]interface{}{
			"api_key":    config.Env("OPENAI_API_KEY", ""),
			"base_url":   config.Env("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			"model":      config.Env("OPENAI_MODEL", "gpt-4o-mini"),
			"timeout":    config.Env("OPENAI_TIMEOUT", 90),
			"max_tokens": config.Env("OPENAI_MAX_TOKENS", 500),
		}
	})
}
