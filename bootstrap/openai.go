package bootstrap

import (
	"fmt"

	"luna/pkg/config"
	"luna/pkg/logger"
	"luna/pkg/openai"
)

// SetupOpenAI 初始化 OpenAI 客户端
func SetupOpenAI() *openai.Client {
	logger.InfoString("OpenAI", "Setup", "正在初始化 OpenAI 客户端...")

	apiKey := config.GetString("openai.api_key")
	baseURL := config.GetString("openai.base_url")
	model := config.GetString("openai.model")

	// 记录当前配置值（用于调试）
	logger.DebugString("OpenAI", "Config", fmt.Sprintf(
		"当前配置: BaseURL=%s, Model=%s, APIKey=%s",
		baseURL,
		model,
		maskSecret(apiKey),
	))

	if apiKey == "" {
		logger.ErrorString("OpenAI", "Config", "缺少必要的配置: OPENAI_API_KEY 未设置")
		return nil
	}

	client := openai.NewClientFromConfig()
	if client == nil {
		logger.ErrorString("OpenAI", "Setup", "OpenAI 客户端初始化失败")
		return nil
	}

	logger.InfoString("OpenAI", "Setup", fmt.Sprintf("OpenAI 客户端初始化成功 [Model: %s]", model))
	return client
}

// maskSecret 处理密钥显示，只保留前四位
func maskSecret(s string) string {
	if s == "" {
		return "<空>"
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
