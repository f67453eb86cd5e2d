package config

import "luna/pkg/config"

func init() {
	config.Add("chat", func() map[string]interface{} {
		return map[string]interface{}{

			// 各套餐的每日提问上限
			"plan_limits": map[string]interface{}{
				"essencia":  config.Env("CHAT_LIMIT_ESSENCIA", 3),
				"conexao":   config.Env("CHAT_LIMIT_CONEXAO", 10),
				"plenitude": config.Env("CHAT_LIMIT_PLENITUDE", 10),
			},

			// 伴侣会话的每日提问上限，与套餐无关
			"partner_daily_limit": config.Env("CHAT_PARTNER_DAILY_LIMIT", 3),

			// 单条提问的最大字符数
			"max_question_chars": config.Env("CHAT_MAX_QUESTION_CHARS", 500),

			// 历史接口默认返回条数
			"history_limit": config.Env("CHAT_HISTORY_LIMIT", 50),

			// 生成回复时携带的上下文消息条数
			"context_limit": config.Env("CHAT_CONTEXT_LIMIT", 30),

			// 整次流式回复的超时秒数
			"stream_timeout": config.Env("CHAT_STREAM_TIMEOUT", 120),

			// 等待首个内容分片的超时秒数
			"first_chunk_timeout": config.Env("CHAT_FIRST_CHUNK_TIMEOUT", 30),
		}
	})
}
