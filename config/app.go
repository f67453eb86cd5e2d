package config

import "luna/pkg/config"

func init() {
	config.Add("app", func() map[string]interface{} {
		return map[string]interface{}{

			// 应用名称
			"name": config.Env("APP_NAME", "Luna"),

			// 当前环境，用以区分多环境，一般为 local, stage, production, test
			"env": config.Env("APP_ENV", "production"),

			// 是否进入调试模式
			"debug": config.Env("APP_DEBUG", false),

			// 应用服务端口
			"port": config.Env("APP_PORT", "3000"),

			// 设置时区，日志记录和每日配额的日界都会使用
			"timezone": config.Env("TIMEZONE", "America/Sao_Paulo"),

			// 全局限流，每小时请求数
			"api_rate_limit": config.Env("API_RATE_LIMIT", "1000"),
		}
	})
}
