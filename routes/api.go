package routes

import (
	"luna/app/http/controllers/api/v1/audio"
	"luna/app/http/controllers/api/v1/chat"
	"luna/app/http/controllers/api/v1/diary"
	"luna/app/http/controllers/api/v1/identity"
	"luna/app/http/controllers/api/v1/partner"
	"luna/app/http/middlewares"

	"github.com/gin-gonic/gin"
)

// 路由限流配置
const (
	// 全局限流：每小时每 IP 10000 请求
	GlobalRateLimit = "10000-H"
	// 发起提问限流：每分钟每 IP 30 请求（业务配额在编排服务内另行控制）
	AskLimit = "30-M"
	// 普通查询限流：每分钟每 IP 300 请求
	QueryLimit = "300-M"
)

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine) {
	v1 := r.Group("/v1")

	v1.Use(
		middlewares.Recovery(),
		middlewares.SecurityHeaders(),
		middlewares.LimitIP(GlobalRateLimit),
		middlewares.Cors(),
	)

	// 用户账号
	ic := identity.NewIdentityController()
	v1.POST("/identities", ic.Store)
	v1.GET("/identities/:id", middlewares.LimitPerRoute(QueryLimit), ic.Show)
	v1.PATCH("/identities/:id", ic.Update)
	v1.POST("/auth/login", ic.Login)

	// 个人聊天
	mc := chat.NewMessageController()
	v1.POST("/identities/:id/messages", middlewares.LimitPerRoute(AskLimit), mc.Store)
	v1.GET("/identities/:id/messages", middlewares.LimitPerRoute(QueryLimit), mc.Index)
	v1.GET("/identities/:id/questions/count", middlewares.LimitPerRoute(QueryLimit), mc.QuestionCount)

	// 伴侣档案与伴侣问答
	pc := partner.NewPartnerController()
	v1.POST("/identities/:id/partner", pc.Store)
	v1.GET("/identities/:id/partner", pc.ShowCurrent)
	v1.GET("/identities/:id/partners", pc.Index)
	v1.GET("/partners/:id", pc.Show)
	v1.POST("/partners/:id/questions", middlewares.LimitPerRoute(AskLimit), pc.AskQuestion)
	v1.GET("/partners/:id/questions", middlewares.LimitPerRoute(QueryLimit), pc.Questions)
	v1.GET("/partners/:id/questions/count", middlewares.LimitPerRoute(QueryLimit), pc.QuestionCount)
	v1.GET("/partners/:id/insight/today", pc.TodayInsight)
	v1.GET("/partners/:id/forecast", pc.Forecast)

	// 每日音频
	ac := audio.NewAudioController()
	v1.POST("/identities/:id/audio/generate", ac.Generate)
	v1.GET("/identities/:id/audio/today", ac.Today)
	v1.PATCH("/audio/:id/listened", ac.MarkListened)
	v1.GET("/audio-tasks/:id/status", ac.TaskStatus)

	// 心情日记
	dc := diary.NewDiaryController()
	v1.POST("/identities/:id/diary", dc.Store)
	v1.GET("/identities/:id/diary", dc.Index)
}
