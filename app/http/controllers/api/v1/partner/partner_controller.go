// Package partner 伴侣档案与伴侣问答相关控制器
package partner

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"luna/app/models/conversation"
	"luna/app/models/partner"
	"luna/app/repositories"
	"luna/app/requests"
	chatservice "luna/app/services/chat"
	"luna/pkg/app"
	"luna/pkg/config"
	"luna/pkg/response"
	"luna/pkg/sse"
)

// PartnerController 伴侣档案控制器
type PartnerController struct {
	service    *chatservice.Service
	partners   *repositories.PartnerRepository
	identities *repositories.IdentityRepository
	messages   *repositories.MessageRepository
	quotas     *repositories.QuotaRepository
}

// NewPartnerController 创建控制器实例
func NewPartnerController() *PartnerController {
	return &PartnerController{
		service:    chatservice.NewServiceFromConfig(),
		partners:   repositories.NewPartnerRepository(),
		identities: repositories.NewIdentityRepository(),
		messages:   repositories.NewMessageRepository(),
		quotas:     repositories.NewQuotaRepository(),
	}
}

// Store 创建伴侣档案
// 每个用户至多一个伴侣档案
func (pc *PartnerController) Store(c *gin.Context) {
	identityID := c.Param("id")

	request, err := requests.ValidatePartner(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	ctx := c.Request.Context()

	ident, err := pc.identities.GetByID(ctx, identityID)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if ident == nil {
		response.Abort404(c, "用户不存在")
		return
	}

	existing, err := pc.partners.GetByIdentity(ctx, identityID)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if existing != nil {
		response.Abort400(c, "已存在伴侣档案")
		return
	}

	p := &partner.Partner{
		IdentityID:  identityID,
		Name:        request.Name,
		BirthDate:   request.BirthDate,
		BirthTime:   request.BirthTime,
		BirthCity:   request.BirthCity,
		BirthState:  request.BirthState,
		PhotoBase64: request.PhotoBase64,
	}
	fillCompatibility(p)

	if err := pc.partners.Create(ctx, p); err != nil {
		response.ServerError(c, err, "创建伴侣档案失败")
		return
	}

	response.Created(c, p)
}

// ShowCurrent 获取用户当前的伴侣档案
func (pc *PartnerController) ShowCurrent(c *gin.Context) {
	p, err := pc.partners.GetByIdentity(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if p == nil {
		response.Abort404(c, "伴侣档案不存在")
		return
	}

	response.Data(c, p)
}

// Index 获取用户的伴侣档案列表（旧接口）
func (pc *PartnerController) Index(c *gin.Context) {
	partners, err := pc.partners.ListByIdentity(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ServerError(c, err)
		return
	}

	response.JSON(c, partners)
}

// Show 获取伴侣档案详情
func (pc *PartnerController) Show(c *gin.Context) {
	p, err := pc.partners.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if p == nil {
		response.Abort404(c, "伴侣档案不存在")
		return
	}

	response.Data(c, p)
}

// AskQuestion 对伴侣会话发起提问，以 SSE 推送回复
func (pc *PartnerController) AskQuestion(c *gin.Context) {
	partnerID := c.Param("id")

	request, err := requests.ValidatePartnerQuestion(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	writer := sse.NewWriter(c)
	input := chatservice.AskInput{
		Scope:   conversation.PartnerScope(partnerID),
		Content: request.Question,
		AskerID: request.UserID,
	}

	err = pc.service.Ask(c.Request.Context(), input, func(event chatservice.StreamEvent) error {
		return writer.Write(event)
	})
	if err != nil {
		abortWithServiceError(c, err)
	}
}

// Questions 获取伴侣问答历史，按问答对返回
func (pc *PartnerController) Questions(c *gin.Context) {
	partnerID := c.Param("id")

	p, err := pc.partners.GetByID(c.Request.Context(), partnerID)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if p == nil {
		response.Abort404(c, "伴侣档案不存在")
		return
	}

	limit := config.GetInt("chat.history_limit", chatservice.DefaultHistoryLimit)
	history, err := pc.messages.History(c.Request.Context(), conversation.PartnerScope(partnerID), limit)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	// 旧客户端按「问题 + 回答」成对消费，字段名沿用旧接口
	turns := conversation.BuildTurns(history)
	questions := make([]gin.H, 0, len(turns))
	for _, t := range turns {
		questions = append(questions, gin.H{
			"question":  t.Question,
			"answer":    t.Answer,
			"userId":    t.AskerID,
			"createdAt": t.CreatedAt,
		})
	}

	response.JSON(c, questions)
}

// QuestionCount 查询伴侣会话今日已接受的提问数，返回裸整数
func (pc *PartnerController) QuestionCount(c *gin.Context) {
	partnerID := c.Param("id")

	p, err := pc.partners.GetByID(c.Request.Context(), partnerID)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if p == nil {
		response.Abort404(c, "伴侣档案不存在")
		return
	}

	count, err := pc.quotas.CountToday(c.Request.Context(), conversation.PartnerScope(partnerID))
	if err != nil {
		response.ServerError(c, err)
		return
	}

	response.JSON(c, count)
}

// TodayInsight 获取今日关系洞察
// 当前为固定内容，后续接入真实星盘计算
func (pc *PartnerController) TodayInsight(c *gin.Context) {
	p, err := pc.partners.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if p == nil {
		response.Abort404(c, "伴侣档案不存在")
		return
	}

	response.JSON(c, gin.H{
		"temperature_score": 75,
		"temperature_label": "升温",
		"day_quality":       "good",
		"main_message":      "今天适合进行深入的交流。金星相位良好，你们之间的能量流动和谐。",
		"favorable_topics":  []string{"未来规划", "表达爱意", "旅行"},
		"avoid_topics":      []string{"金钱", "过往感情", "指责"},
		"best_time_to_talk": "晚上八点之后",
		"astrological_influences": gin.H{
			"main_planet": "金星",
			"aspect":      "与月亮成三分相",
			"effect":      "有利于浪漫氛围和相互理解",
		},
	})
}

// Forecast 获取未来七天的关系预报
// 当前为固定内容，后续接入真实星盘计算
func (pc *PartnerController) Forecast(c *gin.Context) {
	p, err := pc.partners.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if p == nil {
		response.Abort404(c, "伴侣档案不存在")
		return
	}

	weekdays := []string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}
	qualities := []string{"excellent", "good", "neutral", "careful", "good", "excellent", "good"}
	temperatures := []int{90, 70, 55, 45, 75, 92, 78}
	messages := []string{
		"适合浪漫与深度联结的一天",
		"适合一起制定计划",
		"平平淡淡的一天，保持平常心",
		"能量略显紧张，避免严肃争论",
		"适合聊聊关于未来的话题",
		"能量极佳，适合制造浪漫惊喜",
		"适合两个人一起活动",
	}

	today := app.TimenowInTimezone()
	forecast := make([]gin.H, 0, 7)
	for i := 0; i < 7; i++ {
		date := today.AddDate(0, 0, i)
		label := weekdays[int(date.Weekday())]
		if i == 0 {
			label = "今天"
		} else if i == 1 {
			label = "明天"
		}
		forecast = append(forecast, gin.H{
			"date":           label,
			"date_formatted": date.Format("01-02"),
			"quality":        qualities[i],
			"temperature":    temperatures[i],
			"message":        messages[i],
		})
	}

	response.JSON(c, forecast)
}

// fillCompatibility 生成占位契合度数据，注册时随机一次后固定
func fillCompatibility(p *partner.Partner) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	p.CompatibilityScore = r.Intn(30) + 65
	breakdown, _ := json.Marshal(map[string]int{
		"communication": r.Intn(25) + 70,
		"intimacy":      r.Intn(30) + 60,
		"conflicts":     r.Intn(40) + 40,
		"goals":         r.Intn(25) + 65,
		"values":        r.Intn(25) + 70,
	})
	p.CompatibilityBreakdown = string(breakdown)
}

// abortWithServiceError 将编排服务的类型化错误映射为 HTTP 状态码
func abortWithServiceError(c *gin.Context, err error) {
	var validationErr *chatservice.ValidationError
	var notFoundErr *chatservice.NotFoundError
	var quotaErr *chatservice.QuotaExceededError

	switch {
	case errors.As(err, &validationErr):
		response.Abort400(c, validationErr.Message)
	case errors.As(err, &notFoundErr):
		response.Abort404(c, notFoundErr.Message)
	case errors.As(err, &quotaErr):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "今日提问次数已用完",
			"limit": quotaErr.Limit,
			"count": quotaErr.Count,
		})
	default:
		response.ServerError(c, err)
	}
}
