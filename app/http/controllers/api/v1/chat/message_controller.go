// Package chat 个人聊天相关控制器
package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"luna/app/models/conversation"
	"luna/app/repositories"
	"luna/app/requests"
	chatservice "luna/app/services/chat"
	"luna/pkg/config"
	"luna/pkg/response"
	"luna/pkg/sse"
)

// MessageController 个人聊天控制器
type MessageController struct {
	service    *chatservice.Service
	identities *repositories.IdentityRepository
	messages   *repositories.MessageRepository
	quotas     *repositories.QuotaRepository
}

// NewMessageController 创建控制器实例
func NewMessageController() *MessageController {
	return &MessageController{
		service:    chatservice.NewServiceFromConfig(),
		identities: repositories.NewIdentityRepository(),
		messages:   repositories.NewMessageRepository(),
		quotas:     repositories.NewQuotaRepository(),
	}
}

// Store 发起一次提问，以 SSE 推送回复
//
// 流式开始前的失败走普通 JSON 错误响应；流式开始后的失败
// 以 {"error": ...} 事件推送。
func (mc *MessageController) Store(c *gin.Context) {
	identityID := c.Param("id")
	if identityID == "" {
		response.Abort400(c, "缺少用户 ID")
		return
	}

	request, err := requests.ValidateChatMessage(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	writer := sse.NewWriter(c)
	input := chatservice.AskInput{
		Scope:   conversation.PersonalScope(identityID),
		Content: request.Content,
	}

	err = mc.service.Ask(c.Request.Context(), input, func(event chatservice.StreamEvent) error {
		return writer.Write(event)
	})
	if err != nil {
		abortWithServiceError(c, err)
	}
}

// Index 获取个人聊天历史，从旧到新排列
func (mc *MessageController) Index(c *gin.Context) {
	identityID := c.Param("id")

	ident, err := mc.identities.GetByID(c.Request.Context(), identityID)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if ident == nil {
		response.Abort404(c, "用户不存在")
		return
	}

	limit := config.GetInt("chat.history_limit", chatservice.DefaultHistoryLimit)
	history, err := mc.messages.History(c.Request.Context(), conversation.PersonalScope(identityID), limit)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	response.JSON(c, history)
}

// QuestionCount 查询今日已接受的提问数，返回裸整数
func (mc *MessageController) QuestionCount(c *gin.Context) {
	identityID := c.Param("id")

	ident, err := mc.identities.GetByID(c.Request.Context(), identityID)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if ident == nil {
		response.Abort404(c, "用户不存在")
		return
	}

	count, err := mc.quotas.CountToday(c.Request.Context(), conversation.PersonalScope(identityID))
	if err != nil {
		response.ServerError(c, err)
		return
	}

	response.JSON(c, count)
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
