package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// ChatMessageRequest 个人聊天提问请求
type ChatMessageRequest struct {
	Content string `json:"content"`
}

// ValidateChatMessage 验证个人聊天提问
func ValidateChatMessage(c *gin.Context) (*ChatMessageRequest, error) {
	rules := govalidator.MapData{
		"content": []string{"required", "min:1", "max:500"},
	}

	messages := govalidator.MapData{
		"content": []string{
			"required:消息不能为空",
			"min:消息不能为空",
			"max:消息过长（最多 500 字符）",
		},
	}

	return Validate[ChatMessageRequest](c, rules, messages)
}

// PartnerQuestionRequest 伴侣问答提问请求
type PartnerQuestionRequest struct {
	Question string `json:"question"`
	UserID   string `json:"userId"`
}

// ValidatePartnerQuestion 验证伴侣问答提问
func ValidatePartnerQuestion(c *gin.Context) (*PartnerQuestionRequest, error) {
	rules := govalidator.MapData{
		"question": []string{"required", "min:1"},
	}

	messages := govalidator.MapData{
		"question": []string{
			"required:问题不能为空",
			"min:问题不能为空",
		},
	}

	return Validate[PartnerQuestionRequest](c, rules, messages)
}
