package requests

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"

	"luna/app/models/identity"
)

// IdentityRequest 注册请求
type IdentityRequest struct {
	Email              string `json:"email"`
	Whatsapp           string `json:"whatsapp"`
	FullName           string `json:"full_name"`
	BirthDate          string `json:"birth_date"`
	BirthTime          string `json:"birth_time"`
	BirthCity          string `json:"birth_city"`
	BirthState         string `json:"birth_state"`
	VoicePreference    string `json:"voice_preference"`
	NotificationTime   string `json:"notification_time"`
	ProfilePhotoBase64 string `json:"profile_photo_base64"`
	Plan               string `json:"plan"`
	TermsAccepted      bool   `json:"terms_accepted"`
}

// ValidateIdentity 验证注册请求
func ValidateIdentity(c *gin.Context) (*IdentityRequest, error) {
	rules := govalidator.MapData{
		"email":      []string{"required", "email"},
		"whatsapp":   []string{"required"},
		"full_name":  []string{"required"},
		"birth_date": []string{"required", "date"},
		"birth_city": []string{"required"},
		"plan":       []string{"in:essencia,conexao,plenitude"},
	}

	messages := govalidator.MapData{
		"email": []string{
			"required:邮箱不能为空",
			"email:邮箱格式不正确",
		},
		"whatsapp": []string{
			"required:WhatsApp 号不能为空",
		},
		"full_name": []string{
			"required:姓名不能为空",
		},
		"birth_date": []string{
			"required:出生日期不能为空",
			"date:出生日期格式不正确",
		},
		"birth_city": []string{
			"required:出生城市不能为空",
		},
		"plan": []string{
			"in:无效的套餐类型",
		},
	}

	return Validate[IdentityRequest](c, rules, messages)
}

// UpdateIdentityRequest 资料更新请求，全部字段可选
type UpdateIdentityRequest struct {
	Email              *string `json:"email"`
	Whatsapp           *string `json:"whatsapp"`
	FullName           *string `json:"full_name"`
	BirthDate          *string `json:"birth_date"`
	BirthTime          *string `json:"birth_time"`
	BirthCity          *string `json:"birth_city"`
	BirthState         *string `json:"birth_state"`
	VoicePreference    *string `json:"voice_preference"`
	NotificationTime   *string `json:"notification_time"`
	ProfilePhotoBase64 *string `json:"profile_photo_base64"`
	Plan               *string `json:"plan"`
	TermsAccepted      *bool   `json:"terms_accepted"`
}

// ValidateUpdateIdentity 验证资料更新请求并生成更新字段表
func ValidateUpdateIdentity(c *gin.Context) (map[string]interface{}, error) {
	var req UpdateIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	if req.Plan != nil && !identity.IsValidPlan(*req.Plan) {
		return nil, fmt.Errorf("无效的套餐类型: %s", *req.Plan)
	}

	updates := make(map[string]interface{})
	setIfPresent(updates, "email", req.Email)
	setIfPresent(updates, "whatsapp", req.Whatsapp)
	setIfPresent(updates, "full_name", req.FullName)
	setIfPresent(updates, "birth_date", req.BirthDate)
	setIfPresent(updates, "birth_time", req.BirthTime)
	setIfPresent(updates, "birth_city", req.BirthCity)
	setIfPresent(updates, "birth_state", req.BirthState)
	setIfPresent(updates, "voice_preference", req.VoicePreference)
	setIfPresent(updates, "notification_time", req.NotificationTime)
	setIfPresent(updates, "profile_photo_base64", req.ProfilePhotoBase64)
	setIfPresent(updates, "plan", req.Plan)
	if req.TermsAccepted != nil {
		updates["terms_accepted"] = *req.TermsAccepted
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("没有需要更新的字段")
	}
	return updates, nil
}

func setIfPresent(updates map[string]interface{}, column string, value *string) {
	if value != nil {
		updates[column] = *value
	}
}
