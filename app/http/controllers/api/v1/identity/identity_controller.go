// Package identity 用户账号相关控制器
package identity

import (
	"github.com/gin-gonic/gin"

	"luna/app/models/identity"
	"luna/app/repositories"
	"luna/app/requests"
	"luna/pkg/response"
)

// IdentityController 用户账号控制器
type IdentityController struct {
	identities *repositories.IdentityRepository
}

// NewIdentityController 创建控制器实例
func NewIdentityController() *IdentityController {
	return &IdentityController{
		identities: repositories.NewIdentityRepository(),
	}
}

// Store 注册新用户
func (ic *IdentityController) Store(c *gin.Context) {
	request, err := requests.ValidateIdentity(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	ctx := c.Request.Context()

	// 邮箱和 WhatsApp 都要求唯一
	if existing, err := ic.identities.GetByEmail(ctx, request.Email); err != nil {
		response.ServerError(c, err)
		return
	} else if existing != nil {
		response.Abort400(c, "邮箱已被注册")
		return
	}

	if existing, err := ic.identities.GetByWhatsapp(ctx, request.Whatsapp); err != nil {
		response.ServerError(c, err)
		return
	} else if existing != nil {
		response.Abort400(c, "WhatsApp 号已被注册")
		return
	}

	plan := request.Plan
	if plan == "" {
		plan = identity.PlanEssencia
	}

	ident := &identity.Identity{
		Email:              request.Email,
		Whatsapp:           request.Whatsapp,
		FullName:           request.FullName,
		BirthDate:          request.BirthDate,
		BirthTime:          request.BirthTime,
		BirthCity:          request.BirthCity,
		BirthState:         request.BirthState,
		VoicePreference:    request.VoicePreference,
		NotificationTime:   request.NotificationTime,
		ProfilePhotoBase64: request.ProfilePhotoBase64,
		Plan:               plan,
		TermsAccepted:      request.TermsAccepted,
	}

	if err := ic.identities.Create(ctx, ident); err != nil {
		response.ServerError(c, err, "创建用户失败")
		return
	}

	response.Created(c, ident)
}

// Show 获取用户资料
func (ic *IdentityController) Show(c *gin.Context) {
	ident, err := ic.identities.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if ident == nil {
		response.Abort404(c, "用户不存在")
		return
	}

	response.Data(c, ident)
}

// Update 局部更新用户资料
func (ic *IdentityController) Update(c *gin.Context) {
	updates, err := requests.ValidateUpdateIdentity(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	ident, err := ic.identities.Update(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		response.ServerError(c, err, "更新用户失败")
		return
	}
	if ident == nil {
		response.Abort404(c, "用户不存在")
		return
	}

	response.Data(c, ident)
}

// Login 按邮箱或 WhatsApp 号查找用户
// 暂不签发凭证，登录态由客户端自行保存用户 ID
func (ic *IdentityController) Login(c *gin.Context) {
	var request struct {
		Email    string `json:"email"`
		Whatsapp string `json:"whatsapp"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		response.BadRequest(c, err, "请求格式错误")
		return
	}
	if request.Email == "" && request.Whatsapp == "" {
		response.Abort400(c, "请提供邮箱或 WhatsApp 号")
		return
	}

	ctx := c.Request.Context()

	var ident *identity.Identity
	var err error
	if request.Email != "" {
		ident, err = ic.identities.GetByEmail(ctx, request.Email)
	} else {
		ident, err = ic.identities.GetByWhatsapp(ctx, request.Whatsapp)
	}
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if ident == nil {
		response.Abort404(c, "用户不存在")
		return
	}

	response.Data(c, ident)
}
