// Package diary 心情日记相关控制器
package diary

import (
	"github.com/gin-gonic/gin"

	"luna/app/models/diary"
	"luna/app/repositories"
	"luna/app/requests"
	"luna/pkg/response"
)

// DiaryController 心情日记控制器
type DiaryController struct {
	entries    *repositories.DiaryRepository
	identities *repositories.IdentityRepository
}

// NewDiaryController 创建控制器实例
func NewDiaryController() *DiaryController {
	return &DiaryController{
		entries:    repositories.NewDiaryRepository(),
		identities: repositories.NewIdentityRepository(),
	}
}

// Store 创建日记条目
func (dc *DiaryController) Store(c *gin.Context) {
	identityID := c.Param("id")

	request, err := requests.ValidateDiaryEntry(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	ctx := c.Request.Context()

	ident, err := dc.identities.GetByID(ctx, identityID)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if ident == nil {
		response.Abort404(c, "用户不存在")
		return
	}

	entry := &diary.Entry{
		IdentityID: identityID,
		Content:    request.Content,
		Mood:       request.Mood,
	}
	if err := dc.entries.Create(ctx, entry); err != nil {
		response.ServerError(c, err, "创建日记失败")
		return
	}

	response.Created(c, entry)
}

// Index 获取日记列表，从新到旧排列
func (dc *DiaryController) Index(c *gin.Context) {
	identityID := c.Param("id")
	ctx := c.Request.Context()

	ident, err := dc.identities.GetByID(ctx, identityID)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if ident == nil {
		response.Abort404(c, "用户不存在")
		return
	}

	entries, err := dc.entries.ListByIdentity(ctx, identityID, 30)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	response.Data(c, gin.H{
		"entries": entries,
	})
}
