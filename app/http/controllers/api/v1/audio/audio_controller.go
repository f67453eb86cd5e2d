// Package audio 每日音频相关控制器
package audio

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"luna/app/repositories"
	"luna/pkg/app"
	"luna/pkg/queue"
	"luna/pkg/response"
)

// AudioController 每日音频控制器
type AudioController struct {
	audios       *repositories.AudioRepository
	identities   *repositories.IdentityRepository
	queueService *queue.QueueService
}

// NewAudioController 创建控制器实例
func NewAudioController() *AudioController {
	return &AudioController{
		audios:       repositories.NewAudioRepository(),
		identities:   repositories.NewIdentityRepository(),
		queueService: queue.NewQueueService(),
	}
}

// Generate 触发生成今日音频
// 今日已有音频时直接返回，否则入队一个后台生成任务
func (ac *AudioController) Generate(c *gin.Context) {
	identityID := c.Param("id")
	ctx := c.Request.Context()

	ident, err := ac.identities.GetByID(ctx, identityID)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if ident == nil {
		response.Abort404(c, "用户不存在")
		return
	}

	today := app.TimenowInTimezone().Format("2006-01-02")

	existing, err := ac.audios.GetByIdentityAndDate(ctx, identityID, today)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if existing != nil {
		response.Data(c, existing)
		return
	}

	task := &queue.AudioTask{
		ID:         uuid.New().String(),
		IdentityID: identityID,
		ForDate:    today,
		Status:     queue.TaskPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := ac.queueService.PushTask(ctx, task); err != nil {
		response.Abort500(c, "任务入队失败")
		return
	}

	response.Data(c, gin.H{
		"task_id": task.ID,
		"status":  task.Status,
		"message": "音频生成任务已加入队列",
	})
}

// Today 获取今日音频
func (ac *AudioController) Today(c *gin.Context) {
	identityID := c.Param("id")
	today := app.TimenowInTimezone().Format("2006-01-02")

	a, err := ac.audios.GetByIdentityAndDate(c.Request.Context(), identityID, today)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	if a == nil {
		response.Abort404(c, "今日音频尚未生成")
		return
	}

	response.Data(c, a)
}

// MarkListened 标记音频为已收听
func (ac *AudioController) MarkListened(c *gin.Context) {
	if err := ac.audios.MarkListened(c.Request.Context(), c.Param("id")); err != nil {
		response.ServerError(c, err)
		return
	}

	response.Data(c, gin.H{
		"listened": true,
	})
}

// TaskStatus 查询音频生成任务的状态
func (ac *AudioController) TaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		response.Abort400(c, "缺少任务 ID")
		return
	}

	status, err := ac.queueService.GetTaskStatus(c.Request.Context(), taskID)
	if err != nil {
		response.Abort500(c, "获取任务状态失败")
		return
	}
	if status == "" {
		response.Abort404(c, "任务不存在")
		return
	}

	response.Data(c, gin.H{
		"task_id": taskID,
		"status":  status,
	})
}
