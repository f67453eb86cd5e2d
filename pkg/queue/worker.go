package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"luna/app/models/audio"
	"luna/app/models/conversation"
	"luna/app/models/identity"
	"luna/app/repositories"
	"luna/pkg/logger"
	"luna/pkg/openai"
)

// Worker 每日音频生成工作器
// 从队列取任务，调用 AI 生成晨间音频文稿并落库
type Worker struct {
	queueService *QueueService
	aiClient     *openai.Client
	stopChan     chan struct{}
	workerCount  int
	metrics      *QueueMetrics
	wg           sync.WaitGroup
	config       WorkerConfig
}

// WorkerConfig 工作器配置
type WorkerConfig struct {
	WorkerCount     int           // 并发工作器数量
	TaskTimeout     time.Duration // 单个任务的处理上限
	ShutdownTimeout time.Duration // 关闭超时时间
}

// NewWorker 创建工作器组
func NewWorker(qs *QueueService, client *openai.Client, config WorkerConfig) *Worker {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 5
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = 120 * time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	return &Worker{
		queueService: qs,
		aiClient:     client,
		stopChan:     make(chan struct{}),
		workerCount:  config.WorkerCount,
		metrics:      NewQueueMetrics(),
		config:       config,
	}
}

// Start 启动工作器组
func (w *Worker) Start() {
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.startWorker(i)
	}
}

// startWorker 单个工作器的主循环
func (w *Worker) startWorker(id int) {
	defer w.wg.Done()

	logger.InfoString("Worker", "Start", fmt.Sprintf("音频工作器 %d 已启动", id))

	for {
		select {
		case <-w.stopChan:
			logger.InfoString("Worker", "Stop", fmt.Sprintf("音频工作器 %d 正在停止", id))
			return
		default:
			if err := w.processNextTask(); err != nil {
				logger.ErrorString("Worker", "Process", fmt.Sprintf("工作器 %d 处理失败: %v", id, err))
				time.Sleep(time.Second)
			}
		}
	}
}

// processNextTask 取出并处理下一个任务
func (w *Worker) processNextTask() error {
	start := time.Now()
	defer func() {
		w.metrics.RecordProcessLatency(time.Since(start))
	}()

	popCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	task, err := w.queueService.PopTask(popCtx)
	if err != nil {
		return fmt.Errorf("pop task error: %w", err)
	}
	if task == nil {
		// 队列为空，稍作等待避免忙等
		time.Sleep(100 * time.Millisecond)
		return nil
	}

	return w.handleTask(task)
}

// handleTask 处理单个音频生成任务
func (w *Worker) handleTask(task *AudioTask) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.config.TaskTimeout)
	defer cancel()

	if err := w.queueService.UpdateTaskStatus(ctx, task.ID, TaskRunning, ""); err != nil {
		return fmt.Errorf("update task status error: %w", err)
	}

	transcript, err := w.generateTranscript(ctx, task)
	if err != nil {
		w.metrics.RecordError(OpProcess)
		if updateErr := w.queueService.UpdateTaskStatus(ctx, task.ID, TaskFailed, err.Error()); updateErr != nil {
			logger.ErrorString("Worker", "UpdateStatus", updateErr.Error())
		}
		return fmt.Errorf("generate transcript error: %w", err)
	}

	// 落库音频记录
	audioRepo := repositories.NewAudioRepository()
	record := &audio.DailyAudio{
		IdentityID: task.IdentityID,
		TaskID:     task.ID,
		ForDate:    task.ForDate,
		Transcript: transcript,
	}
	if err := audioRepo.Create(ctx, record); err != nil {
		w.metrics.RecordError(OpProcess)
		if updateErr := w.queueService.UpdateTaskStatus(ctx, task.ID, TaskFailed, err.Error()); updateErr != nil {
			logger.ErrorString("Worker", "UpdateStatus", updateErr.Error())
		}
		return fmt.Errorf("save audio error: %w", err)
	}

	if err := w.queueService.UpdateTaskStatus(ctx, task.ID, TaskCompleted, ""); err != nil {
		return fmt.Errorf("update task result error: %w", err)
	}

	w.metrics.RecordSuccess(OpProcess)
	return nil
}

// generateTranscript 生成晨间音频文稿
func (w *Worker) generateTranscript(ctx context.Context, task *AudioTask) (string, error) {
	identityRepo := repositories.NewIdentityRepository()
	ident, err := identityRepo.GetByID(ctx, task.IdentityID)
	if err != nil {
		return "", err
	}
	if ident == nil {
		return "", fmt.Errorf("identity %s not found", task.IdentityID)
	}

	// 带上最近的几条聊天记录让文稿更贴合用户
	messageRepo := repositories.NewMessageRepository()
	recent, err := messageRepo.History(ctx, conversation.PersonalScope(ident.ID), 10)
	if err != nil {
		return "", err
	}

	prompt := buildAudioPrompt(ident, recent)
	transcript, err := w.aiClient.Complete(ctx, []openai.Message{
		{Role: openai.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("ai completion error: %w", err)
	}

	return transcript, nil
}

// buildAudioPrompt 组装晨间音频的生成提示词
func buildAudioPrompt(ident *identity.Identity, recent []conversation.Message) string {
	firstName := ident.FullName
	if idx := strings.Index(firstName, " "); idx > 0 {
		firstName = firstName[:idx]
	}

	var b strings.Builder
	fmt.Fprintf(&b, `你是一位名叫 Luna 的占星师。为 %s（%s）创作一段个性化的温暖晨间语音文稿。

要求：
- 朗读时长 1-2 分钟
- 以称呼对方名字的热情问候开场
- 提到该星座和当前星象的相关内容
- 给出一条当天的实用指引
- 以鼓励的话语收尾
`, firstName, ident.SunSign)

	// 取最近 5 条对话作为上下文
	if len(recent) > 0 {
		start := 0
		if len(recent) > 5 {
			start = len(recent) - 5
		}
		b.WriteString("\n最近对话的上下文：\n")
		for _, m := range recent[start:] {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}

	b.WriteString("\n只输出音频文稿正文，不要任何标记或说明。")
	return b.String()
}

// Stop 优雅关闭工作器组
func (w *Worker) Stop() {
	close(w.stopChan)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoString("Worker", "Stop", "全部工作器已停止")
	case <-time.After(w.config.ShutdownTimeout):
		logger.WarnString("Worker", "Stop", "工作器关闭超时")
	}
}
