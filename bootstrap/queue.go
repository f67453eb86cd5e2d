package bootstrap

import (
	"time"

	"luna/pkg/config"
	"luna/pkg/logger"
	"luna/pkg/openai"
	"luna/pkg/queue"
	"luna/pkg/redis"
)

// SetupQueue 初始化音频生成队列
// 返回工作器组供进程退出时优雅停机，未启动时返回 nil
func SetupQueue() *queue.Worker {
	if redis.Manager == nil {
		logger.ErrorString("Queue", "Setup", "Redis manager not initialized")
		return nil
	}

	client := openai.NewClientFromConfig()
	if client == nil {
		logger.ErrorString("Queue", "Setup", "OpenAI 客户端未配置，音频生成队列不启动")
		return nil
	}

	queueService := queue.NewQueueService()
	worker := queue.NewWorker(queueService, client, queue.WorkerConfig{
		WorkerCount:     config.GetInt("queue.worker_count", 5),
		TaskTimeout:     time.Duration(config.GetInt("queue.task_timeout", 120)) * time.Second,
		ShutdownTimeout: 30 * time.Second,
	})

	worker.Start()

	logger.InfoString("Queue", "Setup", "音频生成队列启动成功")
	return worker
}
