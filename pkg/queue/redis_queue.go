package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"luna/pkg/config"
	"luna/pkg/redis"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// AudioTask 每日音频生成任务
type AudioTask struct {
	ID         string     `json:"id"`
	IdentityID string     `json:"identity_id"`
	ForDate    string     `json:"for_date"`
	Status     TaskStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// QueueService Redis 队列服务
type QueueService struct {
	client      *redis.RedisClient
	prefix      string
	timeout     time.Duration
	rateLimiter *rate.Limiter
	metrics     *QueueMetrics
}

// NewQueueService 创建队列服务实例
func NewQueueService() *QueueService {
	rateLimit := config.GetInt("queue.rate_limit", 1000)
	burst := config.GetInt("queue.rate_burst", rateLimit)

	return &QueueService{
		client:      redis.GetRedis(redis.QueueDB),
		prefix:      config.GetString("redis.queue_prefix", "luna:queue"),
		timeout:     time.Duration(config.GetInt("redis.queue_timeout", 3600)) * time.Second,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), burst),
		metrics:     NewQueueMetrics(),
	}
}

// PushTask 将任务推送到队列
// 入队和初始状态写入放在同一个 pipeline 里保证一致
func (q *QueueService) PushTask(ctx context.Context, task *AudioTask) error {
	if err := q.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	start := time.Now()
	defer func() {
		q.metrics.RecordPushLatency(time.Since(start))
	}()

	taskJSON, err := json.Marshal(task)
	if err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	key := fmt.Sprintf("%s:tasks", q.prefix)
	statusKey := fmt.Sprintf("%s:status:%s", q.prefix, task.ID)

	pipe := q.client.Client.Pipeline()
	pipe.LPush(ctx, key, taskJSON)
	pipe.Set(ctx, statusKey, string(TaskPending), q.timeout)

	if _, err = pipe.Exec(ctx); err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to push task: %w", err)
	}

	q.metrics.RecordSuccess(OpPush)
	return nil
}

// PopTask 从队列中阻塞获取任务
// 队列为空或等待超时返回 nil
func (q *QueueService) PopTask(ctx context.Context) (*AudioTask, error) {
	key := fmt.Sprintf("%s:tasks", q.prefix)

	result, err := q.client.Client.BRPop(ctx, 0, key).Result()
	if err != nil {
		if err == goredis.Nil || err == context.DeadlineExceeded {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop task from queue: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("invalid result from queue")
	}

	var task AudioTask
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}

	return &task, nil
}

// UpdateTaskStatus 更新任务状态，失败时 detail 记录原因
func (q *QueueService) UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus, detail string) error {
	statusKey := fmt.Sprintf("%s:status:%s", q.prefix, taskID)
	if err := q.client.Client.Set(ctx, statusKey, string(status), q.timeout).Err(); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	if detail != "" {
		detailKey := fmt.Sprintf("%s:detail:%s", q.prefix, taskID)
		if err := q.client.Client.Set(ctx, detailKey, detail, q.timeout).Err(); err != nil {
			return fmt.Errorf("failed to save task detail: %w", err)
		}
	}

	return nil
}

// GetTaskStatus 获取任务状态，任务不存在时返回空字符串
func (q *QueueService) GetTaskStatus(ctx context.Context, taskID string) (TaskStatus, error) {
	statusKey := fmt.Sprintf("%s:status:%s", q.prefix, taskID)
	status, err := q.client.Client.Get(ctx, statusKey).Result()
	if err != nil {
		if err == goredis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get task status: %w", err)
	}

	return TaskStatus(status), nil
}

// Ping 检查队列服务健康状态
func (q *QueueService) Ping(ctx context.Context) error {
	return q.client.Ping()
}
