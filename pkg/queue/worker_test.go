package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"luna/app/models/conversation"
	"luna/app/models/identity"
	"luna/pkg/logger"
)

func TestWorkerStopDrainsBeforeTimeout(t *testing.T) {
	logger.Logger = zap.NewNop()

	w := NewWorker(nil, nil, WorkerConfig{ShutdownTimeout: 5 * time.Second})

	start := time.Now()
	w.Stop()

	// 没有在途任务时立即返回，不等满关闭超时
	assert.Less(t, time.Since(start), time.Second)
}

func TestBuildAudioPromptIncludesProfileAndRecentContext(t *testing.T) {
	ident := &identity.Identity{
		FullName: "Maria Silva",
		SunSign:  "双子座",
	}
	recent := []conversation.Message{
		{Role: conversation.RoleUser, Content: "我最近压力很大"},
		{Role: conversation.RoleAssistant, Content: "试着放慢节奏"},
	}

	prompt := buildAudioPrompt(ident, recent)

	// 称呼用名字而非全名，带星座和最近对话上下文
	assert.Contains(t, prompt, "Maria")
	assert.NotContains(t, prompt, "Silva")
	assert.Contains(t, prompt, "双子座")
	assert.Contains(t, prompt, "我最近压力很大")
	assert.Contains(t, prompt, "试着放慢节奏")
}
