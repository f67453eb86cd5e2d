package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna/app/models/conversation"
)

func TestMessageAppendAndHistoryOrder(t *testing.T) {
	setupTestDB(t)
	repo := NewMessageRepository()
	ctx := context.Background()
	scope := conversation.PersonalScope("user-1")

	_, err := repo.Append(ctx, scope, conversation.RoleUser, "第一个问题", "")
	require.NoError(t, err)
	_, err = repo.Append(ctx, scope, conversation.RoleAssistant, "第一个回答", "")
	require.NoError(t, err)
	_, err = repo.Append(ctx, scope, conversation.RoleUser, "第二个问题", "")
	require.NoError(t, err)

	history, err := repo.History(ctx, scope, 50)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// 从旧到新排列
	assert.Equal(t, "第一个问题", history[0].Content)
	assert.Equal(t, "第一个回答", history[1].Content)
	assert.Equal(t, "第二个问题", history[2].Content)
	assert.True(t, history[0].ID < history[1].ID)
	assert.True(t, history[1].ID < history[2].ID)
}

func TestMessageHistoryReturnsLatestN(t *testing.T) {
	setupTestDB(t)
	repo := NewMessageRepository()
	ctx := context.Background()
	scope := conversation.PersonalScope("user-1")

	for i := 1; i <= 10; i++ {
		_, err := repo.Append(ctx, scope, conversation.RoleUser, fmt.Sprintf("消息 %d", i), "")
		require.NoError(t, err)
	}

	history, err := repo.History(ctx, scope, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// 取最近 3 条，仍按从旧到新排列
	assert.Equal(t, "消息 8", history[0].Content)
	assert.Equal(t, "消息 9", history[1].Content)
	assert.Equal(t, "消息 10", history[2].Content)
}

func TestMessageHistoryEmptyScope(t *testing.T) {
	setupTestDB(t)
	repo := NewMessageRepository()

	history, err := repo.History(context.Background(), conversation.PersonalScope("nobody"), 50)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMessageHistoryScopeIsolation(t *testing.T) {
	setupTestDB(t)
	repo := NewMessageRepository()
	ctx := context.Background()

	_, err := repo.Append(ctx, conversation.PersonalScope("user-1"), conversation.RoleUser, "个人问题", "")
	require.NoError(t, err)
	_, err = repo.Append(ctx, conversation.PartnerScope("partner-1"), conversation.RoleUser, "伴侣问题", "user-1")
	require.NoError(t, err)

	personal, err := repo.History(ctx, conversation.PersonalScope("user-1"), 50)
	require.NoError(t, err)
	require.Len(t, personal, 1)
	assert.Equal(t, "个人问题", personal[0].Content)

	partner, err := repo.History(ctx, conversation.PartnerScope("partner-1"), 50)
	require.NoError(t, err)
	require.Len(t, partner, 1)
	assert.Equal(t, "伴侣问题", partner[0].Content)
	assert.Equal(t, "user-1", partner[0].AskerID)
}
