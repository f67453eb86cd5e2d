package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna/app/models/conversation"
)

func TestQuotaTryConsumeUpToCeiling(t *testing.T) {
	setupTestDB(t)
	repo := NewQuotaRepository()
	ctx := context.Background()
	scope := conversation.PersonalScope("user-1")

	for i := 1; i <= 3; i++ {
		accepted, count, err := repo.TryConsume(ctx, scope, 3)
		require.NoError(t, err)
		assert.True(t, accepted)
		assert.Equal(t, i, count)
	}

	// 第四次提问应被拒绝，计数保持不变
	accepted, count, err := repo.TryConsume(ctx, scope, 3)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, 3, count)

	today, err := repo.CountToday(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 3, today)
}

func TestQuotaZeroCeilingAlwaysRejects(t *testing.T) {
	setupTestDB(t)
	repo := NewQuotaRepository()
	ctx := context.Background()
	scope := conversation.PersonalScope("user-1")

	accepted, count, err := repo.TryConsume(ctx, scope, 0)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, 0, count)

	// 拒绝不落任何计数行
	today, err := repo.CountToday(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 0, today)
}

func TestQuotaScopesCountedIndependently(t *testing.T) {
	setupTestDB(t)
	repo := NewQuotaRepository()
	ctx := context.Background()

	// 同一个 ID 在不同范围下互不影响
	personal := conversation.PersonalScope("same-id")
	partner := conversation.PartnerScope("same-id")

	accepted, _, err := repo.TryConsume(ctx, personal, 1)
	require.NoError(t, err)
	require.True(t, accepted)

	accepted, count, err := repo.TryConsume(ctx, partner, 1)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, 1, count)
}

func TestQuotaConcurrentConsumeNeverOversells(t *testing.T) {
	setupTestDB(t)
	repo := NewQuotaRepository()
	scope := conversation.PersonalScope("user-1")
	const ceiling = 5

	var wg sync.WaitGroup
	results := make(chan bool, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accepted, _, err := repo.TryConsume(context.Background(), scope, ceiling)
			if err != nil {
				// SQLite 并发写可能报 busy，只统计成功的消耗
				return
			}
			results <- accepted
		}()
	}
	wg.Wait()
	close(results)

	acceptedCount := 0
	for accepted := range results {
		if accepted {
			acceptedCount++
		}
	}
	assert.LessOrEqual(t, acceptedCount, ceiling)

	today, err := repo.CountToday(context.Background(), scope)
	require.NoError(t, err)
	assert.LessOrEqual(t, today, ceiling)
	assert.Equal(t, acceptedCount, today)
}
