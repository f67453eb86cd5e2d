package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTurnsPairsQuestionsWithAnswers(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "问题一", AskerID: "user-1"},
		{Role: RoleAssistant, Content: "回答一"},
		{Role: RoleUser, Content: "问题二", AskerID: "user-2"},
		{Role: RoleAssistant, Content: "回答二"},
	}

	turns := BuildTurns(messages)
	require.Len(t, turns, 2)

	assert.Equal(t, "问题一", turns[0].Question)
	assert.Equal(t, "回答一", turns[0].Answer)
	assert.Equal(t, "user-1", turns[0].AskerID)

	assert.Equal(t, "问题二", turns[1].Question)
	assert.Equal(t, "回答二", turns[1].Answer)
	assert.Equal(t, "user-2", turns[1].AskerID)
}

func TestBuildTurnsKeepsUnansweredQuestion(t *testing.T) {
	// 流式生成失败时问题已落库但没有回答
	messages := []Message{
		{Role: RoleUser, Content: "问题一"},
		{Role: RoleUser, Content: "问题二"},
		{Role: RoleAssistant, Content: "只回答了第二个"},
	}

	turns := BuildTurns(messages)
	require.Len(t, turns, 2)

	assert.Equal(t, "问题一", turns[0].Question)
	assert.Empty(t, turns[0].Answer)

	// 回答只配给最近的未回答轮次
	assert.Equal(t, "问题二", turns[1].Question)
	assert.Equal(t, "只回答了第二个", turns[1].Answer)
}

func TestBuildTurnsEmptyLog(t *testing.T) {
	assert.Empty(t, BuildTurns(nil))
}
