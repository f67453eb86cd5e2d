package conversation

import "time"

// Turn 一轮问答，用于伴侣问答的历史展示
type Turn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	AskerID   string    `json:"asker_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BuildTurns 将按写入顺序排列的消息日志折叠为问答轮次
// 一条 user 消息开启新的一轮，其后首条 assistant 消息作为回答；
// 流式生成失败时可能出现没有回答的轮次，保留空 answer
func BuildTurns(messages []Message) []Turn {
	turns := make([]Turn, 0, len(messages)/2)

	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			turns = append(turns, Turn{
				Question:  m.Content,
				AskerID:   m.AskerID,
				CreatedAt: m.CreatedAt,
			})
		case RoleAssistant:
			if len(turns) > 0 && turns[len(turns)-1].Answer == "" {
				turns[len(turns)-1].Answer = m.Content
			}
		}
	}

	return turns
}
