package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"luna/app/models/conversation"
	"luna/pkg/database"
)

// MessageRepository 对话消息仓库
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建仓库实例
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{
		db: database.DB,
	}
}

// Append 追加一条不可变消息，返回带主键和时间戳的记录
func (r *MessageRepository) Append(ctx context.Context, scope conversation.Scope, role, content, askerID string) (*conversation.Message, error) {
	msg := &conversation.Message{
		ScopeType: string(scope.Type),
		ScopeID:   scope.ID,
		AskerID:   askerID,
		Role:      role,
		Content:   content,
	}

	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// History 获取指定会话范围的消息历史
// 结果按写入顺序从旧到新排列，最多返回最近 limit 条；
// 历史为空时返回空切片
func (r *MessageRepository) History(ctx context.Context, scope conversation.Scope, limit int) ([]conversation.Message, error) {
	var messages []conversation.Message

	// 先按主键倒序取最近 N 条，再反转回写入顺序
	err := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ?", scope.Type, scope.ID).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("message history: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
