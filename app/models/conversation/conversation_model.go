// Package conversation 对话消息与会话范围
//
// 个人聊天和伴侣问答共用同一套消息日志，仅以 scope 区分。
// 消息一经写入不可修改，按自增主键恢复写入顺序。
package conversation

import (
	"luna/app/models"
)

// ScopeType 会话范围类型
type ScopeType string

const (
	ScopePersonal ScopeType = "personal" // 个人聊天，按用户维度
	ScopePartner  ScopeType = "partner"  // 伴侣问答，按伴侣维度
)

// Scope 会话范围，配额计数和消息日志都以此为键
type Scope struct {
	Type ScopeType
	ID   string
}

// PersonalScope 用户个人聊天范围
func PersonalScope(identityID string) Scope {
	return Scope{Type: ScopePersonal, ID: identityID}
}

// PartnerScope 伴侣问答范围
func PartnerScope(partnerID string) Scope {
	return Scope{Type: ScopePartner, ID: partnerID}
}

// 消息角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 对话消息模型
type Message struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ScopeType string `gorm:"type:varchar(20);index:idx_messages_scope" json:"-"`
	ScopeID   string `gorm:"type:varchar(36);index:idx_messages_scope" json:"-"`
	AskerID   string `gorm:"type:varchar(36)" json:"asker_id,omitempty"` // 伴侣范围下的提问用户
	Role      string `gorm:"type:varchar(20)" json:"role"`
	Content   string `gorm:"type:text" json:"content"`

	models.CommonTimestampsField
}

// TableName 表名
func (Message) TableName() string {
	return "messages"
}
