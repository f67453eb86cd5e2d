// Package quota 每日提问配额计数
package quota

// DailyQuestionCount 每日提问计数模型
// 每个（会话范围，日期）一行；当天无记录等价于计数 0。
// 计数只增不减，跨天自然清零（新的日期没有行）。
type DailyQuestionCount struct {
	ID            string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ScopeType     string `gorm:"type:varchar(20);uniqueIndex:idx_quota_scope_date" json:"-"`
	ScopeID       string `gorm:"type:varchar(36);uniqueIndex:idx_quota_scope_date" json:"-"`
	ForDate       string `gorm:"type:varchar(10);uniqueIndex:idx_quota_scope_date" json:"for_date"`
	QuestionCount int    `gorm:"default:0" json:"question_count"`
}

// TableName 表名
func (DailyQuestionCount) TableName() string {
	return "daily_question_counts"
}
