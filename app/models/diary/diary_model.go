// Package diary 心情日记 Model 相关逻辑
package diary

import (
	"luna/app/models"
)

// 心情枚举
const (
	MoodAnxious    = "ansiosa"
	MoodHappy      = "feliz"
	MoodConfused   = "confusa"
	MoodSad        = "triste"
	MoodAngry      = "com_raiva"
	MoodPassionate = "apaixonada"
)

// Moods 全部心情标识
var Moods = []string{MoodAnxious, MoodHappy, MoodConfused, MoodSad, MoodAngry, MoodPassionate}

// Entry 日记条目模型
type Entry struct {
	ID              string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	IdentityID      string `gorm:"type:varchar(36);index" json:"identity_id"`
	Content         string `gorm:"type:text" json:"content"`
	Mood            string `gorm:"type:varchar(20)" json:"mood,omitempty"`
	AIResponse      string `gorm:"type:text" json:"ai_response,omitempty"`
	PatternDetected string `gorm:"type:text" json:"pattern_detected,omitempty"`

	models.CommonTimestampsField
}

// TableName 表名
func (Entry) TableName() string {
	return "diary_entries"
}
