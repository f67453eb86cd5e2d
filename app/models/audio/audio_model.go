// Package audio 每日音频 Model 相关逻辑
package audio

import (
	"luna/app/models"
)

// DailyAudio 每日音频模型
// 文稿由后台任务通过 AI 生成，每个用户每天至多一条
type DailyAudio struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	IdentityID  string `gorm:"type:varchar(36);index:idx_audios_identity_date" json:"identity_id"`
	TaskID      string `gorm:"type:varchar(36);uniqueIndex" json:"task_id"`
	ForDate     string `gorm:"type:varchar(10);index:idx_audios_identity_date" json:"for_date"`
	Transcript  string `gorm:"type:text" json:"transcript"`
	AudioURL    string `gorm:"type:text" json:"audio_url,omitempty"`
	AudioBase64 string `gorm:"type:text" json:"audio_base64,omitempty"`
	Listened    bool   `gorm:"default:false" json:"listened"`

	models.CommonTimestampsField
}

// TableName 表名
func (DailyAudio) TableName() string {
	return "daily_audios"
}
