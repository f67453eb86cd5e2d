// Package partner 伴侣档案 Model 相关逻辑
package partner

import (
	"luna/app/models"
)

// Partner 伴侣档案模型
// 当前产品形态下每个用户至多一个伴侣（旧接口保留列表形式）
type Partner struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	IdentityID  string `gorm:"type:varchar(36);index" json:"identity_id"`
	Name        string `gorm:"type:varchar(100)" json:"name"`
	BirthDate   string `gorm:"type:varchar(10)" json:"birth_date"`
	BirthTime   string `gorm:"type:varchar(5)" json:"birth_time,omitempty"`
	BirthCity   string `gorm:"type:varchar(100)" json:"birth_city"`
	BirthState  string `gorm:"type:varchar(50)" json:"birth_state,omitempty"`
	PhotoBase64 string `gorm:"type:text" json:"photo_base64,omitempty"`
	SunSign     string `gorm:"type:varchar(20)" json:"sun_sign"`

	// 契合度为占位内容，注册时随机生成，并非真实星盘计算
	CompatibilityScore     int    `gorm:"default:0" json:"compatibility_score"`
	CompatibilityBreakdown string `gorm:"type:text" json:"compatibility_breakdown,omitempty"`

	models.CommonTimestampsField
}

// TableName 表名
func (Partner) TableName() string {
	return "partners"
}
