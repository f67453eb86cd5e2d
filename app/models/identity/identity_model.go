// Package identity 存放用户账号 Model 相关逻辑
package identity

import (
	"luna/app/models"
)

// Identity 用户账号模型
type Identity struct {
	ID                 string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email              string `gorm:"unique;type:varchar(255)" json:"email"`
	Whatsapp           string `gorm:"unique;type:varchar(30)" json:"whatsapp"`
	FullName           string `gorm:"type:varchar(100)" json:"full_name"`
	BirthDate          string `gorm:"type:varchar(10)" json:"birth_date"` // 格式 2006-01-02
	BirthTime          string `gorm:"type:varchar(5)" json:"birth_time,omitempty"`
	BirthCity          string `gorm:"type:varchar(100)" json:"birth_city"`
	BirthState         string `gorm:"type:varchar(50)" json:"birth_state,omitempty"`
	VoicePreference    string `gorm:"type:varchar(20);default:feminine" json:"voice_preference"`
	NotificationTime   string `gorm:"type:varchar(5);default:08:00" json:"notification_time"`
	ProfilePhotoBase64 string `gorm:"type:text" json:"profile_photo_base64,omitempty"`
	Plan               string `gorm:"type:varchar(20);index;default:essencia" json:"plan"`
	SunSign            string `gorm:"type:varchar(20)" json:"sun_sign"`
	MoonSign           string `gorm:"type:varchar(20)" json:"moon_sign,omitempty"`
	AscendantSign      string `gorm:"type:varchar(20)" json:"ascendant_sign,omitempty"`
	TermsAccepted      bool   `gorm:"default:false" json:"terms_accepted"`

	models.CommonTimestampsField
}

// TableName 表名
func (Identity) TableName() string {
	return "identities"
}
