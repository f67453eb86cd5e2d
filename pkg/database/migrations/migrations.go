package migrations

import (
	"luna/app/models/audio"
	"luna/app/models/conversation"
	"luna/app/models/diary"
	"luna/app/models/identity"
	"luna/app/models/partner"
	"luna/app/models/quota"
)

// RegisterTables 返回需要迁移的表的模型列表
func RegisterTables() []interface{} {
	return []interface{}{
		&identity.Identity{},
		&conversation.Message{},
		&quota.DailyQuestionCount{},
		&partner.Partner{},
		&audio.DailyAudio{},
		&diary.Entry{},
	}
}
