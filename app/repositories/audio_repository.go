package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"luna/app/models/audio"
	"luna/pkg/database"
)

// AudioRepository 每日音频仓库
type AudioRepository struct {
	db *gorm.DB
}

// NewAudioRepository 创建仓库实例
func NewAudioRepository() *AudioRepository {
	return &AudioRepository{
		db: database.DB,
	}
}

// Create 保存音频记录
func (r *AudioRepository) Create(ctx context.Context, a *audio.DailyAudio) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create daily audio: %w", err)
	}
	return nil
}

// GetByIdentityAndDate 获取用户某天的音频，没有时返回 nil
func (r *AudioRepository) GetByIdentityAndDate(ctx context.Context, identityID, forDate string) (*audio.DailyAudio, error) {
	var a audio.DailyAudio
	err := r.db.WithContext(ctx).
		Where("identity_id = ? AND for_date = ?", identityID, forDate).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get daily audio: %w", err)
	}
	return &a, nil
}

// MarkListened 标记音频为已收听
func (r *AudioRepository) MarkListened(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Model(&audio.DailyAudio{}).
		Where("id = ?", id).
		Update("listened", true).Error
	if err != nil {
		return fmt.Errorf("mark audio listened: %w", err)
	}
	return nil
}
