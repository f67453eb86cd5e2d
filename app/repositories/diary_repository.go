package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"luna/app/models/diary"
	"luna/pkg/database"
)

// DiaryRepository 心情日记仓库
type DiaryRepository struct {
	db *gorm.DB
}

// NewDiaryRepository 创建仓库实例
func NewDiaryRepository() *DiaryRepository {
	return &DiaryRepository{
		db: database.DB,
	}
}

// Create 创建日记条目
func (r *DiaryRepository) Create(ctx context.Context, entry *diary.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create diary entry: %w", err)
	}
	return nil
}

// ListByIdentity 获取用户的日记条目，从新到旧排列
func (r *DiaryRepository) ListByIdentity(ctx context.Context, identityID string, limit int) ([]diary.Entry, error) {
	var entries []diary.Entry
	err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list diary entries: %w", err)
	}
	return entries, nil
}
