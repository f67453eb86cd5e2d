package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"luna/app/models/partner"
	"luna/pkg/database"
	"luna/pkg/zodiac"
)

// PartnerRepository 伴侣档案仓库
type PartnerRepository struct {
	db *gorm.DB
}

// NewPartnerRepository 创建仓库实例
func NewPartnerRepository() *PartnerRepository {
	return &PartnerRepository{
		db: database.DB,
	}
}

// Create 创建伴侣档案
func (r *PartnerRepository) Create(ctx context.Context, p *partner.Partner) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.SunSign == "" {
		p.SunSign = zodiac.SunSign(p.BirthDate)
	}

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create partner: %w", err)
	}
	return nil
}

// GetByID 按主键获取伴侣档案，不存在时返回 nil
func (r *PartnerRepository) GetByID(ctx context.Context, id string) (*partner.Partner, error) {
	var p partner.Partner
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get partner: %w", err)
	}
	return &p, nil
}

// GetByIdentity 获取用户当前的伴侣档案，没有时返回 nil
func (r *PartnerRepository) GetByIdentity(ctx context.Context, identityID string) (*partner.Partner, error) {
	var p partner.Partner
	err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("created_at ASC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get partner by identity: %w", err)
	}
	return &p, nil
}

// ListByIdentity 获取用户的全部伴侣档案（旧接口）
func (r *PartnerRepository) ListByIdentity(ctx context.Context, identityID string) ([]partner.Partner, error) {
	var partners []partner.Partner
	err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("created_at ASC").
		Find(&partners).Error
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	return partners, nil
}

// Update 局部更新伴侣档案，返回更新后的记录
func (r *PartnerRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*partner.Partner, error) {
	result := r.db.WithContext(ctx).
		Model(&partner.Partner{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update partner: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}
