package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"luna/app/models/identity"
	"luna/pkg/database"
	"luna/pkg/zodiac"
)

// IdentityRepository 用户账号仓库
type IdentityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository 创建仓库实例
func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{
		db: database.DB,
	}
}

// Create 创建用户，注册时根据出生日期计算太阳星座
func (r *IdentityRepository) Create(ctx context.Context, ident *identity.Identity) error {
	if ident.ID == "" {
		ident.ID = uuid.New().String()
	}
	if ident.SunSign == "" {
		ident.SunSign = zodiac.SunSign(ident.BirthDate)
	}

	if err := r.db.WithContext(ctx).Create(ident).Error; err != nil {
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

// GetByID 按主键获取用户，不存在时返回 nil
func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*identity.Identity, error) {
	var ident identity.Identity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return &ident, nil
}

// GetByEmail 按邮箱获取用户，不存在时返回 nil
func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	var ident identity.Identity
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&ident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get identity by email: %w", err)
	}
	return &ident, nil
}

// GetByWhatsapp 按 WhatsApp 号获取用户，不存在时返回 nil
func (r *IdentityRepository) GetByWhatsapp(ctx context.Context, whatsapp string) (*identity.Identity, error) {
	var ident identity.Identity
	err := r.db.WithContext(ctx).Where("whatsapp = ?", whatsapp).First(&ident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get identity by whatsapp: %w", err)
	}
	return &ident, nil
}

// Update 局部更新用户资料，返回更新后的记录
func (r *IdentityRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*identity.Identity, error) {
	// 出生日期变更时重算太阳星座
	if birthDate, ok := updates["birth_date"].(string); ok && birthDate != "" {
		updates["sun_sign"] = zodiac.SunSign(birthDate)
	}

	result := r.db.WithContext(ctx).
		Model(&identity.Identity{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update identity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}
