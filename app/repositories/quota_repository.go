package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"luna/app/models/conversation"
	"luna/app/models/quota"
	"luna/pkg/app"
	"luna/pkg/database"
)

// QuotaRepository 每日提问配额仓库
type QuotaRepository struct {
	db *gorm.DB
}

// NewQuotaRepository 创建仓库实例
func NewQuotaRepository() *QuotaRepository {
	return &QuotaRepository{
		db: database.DB,
	}
}

// CountToday 获取指定会话范围今日已接受的提问数
// 当天没有计数行时返回 0
func (r *QuotaRepository) CountToday(ctx context.Context, scope conversation.Scope) (int, error) {
	var row quota.DailyQuestionCount
	err := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ? AND for_date = ?", scope.Type, scope.ID, todayString()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("count today quota: %w", err)
	}
	return row.QuestionCount, nil
}

// TryConsume 原子地校验并消耗一次今日配额
//
// 校验与自增必须是同一条语句，否则两个并发请求都会拿到
// 过期的计数从而超发配额。这里用条件 upsert 实现：
// 首问插入计数 1，后续在 count < ceiling 时才自增并返回新值，
// 达到上限时语句不返回行、不产生任何变更。
//
// 返回值：是否接受、当前计数（接受时为自增后的值）
func (r *QuotaRepository) TryConsume(ctx context.Context, scope conversation.Scope, ceiling int) (bool, int, error) {
	// 上限为 0 时恒拒绝，不落任何行
	if ceiling <= 0 {
		count, err := r.CountToday(ctx, scope)
		return false, count, err
	}

	var newCount int
	result := r.db.WithContext(ctx).Raw(`
		INSERT INTO daily_question_counts (id, scope_type, scope_id, for_date, question_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT (scope_type, scope_id, for_date)
		DO UPDATE SET question_count = daily_question_counts.question_count + 1
		WHERE daily_question_counts.question_count < ?
		RETURNING question_count`,
		uuid.New().String(), scope.Type, scope.ID, todayString(), ceiling,
	).Scan(&newCount)

	if result.Error != nil {
		return false, 0, fmt.Errorf("consume quota: %w", result.Error)
	}

	// 没有返回行说明已达上限，未发生自增
	if result.RowsAffected == 0 {
		count, err := r.CountToday(ctx, scope)
		return false, count, err
	}

	return true, newCount, nil
}

// todayString 按应用时区取今天的日期键
func todayString() string {
	return app.TimenowInTimezone().Format("2006-01-02")
}
