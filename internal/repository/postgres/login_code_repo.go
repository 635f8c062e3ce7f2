package postgres

import (
	"context"
	"time"

	"github.com/dom/musikkhylla/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type loginCodeRepository struct {
	db *gorm.DB
}

func NewLoginCodeRepository(db *gorm.DB) *loginCodeRepository {
	return &loginCodeRepository{db: db}
}

func (r *loginCodeRepository) Create(ctx context.Context, code *domain.LoginCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *loginCodeRepository) InvalidateUnused(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.LoginCode{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true)
	return result.RowsAffected, result.Error
}

func (r *loginCodeRepository) FindUnused(ctx context.Context, userID uuid.UUID, code string) (*domain.LoginCode, error) {
	var loginCode domain.LoginCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code = ? AND used = ?", userID, code, false).
		Order("created_at DESC").
		First(&loginCode).Error
	if err != nil {
		return nil, err
	}
	return &loginCode, nil
}

func (r *loginCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.LoginCode{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	return result.RowsAffected == 1, result.Error
}

func (r *loginCodeRepository) DeleteStale(ctx context.Context, cutoff, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ? AND (used = ? OR expires_at < ?)", cutoff, true, now).
		Delete(&domain.LoginCode{})
	return result.RowsAffected, result.Error
}
