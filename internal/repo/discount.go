package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateDiscountCode(ctx context.Context, code *models.DiscountCode) error {
	return r.DB.WithContext(ctx).Create(code).Error
}

func (r *GormRepo) GetDiscountCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	if err := r.DB.WithContext(ctx).Where("code = ?", code).First(&dc).Error; err != nil {
		return nil, err
	}
	return &dc, nil
}

// RedeemDiscountCode flips is_used from false to true. A code that is
// missing or already used yields ErrConflict.
func (r *GormRepo) RedeemDiscountCode(ctx context.Context, code string, now time.Time) error {
	res := r.DB.WithContext(ctx).
		Model(&models.DiscountCode{}).
		Where("code = ? AND is_used = ?", code, false).
		Updates(map[string]any{"is_used": true, "used_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *GormRepo) ListDiscountCodes(ctx context.Context) ([]models.DiscountCode, error) {
	var codes []models.DiscountCode
	if err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
