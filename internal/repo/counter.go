package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

// IncrementOrderCounter adds one to the counter row and returns the new
// value. Called inside a transaction the row stays locked until commit, so
// no two callers can observe the same value.
func (r *GormRepo) IncrementOrderCounter(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.OrderCounter{}).
		Where("id = ?", models.CounterRowID).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return r.CurrentOrderCount(ctx)
}

func (r *GormRepo) CurrentOrderCount(ctx context.Context) (int64, error) {
	var counter models.OrderCounter
	if err := r.DB.WithContext(ctx).Where("id = ?", models.CounterRowID).First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}
