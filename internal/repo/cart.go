package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) CreateCart(ctx context.Context) (*models.Cart, error) {
	cart := &models.Cart{Items: []models.CartItem{}}
	if err := r.DB.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *GormRepo) GetCart(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// TouchCart bumps updated_at on an open cart. It returns ErrConflict when the
// cart does not exist or is already checked out, and takes the row lock that
// ClaimCart contends on.
func (r *GormRepo) TouchCart(ctx context.Context, id string, now time.Time) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND checked_out_at IS NULL", id).
		Update("updated_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// ClaimCart marks an open cart as checked out. Exactly one caller wins.
func (r *GormRepo) ClaimCart(ctx context.Context, id string, now time.Time) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND checked_out_at IS NULL", id).
		Updates(map[string]any{"checked_out_at": now, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *GormRepo) SetCartItem(ctx context.Context, cartID, productID string, quantity uint) error {
	return r.upsertCartItem(ctx, cartID, productID, quantity, quantity)
}

func (r *GormRepo) AddCartItem(ctx context.Context, cartID, productID string, quantity uint) error {
	return r.upsertCartItem(ctx, cartID, productID, quantity, gorm.Expr("quantity + ?", quantity))
}

func (r *GormRepo) upsertCartItem(ctx context.Context, cartID, productID string, quantity uint, update any) error {
	res := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", update)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return r.DB.WithContext(ctx).Create(&item).Error
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, cartID, productID string) error {
	return r.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}
