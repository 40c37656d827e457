package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrInvalidDiscountCode   = errors.New("invalid discount code")
	ErrDiscountAlreadyUsed   = errors.New("discount code already used")
	ErrProductUnavailable    = errors.New("product unavailable")
	ErrCartAlreadyCheckedOut = errors.New("cart already checked out")
)

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	}
	return err
}

func now(f func() time.Time) time.Time {
	if f != nil {
		return f()
	}
	return time.Now().UTC()
}
