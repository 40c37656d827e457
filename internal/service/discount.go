package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultDiscountPercentage = 10
	discountCodePrefix        = "DISCOUNT"
	mintAttempts              = 5
)

// DiscountLedger issues single-use percentage codes.
type DiscountLedger struct {
	Repo       repo.Store
	Percentage int
	NewCode    func() string
	Now        func() time.Time
	Events     EventPublisher
}

// randomCode returns DISCOUNT followed by 8 random upper-case hex digits.
func randomCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return discountCodePrefix + strings.ToUpper(hex[:8])
}

func (l *DiscountLedger) percentage() int {
	if l.Percentage > 0 {
		return l.Percentage
	}
	return DefaultDiscountPercentage
}

func (l *DiscountLedger) MintCode(ctx context.Context) (*models.DiscountCode, error) {
	var dc *models.DiscountCode
	err := l.Repo.InTx(ctx, func(q repo.Queries) error {
		var err error
		dc, err = l.mintWith(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, l.Events, []event{mintedEvent(dc, "")})
	return dc, nil
}

func (l *DiscountLedger) mintWith(ctx context.Context, q repo.Queries) (*models.DiscountCode, error) {
	gen := l.NewCode
	if gen == nil {
		gen = randomCode
	}

	for i := 0; i < mintAttempts; i++ {
		code := gen()
		_, err := q.GetDiscountCode(ctx, code)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		dc := &models.DiscountCode{
			Code:       code,
			Percentage: l.percentage(),
			CreatedAt:  now(l.Now),
		}
		if err := q.CreateDiscountCode(ctx, dc); err != nil {
			return nil, err
		}
		return dc, nil
	}
	return nil, fmt.Errorf("no unique discount code after %d attempts", mintAttempts)
}

// Validate reports whether code exists and is unused. It does not mutate.
func (l *DiscountLedger) Validate(ctx context.Context, code string) (*models.DiscountCode, error) {
	return l.validateWith(ctx, l.Repo, code)
}

func (l *DiscountLedger) validateWith(ctx context.Context, q repo.Queries, code string) (*models.DiscountCode, error) {
	dc, err := q.GetDiscountCode(ctx, code)
	if err != nil {
		return nil, notFound(err, "discount code")
	}
	if dc.IsUsed {
		return nil, fmt.Errorf("discount code %s: %w", code, ErrDiscountAlreadyUsed)
	}
	return dc, nil
}

// Redeem consumes code. Of any number of concurrent callers exactly one
// succeeds; the others get ErrDiscountAlreadyUsed.
func (l *DiscountLedger) Redeem(ctx context.Context, code string) error {
	return l.redeemWith(ctx, l.Repo, code)
}

func (l *DiscountLedger) redeemWith(ctx context.Context, q repo.Queries, code string) error {
	err := q.RedeemDiscountCode(ctx, code, now(l.Now))
	if !errors.Is(err, repo.ErrConflict) {
		return err
	}
	if _, err := q.GetDiscountCode(ctx, code); err != nil {
		return notFound(err, "discount code")
	}
	return fmt.Errorf("discount code %s: %w", code, ErrDiscountAlreadyUsed)
}

func (l *DiscountLedger) ListAll(ctx context.Context) ([]models.DiscountCode, error) {
	return l.Repo.ListDiscountCodes(ctx)
}
