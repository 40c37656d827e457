package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/shopspring/decimal"
)

// StatsService rolls up orders and discount codes for the admin view.
// Nothing is cached.
type StatsService struct {
	Repo   repo.Store
	Ledger *DiscountLedger
}

func (s *StatsService) Stats(ctx context.Context) (*transport.AdminStats, error) {
	orders, err := s.Repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	codes, err := s.Ledger.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &transport.AdminStats{
		TotalOrders:         int64(len(orders)),
		TotalPurchaseAmount: decimal.Zero,
		TotalDiscountAmount: decimal.Zero,
		DiscountCodes:       codes,
	}
	for _, o := range orders {
		for _, it := range o.Items {
			stats.TotalItemsPurchased += int64(it.Quantity)
		}
		stats.TotalPurchaseAmount = stats.TotalPurchaseAmount.Add(o.Total)
		stats.TotalDiscountAmount = stats.TotalDiscountAmount.Add(o.DiscountAmount)
	}
	return stats, nil
}
