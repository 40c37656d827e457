package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/repo"
)

const DefaultMilestoneEvery = 10

// OrderCounter counts completed orders; every Every-th order is a milestone.
type OrderCounter struct {
	Repo  repo.Store
	Every int64
}

func (c *OrderCounter) IncrementAndGet(ctx context.Context) (int64, error) {
	var n int64
	err := c.Repo.InTx(ctx, func(q repo.Queries) error {
		var err error
		n, err = q.IncrementOrderCounter(ctx)
		return err
	})
	return n, err
}

func (c *OrderCounter) Current(ctx context.Context) (int64, error) {
	return c.Repo.CurrentOrderCount(ctx)
}

func (c *OrderCounter) IsMilestone(n int64) bool {
	every := c.Every
	if every <= 0 {
		every = DefaultMilestoneEvery
	}
	return n > 0 && n%every == 0
}
