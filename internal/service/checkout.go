package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutService turns a cart into an order in a single transaction.
type CheckoutService struct {
	Repo    repo.Store
	Ledger  *DiscountLedger
	Counter *OrderCounter
	Events  EventPublisher
	Now     func() time.Time
}

func (s *CheckoutService) Checkout(ctx context.Context, req transport.CheckoutRequest) (*models.Order, error) {
	req.CartID = strings.TrimSpace(req.CartID)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.DiscountCode = strings.TrimSpace(req.DiscountCode)

	switch {
	case req.CartID == "":
		return nil, fmt.Errorf("cart_id required: %w", ErrInvalidArgument)
	case req.CustomerName == "":
		return nil, fmt.Errorf("customer_name required: %w", ErrInvalidArgument)
	case req.CustomerEmail == "":
		return nil, fmt.Errorf("customer_email required: %w", ErrInvalidArgument)
	}

	var (
		order  *models.Order
		minted *models.DiscountCode
	)
	err := s.Repo.InTx(ctx, func(q repo.Queries) error {
		var err error
		order, minted, err = s.checkout(ctx, q, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, s.events(order, minted))
	return order, nil
}

func (s *CheckoutService) checkout(ctx context.Context, q repo.Queries, req transport.CheckoutRequest) (*models.Order, *models.DiscountCode, error) {
	ts := now(s.Now)

	if err := s.claimCart(ctx, q, req.CartID, ts); err != nil {
		return nil, nil, err
	}
	cart, err := q.GetCart(ctx, req.CartID)
	if err != nil {
		return nil, nil, err
	}
	if len(cart.Items) == 0 {
		return nil, nil, fmt.Errorf("cart %s has no items: %w", cart.ID, ErrEmptyCart)
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	subtotal := decimal.Zero
	for _, it := range cart.Items {
		p, err := q.GetProduct(ctx, it.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("product %s: %w", it.ProductID, ErrProductUnavailable)
		}
		if err != nil {
			return nil, nil, err
		}
		oi := models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
		}
		subtotal = subtotal.Add(oi.LineTotal())
		items = append(items, oi)
	}

	discount := decimal.Zero
	var code *string
	if req.DiscountCode != "" {
		dc, err := s.Ledger.validateWith(ctx, q, req.DiscountCode)
		if err != nil {
			return nil, nil, discountErr(err)
		}
		discount = subtotal.Mul(decimal.NewFromInt(int64(dc.Percentage))).Div(decimal.NewFromInt(100))
		if err := s.Ledger.redeemWith(ctx, q, dc.Code); err != nil {
			return nil, nil, discountErr(err)
		}
		code = &dc.Code
	}

	order := &models.Order{
		Items:          items,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		Subtotal:       subtotal,
		DiscountCode:   code,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount),
		CreatedAt:      ts,
	}

	n, err := q.IncrementOrderCounter(ctx)
	if err != nil {
		return nil, nil, err
	}
	order.OrderNumber = n
	if err := q.CreateOrder(ctx, order); err != nil {
		return nil, nil, err
	}

	var minted *models.DiscountCode
	if s.Counter.IsMilestone(n) {
		minted, err = s.Ledger.mintWith(ctx, q)
		if err != nil {
			return nil, nil, err
		}
		if err := q.SetGeneratedDiscountCode(ctx, order.ID, minted.Code); err != nil {
			return nil, nil, err
		}
		order.GeneratedDiscountCode = &minted.Code
	}

	return order, minted, nil
}

func (s *CheckoutService) claimCart(ctx context.Context, q repo.Queries, cartID string, ts time.Time) error {
	err := q.ClaimCart(ctx, cartID, ts)
	if !errors.Is(err, repo.ErrConflict) {
		return err
	}
	if _, err := q.GetCart(ctx, cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart %s does not exist: %w", cartID, ErrEmptyCart)
		}
		return err
	}
	return fmt.Errorf("cart %s: %w", cartID, ErrCartAlreadyCheckedOut)
}

func discountErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%v: %w", err, ErrInvalidDiscountCode)
	}
	return err
}

func (s *CheckoutService) events(order *models.Order, minted *models.DiscountCode) []event {
	evs := []event{{
		topic: TopicOrderEvents,
		key:   order.ID,
		body: map[string]any{
			"type":        "order_created",
			"orderID":     order.ID,
			"orderNumber": order.OrderNumber,
			"total":       order.Total,
			"items":       order.Items,
		},
	}}
	if order.DiscountCode != nil {
		evs = append(evs, event{
			topic: TopicDiscountEvents,
			key:   *order.DiscountCode,
			body: map[string]any{
				"type":    "discount_redeemed",
				"code":    *order.DiscountCode,
				"orderID": order.ID,
				"amount":  order.DiscountAmount,
			},
		})
	}
	if minted != nil {
		evs = append(evs, mintedEvent(minted, order.ID))
	}
	return evs
}

func mintedEvent(dc *models.DiscountCode, orderID string) event {
	body := map[string]any{
		"type":       "discount_minted",
		"code":       dc.Code,
		"percentage": dc.Percentage,
	}
	if orderID != "" {
		body["orderID"] = orderID
	}
	return event{topic: TopicDiscountEvents, key: dc.Code, body: body}
}
