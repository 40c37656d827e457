package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartService tracks product ids and quantities per cart. Prices are never
// stored on a cart; views resolve them from the catalog on read.
type CartService struct {
	Repo repo.Store
	// Policy decides whether a checked-out cart is still readable.
	Policy string
	Now    func() time.Time
}

// CreateOrGetCart returns the open cart with the given id, or a new empty
// cart when the id is blank, unknown or already checked out.
func (s *CartService) CreateOrGetCart(ctx context.Context, id string) (*models.Cart, error) {
	if id != "" {
		cart, err := s.Repo.GetCart(ctx, id)
		if err == nil && !cart.CheckedOut() {
			return cart, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return s.Repo.CreateCart(ctx)
}

func (s *CartService) GetCart(ctx context.Context, id string) (*models.Cart, error) {
	cart, err := s.Repo.GetCart(ctx, id)
	if err != nil {
		return nil, notFound(err, "cart")
	}
	if cart.CheckedOut() && s.Policy == config.CartPolicyInvalidate {
		return nil, fmt.Errorf("cart not found: %w", ErrNotFound)
	}
	return cart, nil
}

// AddItem increases a line's quantity, allocating a cart when needed.
func (s *CartService) AddItem(ctx context.Context, cartID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrInvalidArgument)
	}
	if productID == "" {
		return nil, fmt.Errorf("product_id required: %w", ErrInvalidArgument)
	}
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, notFound(err, "product")
	}

	cart, err := s.CreateOrGetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	err = s.Repo.InTx(ctx, func(q repo.Queries) error {
		if err := s.touch(ctx, q, cart.ID); err != nil {
			return err
		}
		return q.AddCartItem(ctx, cart.ID, productID, uint(quantity))
	})
	if err != nil {
		return nil, err
	}
	return s.Repo.GetCart(ctx, cart.ID)
}

// SetItemQuantity sets a line to exactly quantity; zero removes the line.
func (s *CartService) SetItemQuantity(ctx context.Context, cartID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", ErrInvalidArgument)
	}
	if cartID == "" || productID == "" {
		return nil, fmt.Errorf("cart id and product id required: %w", ErrInvalidArgument)
	}

	err := s.Repo.InTx(ctx, func(q repo.Queries) error {
		if err := s.touch(ctx, q, cartID); err != nil {
			return err
		}
		if quantity == 0 {
			return q.DeleteCartItem(ctx, cartID, productID)
		}
		if _, err := q.GetProduct(ctx, productID); err != nil {
			return notFound(err, "product")
		}
		return q.SetCartItem(ctx, cartID, productID, uint(quantity))
	})
	if err != nil {
		return nil, err
	}
	return s.Repo.GetCart(ctx, cartID)
}

func (s *CartService) RemoveItem(ctx context.Context, cartID, productID string) (*models.Cart, error) {
	return s.SetItemQuantity(ctx, cartID, productID, 0)
}

// touch claims the cart row for a mutation and tells apart a missing cart
// from one that has been checked out.
func (s *CartService) touch(ctx context.Context, q repo.Queries, cartID string) error {
	err := q.TouchCart(ctx, cartID, now(s.Now))
	if !errors.Is(err, repo.ErrConflict) {
		return err
	}
	if _, err := q.GetCart(ctx, cartID); err != nil {
		return notFound(err, "cart")
	}
	return fmt.Errorf("cart %s: %w", cartID, ErrCartAlreadyCheckedOut)
}

// View joins cart lines with current catalog data. Lines whose product has
// left the catalog are shown as unavailable and excluded from the subtotal.
func (s *CartService) View(ctx context.Context, cart *models.Cart) (*transport.CartView, error) {
	view := &transport.CartView{
		ID:         cart.ID,
		Items:      make([]transport.CartItemView, 0, len(cart.Items)),
		Subtotal:   decimal.Zero,
		CheckedOut: cart.CheckedOut(),
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
	}

	for _, it := range cart.Items {
		line := transport.CartItemView{ProductID: it.ProductID, Quantity: it.Quantity}

		p, err := s.Repo.GetProduct(ctx, it.ProductID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return nil, err
		default:
			line.Name = p.Name
			line.Price = p.Price
			line.Image = p.Image
			line.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			line.Available = true
			view.Subtotal = view.Subtotal.Add(line.LineTotal)
		}
		view.Items = append(view.Items, line)
	}
	return view, nil
}
