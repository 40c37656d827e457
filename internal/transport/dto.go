package transport

import (
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/shopspring/decimal"
)

type AddToCartRequest struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity"   validate:"omitempty,min=1"`
}

type CartItemView struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  uint            `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Available bool            `json:"available"`
}

type CartView struct {
	ID         string          `json:"id"`
	Items      []CartItemView  `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	CheckedOut bool            `json:"checked_out"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type AddToCartResponse struct {
	CartID string    `json:"cart_id"`
	Cart   *CartView `json:"cart"`
}

type CartResponse struct {
	Message string    `json:"message,omitempty"`
	Cart    *CartView `json:"cart"`
}

type CheckoutRequest struct {
	CartID        string `json:"cart_id"        validate:"required"`
	CustomerName  string `json:"customer_name"  validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	DiscountCode  string `json:"discount_code"`
}

type AdminStats struct {
	TotalOrders         int64                 `json:"total_orders"`
	TotalItemsPurchased int64                 `json:"total_items_purchased"`
	TotalPurchaseAmount decimal.Decimal       `json:"total_purchase_amount"`
	TotalDiscountAmount decimal.Decimal       `json:"total_discount_amount"`
	DiscountCodes       []models.DiscountCode `json:"discount_codes"`
}

type GenerateDiscountResponse struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	Percentage int    `json:"percentage"`
}

type ProductSearchResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Size     int              `json:"size"`
	Products []models.Product `json:"products"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
