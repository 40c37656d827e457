package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          string          `gorm:"primaryKey;size:36"          json:"id"`
	Name        string          `gorm:"not null"                    json:"name"`
	Description string          `gorm:"not null"                    json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Image       string          `json:"image"`
	Category    string          `gorm:"index"                       json:"category"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Cart struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Items        []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CheckedOutAt *time.Time `gorm:"index" json:"checked_out_at,omitempty"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c *Cart) CheckedOut() bool {
	return c.CheckedOutAt != nil
}

type CartItem struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"                         json:"-"`
	CartID    string `gorm:"size:36;uniqueIndex:idx_cart_product;not null"     json:"-"`
	ProductID string `gorm:"size:36;uniqueIndex:idx_cart_product;not null"     json:"product_id"`
	Quantity  uint   `gorm:"not null;check:quantity>0"                         json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type DiscountCode struct {
	Code       string     `gorm:"primaryKey;size:32" json:"code"`
	Percentage int        `gorm:"not null"           json:"percentage"`
	IsUsed     bool       `gorm:"not null;default:false;index" json:"is_used"`
	CreatedAt  time.Time  `json:"created_at"`
	UsedAt     *time.Time `json:"used_at"`
}

type Order struct {
	ID                    string          `gorm:"primaryKey;size:36"           json:"id"`
	OrderNumber           int64           `gorm:"uniqueIndex;not null"         json:"order_number"`
	Items                 []OrderItem     `gorm:"foreignKey:OrderID"           json:"items"`
	CustomerName          string          `gorm:"not null"                     json:"customer_name"`
	CustomerEmail         string          `gorm:"not null"                     json:"customer_email"`
	Subtotal              decimal.Decimal `gorm:"type:numeric(14,4);not null"  json:"subtotal"`
	DiscountCode          *string         `gorm:"size:32"                      json:"discount_code"`
	DiscountAmount        decimal.Decimal `gorm:"type:numeric(14,4);not null"  json:"discount_amount"`
	Total                 decimal.Decimal `gorm:"type:numeric(14,4);not null"  json:"total"`
	GeneratedDiscountCode *string         `gorm:"size:32"                      json:"generated_discount_code"`
	CreatedAt             time.Time       `json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem is the price-at-purchase snapshot of one cart line.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"    json:"-"`
	OrderID   string          `gorm:"size:36;index;not null"      json:"-"`
	ProductID string          `gorm:"size:36;not null"            json:"product_id"`
	Name      string          `gorm:"not null"                    json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity  uint            `gorm:"not null;check:quantity>0"   json:"quantity"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderCounter is a single-row table; CounterRowID is its only key.
type OrderCounter struct {
	ID    uint  `gorm:"primaryKey"`
	Value int64 `gorm:"not null;default:0"`
}

const CounterRowID = 1

func All() []any {
	return []any{&Product{}, &Cart{}, &CartItem{}, &DiscountCode{}, &Order{}, &OrderItem{}, &OrderCounter{}}
}
