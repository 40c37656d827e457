package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

// ErrConflict is returned when a compare-and-set update matched no row.
var ErrConflict = errors.New("conflict")

// Queries is every storage operation the services use. A Queries obtained
// from Store.InTx runs all of its calls inside one transaction.
type Queries interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)
	CountProducts(ctx context.Context) (int64, error)
	CreateProducts(ctx context.Context, products []models.Product) error

	CreateCart(ctx context.Context) (*models.Cart, error)
	GetCart(ctx context.Context, id string) (*models.Cart, error)
	TouchCart(ctx context.Context, id string, now time.Time) error
	ClaimCart(ctx context.Context, id string, now time.Time) error
	SetCartItem(ctx context.Context, cartID, productID string, quantity uint) error
	AddCartItem(ctx context.Context, cartID, productID string, quantity uint) error
	DeleteCartItem(ctx context.Context, cartID, productID string) error

	CreateDiscountCode(ctx context.Context, code *models.DiscountCode) error
	GetDiscountCode(ctx context.Context, code string) (*models.DiscountCode, error)
	RedeemDiscountCode(ctx context.Context, code string, now time.Time) error
	ListDiscountCodes(ctx context.Context) ([]models.DiscountCode, error)

	IncrementOrderCounter(ctx context.Context) (int64, error)
	CurrentOrderCount(ctx context.Context) (int64, error)

	CreateOrder(ctx context.Context, order *models.Order) error
	SetGeneratedDiscountCode(ctx context.Context, orderID, code string) error
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// Store is Queries plus the ability to run a unit of work atomically.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
}

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) InTx(ctx context.Context, fn func(q Queries) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

// Migrate creates the schema and the counter row.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return err
	}
	counter := models.OrderCounter{ID: models.CounterRowID}
	return db.WithContext(ctx).FirstOrCreate(&counter, models.OrderCounter{ID: models.CounterRowID}).Error
}
