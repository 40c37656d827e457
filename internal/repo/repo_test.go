package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Skotchmaster/storefront/internal/models"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := pkgdb.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	return New(db)
}

func newProduct(t *testing.T, r *GormRepo, price string) models.Product {
	t.Helper()
	p := models.Product{Name: "Mug", Description: "ceramic", Price: decimal.RequireFromString(price)}
	require.NoError(t, r.CreateProducts(context.Background(), []models.Product{p}))
	products, err := r.ListProducts(context.Background())
	require.NoError(t, err)
	return products[len(products)-1]
}

func TestMigrate_CreatesCounterRow(t *testing.T) {
	r := newTestRepo(t)

	n, err := r.CurrentOrderCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, Migrate(context.Background(), r.DB))
	n, err = r.CurrentOrderCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCartItems_SetAddDelete(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	cart, err := r.CreateCart(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cart.ID)

	require.NoError(t, r.SetCartItem(ctx, cart.ID, "p1", 2))
	require.NoError(t, r.AddCartItem(ctx, cart.ID, "p1", 3))
	require.NoError(t, r.AddCartItem(ctx, cart.ID, "p2", 1))
	require.NoError(t, r.SetCartItem(ctx, cart.ID, "p2", 4))

	got, err := r.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, uint(5), got.Items[0].Quantity)
	assert.Equal(t, uint(4), got.Items[1].Quantity)

	require.NoError(t, r.DeleteCartItem(ctx, cart.ID, "p1"))
	require.NoError(t, r.DeleteCartItem(ctx, cart.ID, "p1"))

	got, err = r.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p2", got.Items[0].ProductID)
}

func TestGetCart_Unknown(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.GetCart(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClaimCart_OnlyOnce(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	cart, err := r.CreateCart(ctx)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, r.ClaimCart(ctx, cart.ID, now))
	assert.ErrorIs(t, r.ClaimCart(ctx, cart.ID, now), ErrConflict)
	assert.ErrorIs(t, r.TouchCart(ctx, cart.ID, now), ErrConflict)
	assert.ErrorIs(t, r.ClaimCart(ctx, "missing", now), ErrConflict)

	got, err := r.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, got.CheckedOut())
}

func TestRedeemDiscountCode_ExactlyOnce(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.CreateDiscountCode(ctx, &models.DiscountCode{Code: "DISCOUNTAAAA0001", Percentage: 10}))

	const n = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		won      int
		conflict int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.RedeemDiscountCode(ctx, "DISCOUNTAAAA0001", time.Now().UTC())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, ErrConflict):
				conflict++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, n-1, conflict)

	dc, err := r.GetDiscountCode(ctx, "DISCOUNTAAAA0001")
	require.NoError(t, err)
	assert.True(t, dc.IsUsed)
	require.NotNil(t, dc.UsedAt)
}

func TestIncrementOrderCounter_NoDuplicates(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	const n = 25
	seen := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.InTx(ctx, func(q Queries) error {
				v, err := q.IncrementOrderCounter(ctx)
				if err == nil {
					seen <- v
				}
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	close(seen)

	values := map[int64]bool{}
	for v := range seen {
		assert.False(t, values[v], "duplicate counter value %d", v)
		values[v] = true
	}
	for i := int64(1); i <= n; i++ {
		assert.True(t, values[i], "missing counter value %d", i)
	}

	final, err := r.CurrentOrderCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), final)
}

func TestInTx_RollbackOnError(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := r.InTx(ctx, func(q Queries) error {
		if _, err := q.IncrementOrderCounter(ctx); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := r.CurrentOrderCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrders_CreateAndList(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := newProduct(t, r, "25.00")

	order := &models.Order{
		OrderNumber:    1,
		CustomerName:   "Ann",
		CustomerEmail:  "ann@example.com",
		Subtotal:       decimal.RequireFromString("50.00"),
		DiscountAmount: decimal.Zero,
		Total:          decimal.RequireFromString("50.00"),
		Items: []models.OrderItem{
			{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 2},
		},
	}
	require.NoError(t, r.CreateOrder(ctx, order))
	require.NoError(t, r.SetGeneratedDiscountCode(ctx, order.ID, "DISCOUNTBEEF0001"))
	assert.ErrorIs(t, r.SetGeneratedDiscountCode(ctx, "missing", "X"), gorm.ErrRecordNotFound)

	orders, err := r.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.True(t, orders[0].Total.Equal(decimal.NewFromInt(50)))
	require.NotNil(t, orders[0].GeneratedDiscountCode)
	assert.Equal(t, "DISCOUNTBEEF0001", *orders[0].GeneratedDiscountCode)
}

func TestSearchProducts_Like(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	inserted, err := SeedProducts(ctx, r)
	require.NoError(t, err)
	require.Len(t, inserted, 8)

	again, err := SeedProducts(ctx, r)
	require.NoError(t, err)
	assert.Nil(t, again)

	total, items, err := r.SearchProducts(ctx, "WIRELESS", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func newMockRepo(t *testing.T) (*GormRepo, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return New(db), mock
}

func TestRedeemDiscountCode_NoRowsIsConflict(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "discount_codes" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.RedeemDiscountCode(context.Background(), "DISCOUNT00000000", time.Now())
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemDiscountCode_StorageErrorPropagates(t *testing.T) {
	r, mock := newMockRepo(t)
	down := errors.New("connection refused")

	mock.ExpectExec(`UPDATE "discount_codes" SET`).WillReturnError(down)

	err := r.RedeemDiscountCode(context.Background(), "DISCOUNT00000000", time.Now())
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
