package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected failure")

type testEnv struct {
	T        *testing.T
	Repo     *repo.GormRepo
	Cart     *CartService
	Ledger   *DiscountLedger
	Counter  *OrderCounter
	Checkout *CheckoutService
	Stats    *StatsService
	Catalog  *CatalogService
	Events   *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := pkgdb.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(context.Background(), db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := repo.New(db)
	return newTestEnvWithStore(t, r, r)
}

func newTestEnvWithStore(t *testing.T, r *repo.GormRepo, store repo.Store) *testEnv {
	events := &recordingPublisher{}
	ledger := &DiscountLedger{Repo: store, Percentage: 10, Events: events}
	counter := &OrderCounter{Repo: store, Every: 10}

	return &testEnv{
		T:       t,
		Repo:    r,
		Cart:    &CartService{Repo: store, Policy: config.CartPolicyReadable},
		Ledger:  ledger,
		Counter: counter,
		Checkout: &CheckoutService{
			Repo:    store,
			Ledger:  ledger,
			Counter: counter,
			Events:  events,
		},
		Stats:   &StatsService{Repo: store, Ledger: ledger},
		Catalog: &CatalogService{Repo: store},
		Events:  events,
	}
}

func (env *testEnv) product(name, price string) models.Product {
	env.T.Helper()
	p := models.Product{Name: name, Description: name + " description", Price: decimal.RequireFromString(price), Image: "img/" + name}
	require.NoError(env.T, env.Repo.DB.Create(&p).Error)
	return p
}

// cartWith returns a fresh cart holding qty of product p.
func (env *testEnv) cartWith(p models.Product, qty int) string {
	env.T.Helper()
	cart, err := env.Cart.AddItem(context.Background(), "", p.ID, qty)
	require.NoError(env.T, err)
	return cart.ID
}

func (env *testEnv) checkout(cartID, code string) (*models.Order, error) {
	return env.Checkout.Checkout(context.Background(), transport.CheckoutRequest{
		CartID:        cartID,
		CustomerName:  "Ann Buyer",
		CustomerEmail: "ann@example.com",
		DiscountCode:  code,
	})
}

func (env *testEnv) code(code string) models.DiscountCode {
	env.T.Helper()
	dc, err := env.Repo.GetDiscountCode(context.Background(), code)
	require.NoError(env.T, err)
	return *dc
}

func (env *testEnv) seedCode(code string) {
	env.T.Helper()
	require.NoError(env.T, env.Repo.CreateDiscountCode(context.Background(), &models.DiscountCode{Code: code, Percentage: 10}))
}

func (env *testEnv) orderCount() int64 {
	env.T.Helper()
	n, err := env.Repo.CurrentOrderCount(context.Background())
	require.NoError(env.T, err)
	return n
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []map[string]any
	fail   bool
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return fmt.Errorf("broker down")
	}
	body := event.(map[string]any)
	body["_topic"] = topic
	p.events = append(p.events, body)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e["type"].(string))
	}
	return out
}

// faultyStore injects errInjected into one named Queries method, but only
// inside transactions.
type faultyStore struct {
	*repo.GormRepo
	failOn string
}

func (s *faultyStore) InTx(ctx context.Context, fn func(q repo.Queries) error) error {
	return s.GormRepo.InTx(ctx, func(q repo.Queries) error {
		return fn(&faultyQueries{Queries: q, failOn: s.failOn})
	})
}

type faultyQueries struct {
	repo.Queries
	failOn string
}

func (q *faultyQueries) CreateOrder(ctx context.Context, order *models.Order) error {
	if q.failOn == "CreateOrder" {
		return errInjected
	}
	return q.Queries.CreateOrder(ctx, order)
}

func (q *faultyQueries) IncrementOrderCounter(ctx context.Context) (int64, error) {
	if q.failOn == "IncrementOrderCounter" {
		return 0, errInjected
	}
	return q.Queries.IncrementOrderCounter(ctx)
}

func (q *faultyQueries) SetGeneratedDiscountCode(ctx context.Context, orderID, code string) error {
	if q.failOn == "SetGeneratedDiscountCode" {
		return errInjected
	}
	return q.Queries.SetGeneratedDiscountCode(ctx, orderID, code)
}

func (q *faultyQueries) CreateDiscountCode(ctx context.Context, code *models.DiscountCode) error {
	if q.failOn == "CreateDiscountCode" {
		return errInjected
	}
	return q.Queries.CreateDiscountCode(ctx, code)
}
