package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	Repo *repo.GormRepo
}

func newTestEnv(t *testing.T, adminSecret []byte) *testEnv {
	t.Helper()

	db, err := pkgdb.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(context.Background(), db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := repo.New(db)
	ledger := &service.DiscountLedger{Repo: r, Percentage: 10}
	counter := &service.OrderCounter{Repo: r, Every: 10}

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()
	e.Use(loggingmw.RequestLogger(logging.NewWithWriter(io.Discard, "error")))

	Register(e, &Deps{
		CatalogHandler:  &CatalogHTTP{Svc: &service.CatalogService{Repo: r}},
		CartHandler:     &CartHTTP{Svc: &service.CartService{Repo: r, Policy: config.CartPolicyReadable}},
		CheckoutHandler: &CheckoutHTTP{Svc: &service.CheckoutService{Repo: r, Ledger: ledger, Counter: counter}},
		AdminHandler:    &AdminHTTP{Stats: &service.StatsService{Repo: r, Ledger: ledger}, Ledger: ledger},
		AdminSecret:     adminSecret,
		DB:              db,
	})

	return &testEnv{T: t, E: e, Repo: r}
}

func (env *testEnv) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	env.T.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) product(name, price string) models.Product {
	env.T.Helper()
	p := models.Product{Name: name, Description: name, Image: "img"}
	require.NoError(env.T, p.Price.UnmarshalText([]byte(price)))
	require.NoError(env.T, env.Repo.DB.Create(&p).Error)
	return p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["detail"]
}

func adminToken(t *testing.T, secret []byte, role string) string {
	t.Helper()
	tok, err := tokens.IssueAccessToken("ops", role, time.Minute, secret)
	require.NoError(t, err)
	return tok
}
