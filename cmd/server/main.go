package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"

	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	db, err := openDB(ctx, cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	store := repo.New(db)

	var index *es.Index
	if cfg.ESURL != "" {
		client, err := es.NewClient(ctx, cfg)
		if err != nil {
			logger.Error("es_unavailable", "error", err)
		} else {
			index = es.NewIndex(client, cfg.ESIndex)
		}
	}

	prepareCatalog(ctx, store, cfg.SeedProducts, index)

	var (
		events   service.EventPublisher
		producer *mykafka.Producer
	)
	if len(cfg.KafkaBrokers) > 0 {
		tctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := mykafka.EnsureTopics(tctx, cfg.KafkaBrokers[0], service.TopicOrderEvents, service.TopicDiscountEvents); err != nil {
			logger.Warn("kafka_topics_error", "error", err)
		}
		cancel()

		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		events = producer
	}

	catalog := &service.CatalogService{Repo: store}
	if index != nil {
		catalog.Searcher = index
	}
	ledger := &service.DiscountLedger{Repo: store, Percentage: cfg.DiscountPercentage, Events: events}
	counter := &service.OrderCounter{Repo: store, Every: int64(cfg.MilestoneEvery)}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Validator = httpserver.NewValidator()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: store, Policy: cfg.CheckedOutCartPolicy}},
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: &service.CheckoutService{
			Repo:    store,
			Ledger:  ledger,
			Counter: counter,
			Events:  events,
		}},
		AdminHandler: &httpserver.AdminHTTP{
			Stats:  &service.StatsService{Repo: store, Ledger: ledger},
			Ledger: ledger,
		},
		AdminSecret: cfg.AdminJWTSecret,
		DB:          db,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("shutdown complete")
}

func openDB(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if cfg.DBDriver == "postgres" {
		return pkgdb.Open(ctx, cfg.DatabaseURL)
	}
	return pkgdb.OpenSQLite(ctx, cfg.SQLitePath)
}

// prepareCatalog seeds an empty catalog and mirrors the catalog into the
// search index. Neither step is fatal.
func prepareCatalog(ctx context.Context, store *repo.GormRepo, seed bool, index *es.Index) {
	l := logging.FromContext(ctx)

	if seed {
		seeded, err := repo.SeedProducts(ctx, store)
		if err != nil {
			l.Error("seed_products_error", "error", err)
		} else if len(seeded) > 0 {
			l.Info("seeded_products", "count", len(seeded))
		}
	}

	if index == nil {
		return
	}
	products, err := store.ListProducts(ctx)
	if err != nil {
		l.Error("list_products_error", "error", err)
		return
	}
	if err := index.IndexProducts(ctx, products); err != nil {
		l.Warn("index_products_error", "error", err)
	}
}
