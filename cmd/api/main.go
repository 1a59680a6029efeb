package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/ariefcatur/orders-admin/internal/config"
	"github.com/ariefcatur/orders-admin/internal/httpx"
	kafkax "github.com/ariefcatur/orders-admin/internal/kafka"
	"github.com/ariefcatur/orders-admin/internal/logging"
	"github.com/ariefcatur/orders-admin/internal/orders"
	"github.com/ariefcatur/orders-admin/internal/postgres"
	"github.com/ariefcatur/orders-admin/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per change topic
	pProducts := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicProductChanged, 1024, log)
	pProducts.Start(ctx)
	pOrders := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderChanged, 1024, log)
	pOrders.Start(ctx)

	// Repo & handler
	h := &httpx.CatalogHandler{
		Repo:     &orders.Repo{DB: db},
		Cache:    &redisx.ListCache{R: rdb, TTL: redisx.TTLListCache},
		Products: pProducts,
		Orders:   pOrders,
		Service:  cfg.ServiceName,
		Log:      log,
	}
	router := httpx.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(httpx.BearerAuth(cfg.APIToken))
		h.Register(r)
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "err", err)
			cancel()
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pProducts.Close() // close inbox -> flush & close writer
	pOrders.Close()
	cancel()
	pProducts.WaitClosed()
	pOrders.WaitClosed()
}
