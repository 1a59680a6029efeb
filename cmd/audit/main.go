package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/orders-admin/internal/audit"
	"github.com/ariefcatur/orders-admin/internal/config"
	kafkax "github.com/ariefcatur/orders-admin/internal/kafka"
	"github.com/ariefcatur/orders-admin/internal/logging"
	"github.com/ariefcatur/orders-admin/internal/orders"
	"github.com/ariefcatur/orders-admin/internal/postgres"
	"github.com/ariefcatur/orders-admin/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	service := cfg.ServiceName + "-audit"
	log := logging.New(cfg.LogLevel).With("service", service)
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

	svc := &audit.Service{
		Repo:  &audit.Repo{DB: db},
		Dedup: &redisx.Dedup{R: rdb, Service: service, TTL: redisx.TTLDedup},
		Log:   log,
	}

	// Consumer
	topics := []string{orders.TopicProductChanged, orders.TopicOrderChanged}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, topics, cfg.AuditWorkers, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("audit consumer started", "group", cfg.AuditGroup, "topics", topics, "workers", cfg.AuditWorkers)
		if err := cons.Start(ctx, svc.HandleChange); err != nil {
			log.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer")
	cancel()
	<-done
}
