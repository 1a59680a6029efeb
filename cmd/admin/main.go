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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ariefcatur/orders-admin/internal/admin"
	"github.com/ariefcatur/orders-admin/internal/apiclient"
	"github.com/ariefcatur/orders-admin/internal/config"
	"github.com/ariefcatur/orders-admin/internal/httpx"
	"github.com/ariefcatur/orders-admin/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel).With("service", "catalog-admin")

	views, err := admin.NewViews()
	if err != nil {
		log.Error("templates", "err", err)
		os.Exit(1)
	}

	api := apiclient.New(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout, log)
	res := admin.Resources{
		Products: apiclient.Products{C: api},
		Orders:   apiclient.Orders{C: api},
	}
	h := &admin.Handler{
		Sessions: admin.NewSessions(res, cfg.SessionTTL, cfg.SecureCookies, log),
		Views:    views,
		Log:      log,
	}

	router := httpx.NewRouter()
	router.Group(func(r chi.Router) {
		if cfg.AdminUser != "" {
			r.Use(middleware.BasicAuth("catalog-admin", map[string]string{cfg.AdminUser: cfg.AdminPassword}))
		}
		h.Register(r)
	})

	srv := &http.Server{Addr: cfg.AdminAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	stop := make(chan struct{})
	go func() {
		log.Info("admin listening", "addr", cfg.AdminAddr, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "err", err)
			close(stop)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-stop:
	}
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
