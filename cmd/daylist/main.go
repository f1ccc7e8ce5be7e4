package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lbruzzone/daylist/internal/auth"
	"github.com/lbruzzone/daylist/internal/config"
	"github.com/lbruzzone/daylist/internal/docstore"
	"github.com/lbruzzone/daylist/internal/httpapi"
	"github.com/lbruzzone/daylist/internal/notify"
	"github.com/lbruzzone/daylist/internal/observability"
	"github.com/lbruzzone/daylist/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	records, err := docstore.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("document store init failed: %v", err)
	}
	defer records.Close()

	notifier := notify.NewChannel()
	store := tasks.NewManager(records, cfg.TasksCollection, notifier, metrics)

	var authSvc auth.Service
	if cfg.AuthBaseURL != "" {
		authSvc = auth.NewHTTPService(cfg.AuthBaseURL, cfg.AuthPollInterval)
		log.Printf("auth provider: %s", cfg.AuthBaseURL)
	} else {
		authSvc = auth.NewStaticService(cfg.LocalUserID)
		log.Printf("auth provider: static local user %q", cfg.LocalUserID)
	}

	guard := auth.NewGuard(metrics)

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	go guard.Run(runCtx, authSvc, auth.Hooks{
		OnAdmit: func(ctx context.Context, userID string) {
			log.Printf("session admitted for %s, loading collection %q", userID, cfg.TasksCollection)
			store.Load(ctx)
		},
		OnDeny: func() {
			log.Printf("session denied, discarding local collection")
			store.Reset()
		},
	})

	api := httpapi.New(cfg, store, notifier, guard, authSvc, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
