package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnvdash/user-directory/internal/config"
	"github.com/bnvdash/user-directory/internal/db"
	httpx "github.com/bnvdash/user-directory/internal/http"
	"github.com/bnvdash/user-directory/internal/observability"
	"github.com/bnvdash/user-directory/internal/repo/mongostore"
	"github.com/bnvdash/user-directory/internal/service"
	"github.com/bnvdash/user-directory/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// optional tracing; skipped entirely when no collector is configured
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "user-directory", cfg.OTLPEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()

			if err := shutdownTracer(ctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}()
	}

	database, err := db.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Error("mongo connect failed", "err", err, "uri", cfg.MongoURI)
		os.Exit(1)
	}

	defer func() {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()

		if err := database.Client().Disconnect(ctx); err != nil {
			log.Error("mongo disconnect failed", "err", err)
		}
	}()

	{
		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := db.EnsureUserIndexes(ctx, database, cfg.UsersCollection); err != nil {
			log.Error("index creation failed", "err", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	images, err := storage.NewImageStore(cfg.UploadDir, log)
	if err != nil {
		log.Error("upload dir init failed", "err", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	users := service.NewUsers(
		mongostore.NewUsersRepo(database, cfg.UsersCollection, prom),
		images,
		log,
	)

	router := httpx.NewRouter(cfg, log, httpx.RouterDeps{
		Users:        users,
		DB:           database,
		Prom:         prom,
		PromRegistry: registry,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)

		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
