package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"dealership_api/internal/adapters/dealerstore"
	server "dealership_api/internal/adapters/http_server"
	"dealership_api/internal/adapters/inventory"
	"dealership_api/internal/adapters/observability"
	redisad "dealership_api/internal/adapters/redis"
	"dealership_api/internal/adapters/sentiment"
	"dealership_api/internal/adapters/upstream"
	"dealership_api/internal/app"
	"dealership_api/internal/shared"
	mysqlrepo "dealership_api/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	sessions := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := sessions.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	// upstreams
	opts := func(service string) upstream.Options {
		return upstream.Options{Service: service, Timeout: cfg.UpstreamTimeout, RPS: cfg.UpstreamRPS, Retries: cfg.UpstreamRetries}
	}
	dealersUp := mustUpstream(cfg.BackendURL, opts("dealers"))
	sentimentUp := mustUpstream(cfg.SentimentURL, opts("sentiment"))
	inventoryUp := mustUpstream(cfg.SearchCarsURL, opts("inventory"))

	// deps
	repo := mysqlrepo.New(db)
	store := dealerstore.New(dealersUp)
	handlers := &server.Handlers{
		Dealers:             app.NewDealerService(store),
		Reviews:             app.NewReviewService(store, sentiment.New(sentimentUp), cfg.SentimentConcurrency),
		Inventory:           app.NewInventoryService(inventory.New(inventoryUp)),
		Auth:                app.NewAuthService(repo, sessions, cfg.SessionTTL),
		Catalog:             app.NewCatalogService(repo),
		RegisterConflict409: cfg.RegisterConflict409,
		SecureCookies:       cfg.SecureCookies,
	}

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(handlers)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func mustUpstream(base string, opts upstream.Options) *upstream.Client {
	c, err := upstream.New(base, opts)
	if err != nil {
		log.Fatal().Err(err).Str("service", opts.Service).Msg("failed to initialize upstream client")
	}
	log.Info().Str("service", opts.Service).Str("base", base).Msg("upstream configured")
	return c
}
