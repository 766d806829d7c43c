package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexum-core/ledger/internal/audit"
	"github.com/nexum-core/ledger/internal/auth"
	"github.com/nexum-core/ledger/internal/config"
	"github.com/nexum-core/ledger/internal/ledger"
	"github.com/nexum-core/ledger/internal/reporting"
	"github.com/nexum-core/ledger/internal/storage"
	"github.com/nexum-core/ledger/internal/storage/memory"
	"github.com/nexum-core/ledger/internal/storage/postgres"
	"github.com/nexum-core/ledger/internal/tenancy"
	"github.com/nexum-core/ledger/internal/tenant"
	"github.com/nexum-core/ledger/pkg/logger"
	"github.com/nexum-core/ledger/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		panic(err)
	}

	rawStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("storage init failed", "err", err)
		panic(err)
	}
	defer closeStore()

	var auditCache audit.TailCache
	if cfg.Storage.AsyncEnabled {
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			panic(err)
		}
		defer func() { _ = rdb.Close() }()
		auditCache = audit.NewRedisTailCache(rdb, "accounting-core")
	}

	tenantManager := tenant.NewManager(rawStore)
	tenantStore := tenancy.NewAwareStorage(rawStore)
	auditSvc := audit.NewService(tenantStore, audit.WithTailCache(auditCache))
	ledgerSvc := ledger.NewService(tenantStore, auditSvc)
	reportingSvc := reporting.NewService(ledgerSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	deps := apiDeps{
		authManager: authManager,
		tenants:     tenantManager,
		audit:       auditSvc,
		ledger:      ledgerSvc,
		reporting:   reportingSvc,
	}
	registerRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped unexpectedly", "err", err)
			panic(err)
		}
		log.Info("server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}

// openStore selects the storage.Store backend per cfg.Storage.Type. memory
// needs no teardown; postgresql owns a *sql.DB that must be closed.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	switch cfg.Storage.Type {
	case "memory":
		return memory.New(), func() {}, nil
	case "postgresql":
		db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			return nil, func() {}, err
		}
		return postgres.New(db), func() { _ = db.Close() }, nil
	default:
		return nil, func() {}, fmt.Errorf("unsupported STORAGE_TYPE %q", cfg.Storage.Type)
	}
}
