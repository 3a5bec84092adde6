package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfoliocms/internal/app"
	"github.com/portfoliocms/internal/config"
	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/handler"
	"github.com/portfoliocms/internal/metrics"
	"github.com/portfoliocms/internal/router"
	"github.com/portfoliocms/internal/service"
	"github.com/portfoliocms/internal/store"
	"github.com/portfoliocms/internal/telemetry"
	"github.com/portfoliocms/internal/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	logger := newLogger(cfg.GinMode)
	slog.SetDefault(logger)

	secret, err := cfg.SessionKey()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	shutdownTracing, err := telemetry.Setup(telemetry.Options{Exporter: cfg.TraceExporter, ServiceName: "portfolio-cms"})
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("flush traces", "error", err)
		}
	}()

	stores, err := openStores(cfg)
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}

	cache, closeCache, err := openCache(cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
	defer closeCache()

	services := app.NewServices(stores, service.Options{Cache: cache}, service.AuthConfig{
		Admin:      cfg.Admin,
		ResetToken: cfg.ResetToken,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	admin, created, err := services.Auth.EnsureAdminExists(bootCtx)
	cancelBoot()
	if err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}
	if created {
		m.IncrementAdminsCreated()
		logger.Info("admin user created", "email", admin.Email)
	}

	deps := services.HandlerDeps()
	deps.Tokens = token.NewManager(secret, 0)
	deps.Metrics = m
	deps.Logger = logger
	deps.SecureCookies = cfg.SecureCookies
	deps.UploadDir = cfg.UploadDir
	deps.UploadURL = cfg.UploadURLPath

	engine := router.SetupRouter(handler.NewAPI(deps), router.Options{
		SessionSecret: secret,
		SecureCookies: cfg.SecureCookies,
		CORSOrigins:   cfg.CORSOrigins,
		Logger:        logger,
		Metrics:       m,
		Gatherer:      reg,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr, "store", cfg.StoreBackend, "cache", cfg.CacheBackend, "traces", cfg.TraceExporter)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newLogger(mode string) *slog.Logger {
	if mode == gin.ReleaseMode {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func openStores(cfg config.AppConfig) (*app.Stores, error) {
	switch cfg.StoreBackend {
	case "rest":
		return app.RESTStores(store.RESTOptions{
			BaseURL: cfg.RESTURL,
			APIKey:  cfg.RESTServiceKey,
			Schema:  cfg.RESTSchema,
		})
	case "", "sql":
		if err := db.Init(db.Options{
			Driver: cfg.DatabaseDriver,
			Path:   cfg.DatabasePath,
			URL:    cfg.DatabaseURL,
		}); err != nil {
			return nil, err
		}
		return app.SQLStores(db.DB)
	default:
		return nil, errors.New("unknown STORE_BACKEND " + cfg.StoreBackend)
	}
}

func openCache(cfg config.AppConfig, logger *slog.Logger) (service.Cache, func(), error) {
	switch cfg.CacheBackend {
	case "", "none":
		return service.NoopCache(), func() {}, nil
	case "memory":
		return service.NewMemoryCache(cfg.CacheTTL), func() {}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, err
		}
		return service.NewRedisCache(rdb, cfg.CacheTTL), func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}, nil
	default:
		return nil, nil, errors.New("unknown CACHE_BACKEND " + cfg.CacheBackend)
	}
}
