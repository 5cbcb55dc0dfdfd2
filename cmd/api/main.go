// Package main - точка входа REST API обучающей платформы.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: PostgreSQL, Redis, платёжный шлюз, шина событий
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/learnhub/learning-platform/config"
	"github.com/learnhub/learning-platform/internal/application/command"
	"github.com/learnhub/learning-platform/internal/application/eventhandler"
	"github.com/learnhub/learning-platform/internal/application/query"
	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/infrastructure/messaging"
	"github.com/learnhub/learning-platform/internal/infrastructure/payment"
	"github.com/learnhub/learning-platform/internal/infrastructure/persistence/postgres"
	"github.com/learnhub/learning-platform/internal/infrastructure/persistence/redis"
	httpserver "github.com/learnhub/learning-platform/internal/interface/http"
	"github.com/learnhub/learning-platform/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ═══════════════════════════════════════════════════════════════════════
	// КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ═══════════════════════════════════════════════════════════════════════

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	}).With(
		logger.String("app", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
	)

	// Шина событий и обработчики используют slog.
	slogger := newSlog(cfg)

	log.Info("starting",
		logger.String("version", cfg.App.Version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ═══════════════════════════════════════════════════════════════════════
	// POSTGRESQL
	// ═══════════════════════════════════════════════════════════════════════

	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
	}

	// QuizRepository реализует и quiz.Repository, и quiz.AttemptRepository.
	quizRepo := postgres.NewQuizRepository(conn)
	courseRepo := postgres.NewCourseRepository(conn)
	progressRepo := postgres.NewProgressRepository(conn)
	planRepo := postgres.NewPlanRepository(conn)
	subRepo := postgres.NewSubscriptionRepository(conn)

	// ═══════════════════════════════════════════════════════════════════════
	// REDIS (опционально)
	// ═══════════════════════════════════════════════════════════════════════

	var (
		cache            *redis.Cache
		planCache        *redis.PlanCache
		entitlementCache *redis.EntitlementCache
		statsCache       *redis.StatsCache
	)

	if !cfg.Redis.Disabled {
		cache, err = redis.NewCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			// Платформа работает и без Redis, только медленнее.
			log.Warn("redis unavailable, caching disabled", logger.Err(err))
			cache = nil
		} else {
			defer cache.Close()
			// Каждый кэш можно отключить фиче-флагом без редеплоя
			// (FEATURE_CACHE_PLANS=false и т.д.).
			if cfg.Features.IsEnabled(config.FeatureCachePlans, nil) {
				planCache = redis.NewPlanCache(cache)
			}
			if cfg.Features.IsEnabled(config.FeatureCacheEntitlements, nil) {
				entitlementCache = redis.NewEntitlementCache(cache)
			}
			if cfg.Features.IsEnabled(config.FeatureCacheLearnerStats, nil) {
				statsCache = redis.NewStatsCache(cache)
			}
		}
	}

	// ═══════════════════════════════════════════════════════════════════════
	// ШИНА СОБЫТИЙ
	// ═══════════════════════════════════════════════════════════════════════

	busCfg := messaging.DefaultConfig()
	busCfg.Logger = slogger
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer bus.Close()

	onProgress := eventhandler.NewOnProgressUpdatedHandler(statsCache, slogger)
	_ = bus.Subscribe(shared.EventProgressUpdated, onProgress.Handle)
	_ = bus.Subscribe(shared.EventCourseCompleted, onProgress.Handle)

	onSubscription := eventhandler.NewOnSubscriptionChangedHandler(entitlementCache, slogger)
	_ = bus.Subscribe(shared.EventSubscriptionCreated, onSubscription.Handle)
	_ = bus.Subscribe(shared.EventSubscriptionCancelled, onSubscription.Handle)
	_ = bus.Subscribe(shared.EventPlanChanged, onSubscription.Handle)

	// ═══════════════════════════════════════════════════════════════════════
	// ПЛАТЁЖНЫЙ ШЛЮЗ
	// ═══════════════════════════════════════════════════════════════════════

	var gateway payment.Gateway
	switch cfg.Payment.Mode {
	case "mock":
		gateway = payment.NewMockGateway(log)
	case "live":
		// TODO: подключить реального провайдера, когда договор будет подписан.
		return fmt.Errorf("live payment gateway is not configured yet")
	default:
		return fmt.Errorf("unknown payment mode %q", cfg.Payment.Mode)
	}
	gateway = payment.NewResilientGateway(gateway, log)

	// ═══════════════════════════════════════════════════════════════════════
	// APPLICATION LAYER
	// ═══════════════════════════════════════════════════════════════════════

	deps := httpserver.Dependencies{
		SubmitAttempt:      command.NewSubmitAttemptHandler(quizRepo, quizRepo, bus),
		UpdateProgress:     command.NewUpdateProgressHandler(courseRepo, progressRepo, bus),
		Subscribe:          command.NewSubscribeHandler(planRepo, subRepo, gateway, bus),
		CancelSubscription: command.NewCancelSubscriptionHandler(subRepo, bus),
		ChangePlan:         command.NewChangePlanHandler(planRepo, subRepo, gateway, bus),

		GetCourseProgress: query.NewGetCourseProgressHandler(courseRepo, progressRepo),
		GetLearnerStats:   query.NewGetLearnerStatsHandler(progressRepo, statsCache, log),
		GetQuizHistory:    query.NewGetQuizHistoryHandler(quizRepo),
		GetEntitlement:    query.NewGetEntitlementHandler(subRepo, entitlementCache, log),
		ListPlans:         query.NewListPlansHandler(planRepo, planCache, log),

		Authenticator:  httpserver.NewTokenAuthenticator(loadTokenStore()),
		HealthChecks:   buildHealthChecks(conn, cache),
		RateLimitCache: cache,
		Logger:         log,
	}

	// ═══════════════════════════════════════════════════════════════════════
	// HTTP СЕРВЕР
	// ═══════════════════════════════════════════════════════════════════════

	srvCfg := httpserver.DefaultConfig()
	srvCfg.Host = cfg.HTTP.Host
	srvCfg.Port = cfg.HTTP.Port
	srvCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	srvCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	srvCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	srvCfg.EnableCORS = cfg.HTTP.EnableCORS
	srvCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	srvCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	srv := httpserver.NewServer(srvCfg, deps)

	errCh := srv.StartAsync()
	log.Info("http server listening", logger.String("addr", srvCfg.Address()))

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	// ═══════════════════════════════════════════════════════════════════════
	// GRACEFUL SHUTDOWN
	// ═══════════════════════════════════════════════════════════════════════

	log.Info("shutting down", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown incomplete", logger.Err(err))
		return err
	}

	log.Info("stopped")
	return nil
}

// newSlog строит slog-логгер для шины событий и её обработчиков.
func newSlog(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Observability.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Observability.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// loadTokenStore разбирает API_TOKENS вида "userID:bcryptHash,userID:bcryptHash".
// Пустое значение даёт пустой стор: все запросы с токеном получат 401.
func loadTokenStore() *httpserver.StaticTokenStore {
	hashes := make(map[int64]string)

	raw := os.Getenv("API_TOKENS")
	for _, pair := range strings.Split(raw, ",") {
		id, hash, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			continue
		}
		userID, err := strconv.ParseInt(id, 10, 64)
		if err != nil || userID <= 0 || hash == "" {
			continue
		}
		hashes[userID] = hash
	}

	return httpserver.NewStaticTokenStore(hashes)
}

// buildHealthChecks собирает проверки готовности для /ready.
func buildHealthChecks(conn *postgres.Connection, cache *redis.Cache) map[string]httpserver.HealthChecker {
	checks := map[string]httpserver.HealthChecker{
		"postgres": conn.Ping,
	}
	if cache != nil {
		checks["redis"] = cache.Ping
	}
	return checks
}
