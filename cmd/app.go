package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/InventorsDev/inventor-backend-sub000/config"
	"github.com/InventorsDev/inventor-backend-sub000/internal/handler"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/internal/repository"
	"github.com/InventorsDev/inventor-backend-sub000/internal/router"
	"github.com/InventorsDev/inventor-backend-sub000/internal/scheduler"
	"github.com/InventorsDev/inventor-backend-sub000/internal/service"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/cache"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/content"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/database"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/health"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/metrics"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/pool"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/redis"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/webhook"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

// app owns every long-lived resource of the serve command.
type app struct {
	config *configs.Config
	log    *logger.Logger

	mongo    *mongo.Client
	postgres *gorm.DB
	redis    *redis.Client
	memory   *cache.Memory

	webhookPool *pool.Pool
	auditPool   *pool.Pool
	scheduler   *scheduler.Scheduler
	server      *http.Server
}

func newApp(ctx context.Context, config *configs.Config, log *logger.Logger) (*app, error) {
	a := &app{config: config, log: log}
	if err := a.build(ctx); err != nil {
		a.close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *app) build(ctx context.Context) error {
	config, log := a.config, a.log

	log.InfoWithContext(ctx, "Application starting").
		String("app_name", config.App.Name).
		String("environment", config.App.Environment).
		String("version", version).
		Log()

	client, mdb, err := database.NewMongoDB(ctx, config.Mongo)
	if err != nil {
		return err
	}
	a.mongo = client
	if err := database.EnsureMongoIndexes(ctx, mdb); err != nil {
		return fmt.Errorf("ensure mongo indexes: %w", err)
	}

	db, err := database.NewPostgresDB(config)
	if err != nil {
		return err
	}
	a.postgres = db
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}

	// Redis is optional; without it caches live in process memory.
	var store cache.Store
	if config.Redis.Enabled {
		rc, err := redis.NewClient(config, log)
		if err != nil {
			return err
		}
		a.redis = rc
		store = rc
	} else {
		a.memory = cache.NewMemory()
		store = a.memory
	}

	m := metrics.New()

	a.webhookPool, err = pool.New(pool.Config{Name: "webhooks", Size: config.Webhook.Workers, MaxBlocking: 1000}, log)
	if err != nil {
		return err
	}
	a.auditPool, err = pool.New(pool.Config{Name: "audit", Size: config.Audit.Workers, NonBlocking: true}, log)
	if err != nil {
		return err
	}

	// Repositories
	userRepo := repository.NewUserRepository(mdb, log)
	postRepo := repository.NewPostRepository(mdb, log)
	commentRepo := repository.NewCommentRepository(mdb, log)
	eventRepo := repository.NewEventRepository(mdb, log)
	leadRepo := repository.NewLeadRepository(mdb, log)
	webhookRepo := repository.NewWebhookRepository(mdb, log)
	dataLogRepo := repository.NewDataLogRepository(db, log)

	httpConfig := pool.DefaultHTTPConfig()
	if config.Webhook.Timeout > 0 {
		httpConfig.Timeout = config.Webhook.Timeout
	}
	httpClient := pool.NewHTTPClient(httpConfig)
	dispatcher := webhook.NewDispatcher(config.Webhook, webhookRepo, a.webhookPool, httpClient, m, log)

	deps := service.Deps{
		Engine:    query.NewEngine(config.Query.DefaultLimit, config.Query.MaxLimit),
		Publisher: dispatcher,
		Log:       log,
	}
	lists := cache.NewListCache(store, config.Redis.ListCacheTTL, log)
	renderer := content.NewRenderer()

	// Services
	userService := service.NewUserService(userRepo, deps)
	authService := service.NewAuthService(userService, userRepo, service.NewJWTService(config.JWT), cache.NewDenylist(store), log)
	postService := service.NewPostService(postRepo, commentRepo, renderer, lists, m, deps)
	commentService := service.NewCommentService(commentRepo, postRepo, renderer, deps)
	eventService := service.NewEventService(eventRepo, lists, m, deps)
	leadService := service.NewLeadService(leadRepo, deps)
	dataLogService := service.NewDataLogService(dataLogRepo, config.Audit.RetentionDays, deps)
	webhookService := service.NewWebhookService(webhookRepo, dispatcher, deps)

	monitor := health.NewMonitor(version, 5*time.Second)
	monitor.Register("mongo", true, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
	monitor.Register("postgres", true, func(ctx context.Context) error {
		return database.PingPostgres(ctx, db)
	})
	monitor.RegisterStats("webhooks", dispatcher.Stats)
	if a.redis != nil {
		monitor.Register("redis", false, a.redis.Ping)
		monitor.RegisterStats("redis_pool", a.redis.PoolStats)
	} else {
		monitor.Register("redis", false, nil)
	}

	audit := router.Audit{}
	if config.Audit.Enabled {
		audit = router.Audit{Recorder: dataLogService, Workers: a.auditPool}
	}

	engine, err := router.NewRouter(
		router.Handlers{
			Auth:    handler.NewAuthHandler(authService, log),
			User:    handler.NewUserHandler(userService, log),
			Post:    handler.NewPostHandler(postService, commentService, log),
			Event:   handler.NewEventHandler(eventService, log),
			Lead:    handler.NewLeadHandler(leadService, log),
			DataLog: handler.NewDataLogHandler(dataLogService, log),
			Webhook: handler.NewWebhookHandler(webhookService, log),
			Health:  handler.NewHealthHandler(monitor, version, log),
		},
		middleware.NewJWTMiddleware(authService, log),
		audit,
		m,
		config,
		log,
	).SetupRoutes()
	if err != nil {
		return err
	}

	if config.Scheduler.Enabled {
		a.scheduler = scheduler.New(log, m, 5*time.Minute)
		err := a.scheduler.Register(
			scheduler.Job{Name: "event-status", Spec: config.Scheduler.EventStatusSpec, Run: eventService.SyncStatuses},
			scheduler.Job{Name: "data-log-purge", Spec: config.Scheduler.DataLogPurgeSpec, Run: dataLogService.PurgeExpired},
			scheduler.Job{Name: "token-cleanup", Spec: config.Scheduler.TokenCleanupSpec, Run: userService.CleanupRefreshTokens},
		)
		if err != nil {
			return err
		}
	}

	a.server = &http.Server{
		Addr:              ":" + config.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *app) run() error {
	ctx := context.Background()
	if a.scheduler != nil {
		a.scheduler.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.InfoWithContext(ctx, "Server starting").
			String("port", a.config.App.Port).
			Log()
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-quit:
		a.log.InfoWithContext(ctx, "Shutting down server").
			String("signal", sig.String()).
			Log()
	case serveErr = <-errCh:
		a.log.ErrorWithContext(ctx, "Server failed").Err(serveErr).Log()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.ErrorWithContext(shutdownCtx, "Server forced to shutdown").Err(err).Log()
	}
	a.close(shutdownCtx)

	a.log.InfoWithContext(ctx, "Server exited").Log()
	return serveErr
}

// close releases resources in reverse dependency order. Nil members are
// skipped so it is safe after a partial build.
func (a *app) close(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop(ctx)
	}
	if a.auditPool != nil {
		_ = a.auditPool.Close(10 * time.Second)
	}
	if a.webhookPool != nil {
		_ = a.webhookPool.Close(10 * time.Second)
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.memory != nil {
		a.memory.Close()
	}
	if a.postgres != nil {
		_ = database.CloseDB(a.postgres)
	}
	if a.mongo != nil {
		_ = database.CloseMongo(ctx, a.mongo)
	}
}
