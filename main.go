// Package main provides the main entry point for the UsBest participation backend
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/usbest/usbest-backend/app/handlers"
	"github.com/usbest/usbest-backend/app/middleware"
	"github.com/usbest/usbest-backend/app/router"
	"github.com/usbest/usbest-backend/app/scheduler"
	"github.com/usbest/usbest-backend/app/services"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"github.com/usbest/usbest-backend/config"
	applogger "github.com/usbest/usbest-backend/logger"
	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/repository"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	logger    *zap.Logger
	stopFuncs []func()
}

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := applogger.MustInit(cfg.Logging, cfg.Deployment)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting usbest backend", zap.String("env", cfg.Deployment.Environment))

	app, err := initializeApplication(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-sigChan
	logger.Info("shutting down gracefully")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	gormCfg := &gorm.Config{TranslateError: true}
	if cfg.SlowQueryLog {
		gormCfg.Logger = gormlogger.New(
			log.New(os.Stdout, "", log.LstdFlags),
			gormlogger.Config{
				SlowThreshold:             cfg.SlowQueryTime,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("database schema migrated")
	}

	logger.Info("database connection established",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig, logger *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis connection established", zap.Int("db", cfg.RedisDB))
	return rc, nil
}

// startCacheHealthMonitor periodically pings Redis until the returned function is called
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration, logger *zap.Logger) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					logger.Warn("redis healthcheck failed", zap.Error(err))
				}
				c()
			}
		}
	}()
	return cancel
}

func initializeApplication(cfg *config.ProductionConfig, logger *zap.Logger) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	healthChecks := map[string]router.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	rc, err := initializeCache(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	var adCache businessflow.AdCache
	if rc != nil {
		adCache = businessflow.NewRedisAdCache(rc, cfg.Cache, logger)
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 30*time.Second, logger))
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
		healthChecks["cache"] = func(ctx context.Context) error {
			return rc.Ping(ctx).Err()
		}
	}

	storage, err := services.NewMinioStorageService(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	ensureCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := storage.EnsureBucket(ensureCtx); err != nil {
		// Uploads fail until storage is reachable.
		logger.Warn("object storage is not ready", zap.Error(err))
	}

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize repositories
	adRepo := repository.NewAdRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	ugcRepo := repository.NewUGCRepository(db)
	surveyRepo := repository.NewSurveyRepository(db)
	answerRepo := repository.NewSurveyAnswerRepository(db)
	campaignRepo := repository.NewTesterCampaignRepository(db)
	applicantRepo := repository.NewTesterApplicantRepository(db)
	reportRepo := repository.NewTesterReportRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	exposureRepo := repository.NewAdExposureRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Initialize business flows
	participationFlow := businessflow.NewParticipationFlow(adRepo, commentRepo, ugcRepo, surveyRepo, answerRepo, exposureRepo, adCache, db, logger)
	testerFlow := businessflow.NewTesterFlow(adRepo, campaignRepo, applicantRepo, reportRepo, exposureRepo, auditRepo, adCache, db, logger)
	adoptionFlow := businessflow.NewAdoptionFlow(adRepo, commentRepo, ugcRepo, rewardRepo, auditRepo, adCache, cfg.Reward, db, logger)
	adFlow := businessflow.NewAdFlow(adRepo, commentRepo, ugcRepo, surveyRepo, answerRepo, applicantRepo, adCache, logger)
	mediaFlow := businessflow.NewMediaFlow(adRepo, adCache, storage, logger)
	consoleFlow := businessflow.NewAdvertiserConsoleFlow(adRepo, commentRepo, ugcRepo, campaignRepo, applicantRepo, adCache, logger)

	// Initialize handlers
	h := router.Handlers{
		Auth:          handlers.NewAuthHandler(tokenService, logger),
		Ad:            handlers.NewAdHandler(adFlow, logger),
		Participation: handlers.NewParticipationHandler(participationFlow, mediaFlow, logger),
		Tester:        handlers.NewTesterHandler(testerFlow, logger),
		Adoption:      handlers.NewAdoptionHandler(adoptionFlow, logger),
		Console:       handlers.NewConsoleHandler(consoleFlow, logger),
	}

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	if cfg.Scheduler.CampaignCloserEnabled {
		closer := scheduler.NewCampaignCloser(campaignRepo, cfg.Scheduler.CampaignCloserInterval, logger)
		stopFuncs = append(stopFuncs, closer.Start(context.Background()))
	}

	appRouter := router.NewFiberRouter(cfg, h, authMiddleware, healthChecks, logger)

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		logger:    logger,
		stopFuncs: stopFuncs,
	}, nil
}
