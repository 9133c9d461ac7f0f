package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"leafscan/internal/classifier"
	"leafscan/internal/config"
	"leafscan/internal/db"
	apihttp "leafscan/internal/http"
	"leafscan/internal/repository"
	"leafscan/internal/service"
	"leafscan/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	var (
		userRepo  repository.UserRepository
		scanRepo  repository.ScanRepository
		storePing apihttp.Pinger
	)
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.MigratePostgres(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		userRepo = repository.NewPgUserRepository(pool)
		scanRepo = repository.NewPgScanRepository(pool)
		storePing = apihttp.PingFunc(func(ctx context.Context) error { return db.Ping(ctx, pool) })
	case config.StoreDriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal("sqlite open", zap.Error(err))
		}
		defer sqlDB.Close()
		userRepo = repository.NewSQLiteUserRepository(sqlDB)
		scanRepo = repository.NewSQLiteScanRepository(sqlDB)
		storePing = apihttp.PingFunc(sqlDB.PingContext)
	default:
		logger.Warn("using in-memory store, data is lost on restart")
		userRepo = repository.NewMemoryUserRepository()
		scanRepo = repository.NewMemoryScanRepository()
	}

	window := time.Duration(cfg.LoginRateLimitWindowMinutes) * time.Minute
	loginLimiter := service.NewLoginRateLimiter(window, cfg.LoginRateLimitMax)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory login limiter", zap.Error(err))
		} else {
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, window, cfg.LoginRateLimitMax, logger)
		}
		cancel()
	}

	hasher := service.NewArgon2Hasher(service.Argon2Params{
		MemoryKB:   cfg.Argon2MemoryKB,
		Iterations: cfg.Argon2Time,
		Threads:    cfg.Argon2Threads,
	})
	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	userSvc := service.NewUserService(logger, userRepo, hasher, loginLimiter)
	authSvc := service.NewAuthService(logger, userSvc, jwtSvc)

	var model classifier.Classifier = classifier.NewDisabled("CLASSIFIER_URL not set")
	if cfg.ClassifierURL != "" {
		model = classifier.NewHTTPClient(
			cfg.ClassifierURL,
			cfg.ClassifierModel,
			cfg.ClassNames,
			time.Duration(cfg.ClassifierTimeoutSeconds)*time.Second,
			logger,
		)
	} else {
		logger.Warn("classifier not configured, /predict will return 503")
	}

	var images storage.ImageStore
	if cfg.S3Enabled() {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			logger.Warn("s3 image store init failed", zap.Error(err))
		} else {
			images = s3Store
		}
	}
	scanSvc := service.NewScanService(logger, model, scanRepo, images)

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:      logger,
		Auth:        authSvc,
		AuthH:       apihttp.NewAuthHandler(logger, authSvc),
		ScanH:       apihttp.NewScanHandler(logger, scanSvc, cfg.MaxUploadBytes),
		HealthH:     apihttp.NewHealthHandler(logger, storePing),
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
