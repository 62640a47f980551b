package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/config"
	"github.com/frostlab63/sparkapply-sub000/internal/domain/fiber/handler"
	"github.com/frostlab63/sparkapply-sub000/internal/logger"
	"github.com/frostlab63/sparkapply-sub000/internal/matching"
	"github.com/frostlab63/sparkapply-sub000/internal/middleware"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/frostlab63/sparkapply-sub000/internal/recommendation"
	"github.com/frostlab63/sparkapply-sub000/internal/repository"
	"github.com/frostlab63/sparkapply-sub000/internal/scheduler"
	"github.com/frostlab63/sparkapply-sub000/internal/service"
	"github.com/frostlab63/sparkapply-sub000/internal/usecase"
	"github.com/frostlab63/sparkapply-sub000/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("no .env file, using process environment")
	}

	appConfig := config.LoadAppConfig()
	logger.Init(logger.Config{Level: appConfig.LogLevel, Format: appConfig.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := ConnectDB()
	rdb := ConnectRedis(ctx)

	matchingConfig := config.LoadMatchingConfig()

	jobRepo := repository.NewJobRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	embeddingRepo := repository.NewEmbeddingRepository(db)

	// Without the user service, refresh covers every active local profile.
	// With it, there is no local user list, so refresh covers users that
	// already hold active matches.
	var profiles usecase.ProfileProvider = profileRepo
	var refreshUsers scheduler.UserLister = profileRepo
	if usCfg := config.LoadUserServiceConfig(); usCfg.BaseURL != "" {
		profiles = service.NewUserServiceClient(usCfg)
		refreshUsers = matchRepo
		logger.Info().Str("url", usCfg.BaseURL).Msg("reading profiles from user service")
	}

	var events usecase.EventPublisher = service.NoopEventPublisher{}
	if rdb != nil {
		profiles = service.NewCachedProfileProvider(profiles, rdb, config.LoadRedisConfig().ProfileCacheTTL)
		events = service.NewRedisEventPublisher(rdb)
	}

	geminiConfig := config.LoadGeminiConfig()
	var embedder usecase.Embedder
	if geminiConfig.APIKey != "" {
		gemini, err := service.NewGeminiService(ctx, geminiConfig)
		if err != nil {
			logger.Fatal().Err(err).Msg("init gemini")
		}
		embedder = gemini
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, semantic recommendations disabled")
	}

	seed := matchingConfig.RecommendationSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	scorer := matching.NewDefaultScorer()
	engine := recommendation.NewEngine(scorer, recommendation.DefaultWeights(), rand.New(rand.NewSource(seed)))

	matchUC := usecase.NewMatchUsecase(matchRepo, jobRepo, appRepo, profiles, events, scorer, matchingConfig)
	recUC := usecase.NewRecommendationUsecase(matchRepo, jobRepo, profiles, engine, matchingConfig)
	semanticUC := usecase.NewSemanticUsecase(jobRepo, embeddingRepo, profiles, embedder, geminiConfig.EmbeddingModel, matchingConfig)

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return util.ErrorResponse(c, util.ErrorResponseFormat{Code: code, Message: message})
		},
	})
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New(healthcheck.Config{
		LivenessEndpoint:  "/livez",
		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			sqlDB, err := db.DB()
			if err != nil {
				return false
			}
			return sqlDB.PingContext(c.UserContext()) == nil
		},
	}))
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1", middleware.Timeout(appConfig.RequestTimeout))
	perUser := middleware.RateLimiter(50, time.Minute)
	handler.NewMatchHandler(matchUC).RegisterRoutes(api, perUser)
	handler.NewRecommendationHandler(recUC, semanticUC, matchUC).RegisterRoutes(api, perUser)
	handler.NewJobHandler(semanticUC).RegisterRoutes(api)

	sched := scheduler.New(refreshUsers, matchUC, matchingConfig.RefreshCron, matchingConfig.RefreshConcurrency)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("start scheduler")
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Debug().Int("goroutines", runtime.NumGoroutine()).Msg("runtime stats")
			}
		}
	}()

	go func() {
		logger.Info().Str("port", appConfig.Port).Msg("server running")
		if err := app.Listen(appConfig.Port); err != nil {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	sched.Stop(10 * time.Second)
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to database")
	}
	pgDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("could not get database instance")
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	err = db.AutoMigrate(&model.Company{}, &model.Job{}, &model.UserProfile{}, &model.JobMatch{}, &model.Application{})
	if err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		logger.Fatal().Err(err).Msg("enable pgvector")
	}
	if err := db.AutoMigrate(&model.JobEmbedding{}); err != nil {
		logger.Fatal().Err(err).Msg("migrate job embeddings")
	}
	return db
}

// ConnectRedis returns nil when REDIS_URL is unset.
func ConnectRedis(ctx context.Context) *redis.Client {
	cfg := config.LoadRedisConfig()
	if cfg.URL == "" {
		logger.Warn().Msg("REDIS_URL not set, profile cache and events disabled")
		return nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse REDIS_URL")
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("redis ping")
	}
	return rdb
}
