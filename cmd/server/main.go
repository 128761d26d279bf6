package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"liquidhire/internal/config"
	"liquidhire/internal/gateway"
	"liquidhire/internal/handlers"
	"liquidhire/internal/interview"
	"liquidhire/internal/jobs"
	"liquidhire/internal/llm"
	_ "liquidhire/internal/llm/gemini"
	_ "liquidhire/internal/llm/groq"
	"liquidhire/internal/metrics"
	"liquidhire/internal/middleware"
	"liquidhire/internal/models"
	"liquidhire/internal/prompts"
	"liquidhire/internal/repositories"
	mongorepo "liquidhire/internal/repositories/mongo"
	"liquidhire/internal/routers"
	"liquidhire/internal/utils"
)

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresUser, cfg.PostgresPassword,
		cfg.PostgresDB, cfg.PostgresPort, cfg.PostgresSSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Profile{}, &models.Skill{}, &models.Interview{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func main() {
	_ = godotenv.Load()

	utils.InitLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Info("Configuration loaded", zap.String("provider", cfg.AIProvider))

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	userRepo := &repositories.UserRepository{DB: db}
	profileRepo := &repositories.ProfileRepository{DB: db}
	interviewRepo := &repositories.InterviewRepository{DB: db}

	// jobs catalog is optional; without mongo the endpoint reports 503
	var jobRepo repositories.JobRepository
	var mongoClient *mongorepo.Client
	if cfg.MongoURI != "" {
		mongoClient, err = mongorepo.NewClient(context.Background(), cfg.MongoURI)
		if err != nil {
			logger.Error("Failed to connect to mongo, jobs catalog disabled", zap.Error(err))
		} else {
			repo, err := mongorepo.NewJobRepo(mongoClient, cfg.MongoDatabase, cfg.JobsCollection)
			if err != nil {
				logger.Error("Failed to open jobs collection, jobs catalog disabled", zap.Error(err))
			} else {
				jobRepo = repo
			}
		}
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable, live session registry disabled", zap.Error(err))
			rdb = nil
		}
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	aiProvider, err := llm.NewProvider(cfg.AIProvider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	chatHandler := handlers.NewChatHandler(aiProvider, promptManager, logger)
	endHandler := handlers.NewEndInterviewHandler(aiProvider, promptManager, logger)
	interviewHandler := handlers.NewInterviewHandler(interviewRepo, logger)
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(profileRepo, logger)
	resumeHandler := handlers.NewResumeHandler(logger)
	tailorHandler := handlers.NewTailorHandler(aiProvider, promptManager, logger)
	jobHandler := handlers.NewJobHandler(jobRepo, logger)
	healthHandler := handlers.NewHealthHandler(cfg.AIProvider)

	// the live gateway consumes the chat and scoring endpoints over HTTP,
	// same surface external callers use
	apiClient := interview.NewAPIClient(cfg.InterviewAPIBase)
	registry := gateway.NewRegistry(rdb, cfg.SessionDuration+5*time.Minute)
	liveHandler := gateway.NewHandler(cfg, apiClient, gateway.NewInterviewStore(interviewRepo), registry, logger)

	refreshJob := jobs.NewRefreshJob(jobRepo, &jobs.RefreshConfig{
		Schedule: cfg.JobsRefreshSchedule,
		FeedURL:  cfg.JobsFeedURL,
		Enabled:  cfg.JobsRefreshEnabled,
	}, logger)
	if err := refreshJob.Start(); err != nil {
		logger.Error("Failed to start jobs feed refresher", zap.Error(err))
	}

	retentionJob := jobs.NewRetentionJob(interviewRepo, jobRepo, &jobs.RetentionConfig{
		Schedule:      cfg.RetentionSchedule,
		ListingMaxAge: cfg.RetentionListingAge,
		DeletedMaxAge: cfg.RetentionDeletedAge,
		Enabled:       cfg.RetentionSweepEnabled,
	}, logger)
	if err := retentionJob.Start(); err != nil {
		logger.Error("Failed to start retention sweeper", zap.Error(err))
	}

	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Logger, chimiddleware.Recoverer)
	router.Use(metrics.Middleware())

	// long-lived, no request timeout
	router.Get("/ws/interview", liveHandler.Live)

	api := chi.NewRouter()
	api.Use(chimiddleware.Timeout(120 * time.Second))
	routers.HealthRoutes(api, healthHandler)
	routers.AuthRoutes(api, authHandler)
	routers.InterviewRoutes(api, chatHandler, endHandler, interviewHandler, cfg.JWTSecret)
	routers.ProfileRoutes(api, profileHandler, cfg.JWTSecret)
	routers.ToolkitRoutes(api, resumeHandler, tailorHandler, jobHandler)
	api.With(middleware.RequireAuth(cfg.JWTSecret)).Get("/api/live-sessions", liveHandler.Sessions)
	router.Mount("/", api)

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("LiquidHire server starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("LiquidHire server shutting down...")

	refreshJob.Stop()
	retentionJob.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	if mongoClient != nil {
		_ = mongoClient.Disconnect(context.Background())
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("LiquidHire server exited")
}
