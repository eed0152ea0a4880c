package main

import (
	"context"
	"fmt"
	"log"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"deckforge/internal/api"
	"deckforge/internal/config"
	"deckforge/internal/database"
	"deckforge/internal/ephemeral"
	"deckforge/internal/events"
	"deckforge/internal/llm"
	"deckforge/internal/logging"
	"deckforge/internal/repositories"
	"deckforge/internal/retrieval"
	"deckforge/internal/review"
	"deckforge/internal/services"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.LogMode, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Sync()

	db, err := database.Init(database.Config{Path: cfg.DatabasePath, LogLevel: gormlogger.Warn})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	ctx := context.Background()

	var store ephemeral.Store
	if cfg.RedisAddr != "" {
		redisStore, err := ephemeral.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "")
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		memStore := ephemeral.NewMemoryStore()
		memStore.StartSweeper(time.Minute)
		defer memStore.Close()
		store = memStore
	}

	var emitter events.Emitter
	if cfg.RedisAddr != "" {
		bus, err := events.NewRedisBus(logger, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "deckforge:events")
		if err != nil {
			return fmt.Errorf("failed to connect event bus: %w", err)
		}
		defer bus.Close()
		emitter = bus
	} else {
		emitter = events.NewLogEmitter(logger)
	}

	tierModels, err := llm.BuildTierModels(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build chat models: %w", err)
	}
	executor := llm.NewExecutor(tierModels, logger)

	thresholds := review.ThresholdConfig{}
	if cfg.ReviewConfigPath != "" {
		thresholds, err = review.LoadThresholdConfig(cfg.ReviewConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load review thresholds: %w", err)
		}
	}

	userRepo := repositories.NewUserRepository(db)
	presRepo := repositories.NewPresentationRepository(db)
	slideRepo := repositories.NewSlideRepository(db)
	creditRepo := repositories.NewCreditRepository(db)
	themeRepo := repositories.NewThemeRepository(db)

	retriever := retrieval.Empty{}

	themeService := services.NewThemeService(themeRepo)
	if err := themeService.EnsureDefault(ctx, cfg.DefaultThemeID, "Classic Light"); err != nil {
		return fmt.Errorf("failed to seed default theme: %w", err)
	}

	outlineService := services.NewOutlineService(executor, retriever, logger)
	slideWriter := services.NewSlideWriter(executor, retriever, slideRepo, emitter, logger, services.SlideWriterOptions{})
	reviewer := review.NewPipeline(executor, retriever, thresholds, review.Options{}, logger)
	validationService := services.NewValidationService(store, slideRepo, services.NewLogFeedbackLogger(logger), logger, cfg.PendingValidationTTL, cfg.AutoApproveTTL)
	generationService := services.NewGenerationService(cfg, userRepo, presRepo, slideRepo, creditRepo, themeService, outlineService, slideWriter, reviewer, validationService, emitter, logger)
	presentationService := services.NewPresentationService(presRepo, validationService)
	creditService := services.NewCreditService(creditRepo)

	server := api.NewServer(generationService, presentationService, validationService, creditService, themeService, logger)
	logger.Infow("deckforge listening", "addr", cfg.HTTPAddr)
	return server.Router().Run(cfg.HTTPAddr)
}
