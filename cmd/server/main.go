package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planner-service/internal/infrastructure/config"
	"planner-service/internal/infrastructure/persistence"
	"planner-service/internal/interface/api"
	"planner-service/internal/interface/repository"
	"planner-service/internal/usecase"
	"planner-service/pkg/logger"
	"planner-service/pkg/metrics"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Planner Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Set up PostgreSQL connection for the session store
	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up repositories
	sessionRepository := repository.NewGormSessionRepository(gormDB)
	awardCacheRepository := repository.NewMongoAwardCacheRepository(db)
	savedPlanRepository := repository.NewMongoSavedPlanRepository(db)

	// Set up metrics and usecases
	m := metrics.NewMetrics("planner")
	planner := usecase.NewPlanner(awardCacheRepository, sessionRepository, log, m)
	planManager := usecase.NewPlanManager(
		savedPlanRepository,
		awardCacheRepository,
		sessionRepository,
		log,
		m,
		cfg.ShareBaseURL,
		cfg.AppVersion,
	)

	// Set up HTTP server
	handler := api.NewHandler(api.Deps{
		Planner:  planner,
		Plans:    planManager,
		Sessions: sessionRepository,
		Logger:   log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(ctx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Planner Service stopped")
}
