package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/config"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/handlers"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/platform"
	postgresrepo "github.com/CAPTRSTEAM/survey-app-sub000/internal/repositories/postgres"
	redisrepo "github.com/CAPTRSTEAM/survey-app-sub000/internal/repositories/redis"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/services"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/utils"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/validator"
	"github.com/CAPTRSTEAM/survey-app-sub000/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.Survey{}, &models.Question{}, &models.ImportJob{}); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	platformClient := platform.NewClient(platform.Config{
		BaseURL:  cfg.PlatformBaseURL,
		APIToken: cfg.PlatformAPIToken,
	}, logger)

	surveyRepo := postgresrepo.NewSurveyPostgreSQL(db)
	importJobRepo := postgresrepo.NewImportJobPostgreSQL(db)
	responseStore := redisrepo.NewResponseRedis(redisClient)

	surveyService := services.NewSurveyService(surveyRepo, validator.New(), logger)
	responseService := services.NewResponseService(platformClient, responseStore, publisher, logger)
	statisticsService := services.NewStatisticsService(surveyRepo, responseService, logger)
	importExportService := services.NewImportExportService(surveyRepo, responseStore, importJobRepo, responseService, publisher, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.RequestLogger(logger), gin.Recovery())

	handlerManager := handlers.NewHandlerManager(surveyService, responseService, statisticsService, importExportService, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exited")
}
