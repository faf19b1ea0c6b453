// File: wandr/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wandr/config"
	"wandr/cron"
	"wandr/database"
	blockedRepo "wandr/database/repository/blocked"
	calendarRepo "wandr/database/repository/calendar"
	feedbackRepo "wandr/database/repository/feedback"
	profileRepo "wandr/database/repository/profile"
	recommendationRepo "wandr/database/repository/recommendation"
	"wandr/handlers"
	"wandr/middleware"
	"wandr/routes"
	"wandr/services/feed"
	"wandr/services/feedback"
	"wandr/services/places"
	"wandr/services/schedule"
	"wandr/services/scoring"
	"wandr/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitQueue()
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	blocked := blockedRepo.NewMongoBlockedRepo()
	calendar := calendarRepo.NewMongoCalendarRepo()
	fbRepo := feedbackRepo.NewMongoFeedbackRepo()
	profiles := profileRepo.NewMongoProfileRepo()
	recRepo := recommendationRepo.NewMongoRecommendationRepo()

	// Background worker: batch purges and feedback commits.
	cron.InitEngineWorker(recRepo, fbRepo)

	// services.
	source := places.NewHTTPCandidateSource()
	engine := scoring.NewEngine(fbRepo)
	cache := feed.NewRedisRecommendationCache(
		utils.GetCacheClient(),
		time.Duration(config.AppConfig.CacheTTLHours)*time.Hour,
	)
	feedService := &feed.DefaultFeedService{
		Source:   source,
		Scorer:   engine,
		Cache:    cache,
		RecRepo:  recRepo,
		Blocked:  blocked,
		Profiles: profiles,
		Queue:    utils.GetQueueClient(),
		Sessions: feed.NewSessionStore(),
		Cfg:      feed.ConfigFromApp(),
	}
	detector := schedule.NewConflictDetector(calendar)
	feedbackService := feedback.NewService(fbRepo, utils.GetQueueClient())

	// handlers.
	feedHandler := handlers.NewFeedHandler(feedService, profiles)
	scheduleHandler := handlers.NewScheduleHandler(detector)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	profileHandler := handlers.NewProfileHandler(profiles)

	handlerBundle := &handlers.HandlerBundle{
		// Feed endpoints.
		GetFeedHandler:      feedHandler.GetFeedHandler,
		LoadMoreHandler:     feedHandler.LoadMoreHandler,
		RefreshHandler:      feedHandler.RefreshHandler,
		BlockVenueHandler:   feedHandler.BlockVenueHandler,
		UnblockVenueHandler: feedHandler.UnblockVenueHandler,

		// Schedule endpoints.
		CheckConflictHandler: scheduleHandler.CheckConflictHandler,
		CreateEventHandler:   scheduleHandler.CreateEventHandler,
		DeleteEventHandler:   scheduleHandler.DeleteEventHandler,

		// Feedback endpoint.
		SubmitFeedbackHandler: feedbackHandler.SubmitFeedbackHandler,

		// Profile endpoints.
		UpsertProfileHandler: profileHandler.UpsertProfileHandler,
		GetProfileHandler:    profileHandler.GetProfileHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
