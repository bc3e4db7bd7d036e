package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/scribeconnect/scribe-portal-api/api/swagger"
	"github.com/scribeconnect/scribe-portal-api/internal/handler"
	"github.com/scribeconnect/scribe-portal-api/internal/middleware"
	"github.com/scribeconnect/scribe-portal-api/internal/models"
	"github.com/scribeconnect/scribe-portal-api/internal/notify"
	"github.com/scribeconnect/scribe-portal-api/internal/repository"
	"github.com/scribeconnect/scribe-portal-api/internal/service"
	"github.com/scribeconnect/scribe-portal-api/internal/sweep"
	"github.com/scribeconnect/scribe-portal-api/pkg/cache"
	"github.com/scribeconnect/scribe-portal-api/pkg/clock"
	"github.com/scribeconnect/scribe-portal-api/pkg/config"
	"github.com/scribeconnect/scribe-portal-api/pkg/database"
	"github.com/scribeconnect/scribe-portal-api/pkg/logger"
	"github.com/scribeconnect/scribe-portal-api/pkg/mailer"
	corsmiddleware "github.com/scribeconnect/scribe-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/scribeconnect/scribe-portal-api/pkg/middleware/requestid"
)

// @title Scribe Portal API
// @version 1.0.0
// @description Matches students with disabilities to volunteer scribes for exams.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, cfg.Database.MigrationsDir); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
	}

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close()
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	scribeRepo := repository.NewScribeRepository(db)
	requestRepo := repository.NewExamRequestRepository(db)
	inviteRepo := repository.NewInvitationRepository(db)
	unavailRepo := repository.NewUnavailabilityRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	dispatcher := notify.NewDispatcher(buildMailer(cfg, logr), cfg.Frontend.BaseURL, logr)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT.Secret)
	matchingSvc := service.NewMatchingService(requestRepo, scribeRepo, cacheRepo, cfg.Matching.CandidateCacheTTL, cfg.Matching.PageSize, validate, logr)
	invitationSvc := service.NewInvitationService(inviteRepo, requestRepo, scribeRepo, userRepo, dispatcher, validate, logr)
	requestSvc := service.NewRequestService(requestRepo, scribeRepo, logr)
	scribeSvc := service.NewScribeService(scribeRepo, unavailRepo, cacheRepo, validate, logr)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, requestRepo, validate, logr)
	chatSvc := service.NewChatService(requestRepo, scribeRepo, cfg.Chat.TokenSecret, cfg.Chat.TokenTTL, logr)

	sweeper := sweep.New(requestRepo, metricsSvc, clock.System{}, cfg.Sweep.Interval, logr)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	studentHandler := handler.NewStudentHandler(matchingSvc, invitationSvc, requestSvc, feedbackSvc, metricsSvc)
	scribeHandler := handler.NewScribeHandler(invitationSvc, requestSvc, scribeSvc, metricsSvc)
	locationHandler := handler.NewLocationHandler()
	chatHandler := handler.NewChatHandler(chatSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	student := api.Group("/student", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent))
	{
		student.POST("/createRequest", studentHandler.CreateRequest)
		student.GET("/load-scribes", studentHandler.LoadScribes)
		student.POST("/send-request", studentHandler.SendRequest)
		student.GET("/get-requests", studentHandler.GetRequests)
		student.POST("/feedback", studentHandler.Feedback)
	}

	scribe := api.Group("/scribe", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleScribe))
	{
		scribe.POST("/acceptRequest", scribeHandler.AcceptRequest)
		scribe.POST("/reject-invite", scribeHandler.RejectInvite)
		scribe.GET("/get-request", scribeHandler.GetRequests)
		scribe.GET("/invites", scribeHandler.Invites)
		scribe.GET("/profile", scribeHandler.Profile)
		scribe.GET("/get-unavailability", scribeHandler.GetUnavailability)
		scribe.POST("/set-unavailability", scribeHandler.SetUnavailability)
		scribe.POST("/delete-unavailability", scribeHandler.DeleteUnavailability)
	}

	chat := api.Group("/chat", middleware.JWT(authSvc))
	{
		chat.POST("/token", chatHandler.Token)
	}

	locationGroup := api.Group("/locations")
	{
		locationGroup.GET("/states", locationHandler.States)
		locationGroup.GET("/districts/:state", locationHandler.Districts)
		locationGroup.GET("/metadata", locationHandler.Metadata)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func buildMailer(cfg *config.Config, logr *zap.Logger) mailer.Mailer {
	if cfg.Mail.Provider == "sendgrid" && cfg.Mail.SendgridAPIKey != "" {
		return mailer.NewSendgrid(cfg.Mail.SendgridAPIKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	}
	return mailer.NewConsole(logr)
}
