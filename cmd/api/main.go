package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/twoschool/twoschool-api/api/swagger"
	"github.com/twoschool/twoschool-api/internal/handler"
	"github.com/twoschool/twoschool-api/internal/middleware"
	"github.com/twoschool/twoschool-api/internal/repository"
	"github.com/twoschool/twoschool-api/internal/service"
	"github.com/twoschool/twoschool-api/pkg/config"
	"github.com/twoschool/twoschool-api/pkg/database"
	"github.com/twoschool/twoschool-api/pkg/logger"
	"github.com/twoschool/twoschool-api/pkg/mail"
	corsmiddleware "github.com/twoschool/twoschool-api/pkg/middleware/cors"
	reqidmiddleware "github.com/twoschool/twoschool-api/pkg/middleware/requestid"
	"github.com/twoschool/twoschool-api/pkg/storage"
)

// @title 2school API
// @version 1.0.0
// @description Role-based school management backend
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	local, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init storage", "error", err)
	}
	attachments := storage.NewAttachmentStore(local, cfg.Storage.PublicBaseURL, logr)

	var mailer mail.Mailer
	if cfg.Mail.Provider == "sendgrid" && cfg.Mail.SendGridKey != "" {
		mailer = mail.NewSendGridMailer(cfg.Mail.SendGridKey, cfg.Mail.AppName, cfg.Mail.FromEmail, logr)
	} else {
		mailer = mail.NewConsoleMailer(logr)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	itemRepo := repository.NewItemRepository(db)
	gradeRepo := repository.NewGradeRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
	})
	userSvc := service.NewUserService(userRepo, classRepo, itemRepo, gradeRepo, attachments, mailer, cfg.Mail, validate, logr)
	classSvc := service.NewClassService(classRepo, userRepo, itemRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, userRepo, validate, logr)
	itemSvc := service.NewItemService(itemRepo, classRepo, userRepo, subjectRepo, attachments, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, userRepo, subjectRepo, validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(reqidmiddleware.Middleware())
	router.Use(logger.GinMiddleware(logr))
	router.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics(metricsSvc))
	}

	handler.Register(router, handler.Handlers{
		Auth:    handler.NewAuthHandler(authSvc),
		Users:   handler.NewUserHandler(userSvc, authSvc),
		Classes: handler.NewClassHandler(classSvc),
		Subject: handler.NewSubjectHandler(subjectSvc),
		Items:   handler.NewItemHandler(itemSvc, attachments, metricsSvc),
		Grades:  handler.NewGradeHandler(gradeSvc),
		Health:  handler.NewHealthHandler(db),
	}, authSvc, metricsSvc, middleware.DefaultPermissions(), cfg.Env != config.EnvProduction)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := router.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
