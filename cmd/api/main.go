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

	_ "github.com/eteeap/admissions-api/api/swagger"
	"github.com/eteeap/admissions-api/internal/handler"
	"github.com/eteeap/admissions-api/internal/middleware"
	"github.com/eteeap/admissions-api/internal/models"
	"github.com/eteeap/admissions-api/internal/repository"
	"github.com/eteeap/admissions-api/internal/service"
	"github.com/eteeap/admissions-api/pkg/cache"
	"github.com/eteeap/admissions-api/pkg/config"
	"github.com/eteeap/admissions-api/pkg/database"
	"github.com/eteeap/admissions-api/pkg/jobs"
	"github.com/eteeap/admissions-api/pkg/logger"
	corsmiddleware "github.com/eteeap/admissions-api/pkg/middleware/cors"
	reqidmiddleware "github.com/eteeap/admissions-api/pkg/middleware/requestid"
	"github.com/eteeap/admissions-api/pkg/storage"
)

// @title Admissions Evaluation API
// @version 1.0.0
// @description Applicant intake, rubric-based assessment, and admission decisions
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional; the dashboard falls back to direct queries.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()

	applicantRepo := repository.NewApplicantRepository(db)
	assessorRepo := repository.NewAssessorRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	counterRepo := repository.NewCounterRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(applicantRepo, assessorRepo, adminRepo, counterRepo, validate, logr, service.AuthConfig{
		Secret:          cfg.JWT.Secret,
		ApplicantExpiry: cfg.JWT.ApplicantExpiry,
		AssessorExpiry:  cfg.JWT.AssessorExpiry,
		AdminExpiry:     cfg.JWT.AdminExpiry,
		Issuer:          cfg.JWT.Issuer,
		CounterStart:    cfg.Counters.Start,
	})
	documentSvc := service.NewDocumentService(documentRepo, service.DocumentConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		ChunkSizeBytes:   cfg.Uploads.ChunkSizeBytes,
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
	}, logr)
	applicantSvc := service.NewApplicantService(applicantRepo, documentRepo, assignmentRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, applicantRepo, assessorRepo, cacheRepo, validate, logr)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, applicantRepo, assignmentRepo, cacheRepo, validate, logr)
	adminSvc := service.NewAdminService(applicantRepo, assessorRepo, adminRepo, assignmentRepo, evaluationRepo, documentRepo, cacheRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(applicantRepo, evaluationRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)
	dashboardSvc.AttachMetrics(metricsSvc)

	reportSvc := service.NewReportService(reportRepo, applicantRepo, store, signer, logr)
	reportWorker := service.NewReportWorker(reportRepo, applicantRepo, evaluationRepo, store, cfg.Reports.WorkerRetries, logr)
	reportQueue := jobs.NewQueue("reports", reportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportSvc.AttachQueue(reportQueue)

	authHandler := handler.NewAuthHandler(authSvc, handler.CookieConfig{
		Secure:          cfg.JWT.CookieSecure,
		ApplicantExpiry: cfg.JWT.ApplicantExpiry,
		AssessorExpiry:  cfg.JWT.AssessorExpiry,
		AdminExpiry:     cfg.JWT.AdminExpiry,
	})
	applicantHandler := handler.NewApplicantHandler(applicantSvc, documentSvc, metricsSvc)
	assessorHandler := handler.NewAssessorHandler(assignmentSvc, applicantSvc, evaluationSvc, documentSvc, metricsSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, assignmentSvc, dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Metrics)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/applicant/register", authHandler.RegisterApplicant)
		auth.POST("/applicant/login", authHandler.LoginApplicant)
		auth.POST("/applicant/logout", authHandler.LogoutApplicant)
		auth.GET("/applicant/status", authHandler.ApplicantAuthStatus)

		auth.POST("/assessor/register", authHandler.RegisterAssessor)
		auth.POST("/assessor/login", authHandler.LoginAssessor)
		auth.POST("/assessor/logout", authHandler.LogoutAssessor)
		auth.GET("/assessor/status", authHandler.AssessorAuthStatus)

		auth.POST("/admin/register", authHandler.RegisterAdmin)
		auth.POST("/admin/login", authHandler.LoginAdmin)
		auth.POST("/admin/logout", authHandler.LogoutAdmin)
		auth.GET("/admin/status", authHandler.AdminAuthStatus)
	}

	applicant := api.Group("/applicant", middleware.Session(authSvc, models.RoleApplicant))
	{
		applicant.GET("/profile", applicantHandler.Profile)
		applicant.PUT("/personal-info", applicantHandler.UpdatePersonalInfo)
		applicant.POST("/documents", applicantHandler.UploadDocuments)
		applicant.GET("/documents", applicantHandler.ListDocuments)
		applicant.GET("/documents/:id", applicantHandler.DownloadDocument)
		applicant.DELETE("/documents/:id", applicantHandler.DeleteDocument)
	}

	assessor := api.Group("/assessor", middleware.Session(authSvc, models.RoleAssessor))
	{
		assessor.GET("/applicants", assessorHandler.AssignedApplicants)
		assessor.GET("/applicants/:id", assessorHandler.ApplicantDetail)
		assessor.GET("/applicants/:id/documents", assessorHandler.ApplicantDocuments)
		assessor.GET("/applicants/:id/documents/:fileId", assessorHandler.DownloadApplicantDocument)
		assessor.GET("/applicants/:id/evaluation", assessorHandler.LatestEvaluation)
		assessor.POST("/evaluations", assessorHandler.SubmitEvaluation)
		assessor.POST("/evaluations/finalize", assessorHandler.FinalizeEvaluation)
	}

	admin := api.Group("/admin", middleware.Session(authSvc, models.RoleAdmin))
	{
		admin.GET("/dashboard", adminHandler.DashboardStats)
		admin.GET("/applicants", adminHandler.ListApplicants)
		admin.GET("/applicants/export", reportHandler.ExportRoster)
		admin.GET("/applicants/:id", adminHandler.GetApplicant)
		admin.POST("/applicants/:id/approve", adminHandler.ApproveApplicant)
		admin.POST("/applicants/:id/reject", adminHandler.RejectApplicant)
		admin.POST("/applicants/:id/report", reportHandler.EnqueueReport)
		admin.POST("/assignments", adminHandler.AssignAssessor)
		admin.GET("/assessors", adminHandler.ListAssessors)
		admin.GET("/assessors/approved", adminHandler.ListApprovedAssessors)
		admin.GET("/assessors/:id", adminHandler.GetAssessor)
		admin.PUT("/assessors/:id", adminHandler.UpdateAssessor)
		admin.DELETE("/assessors/:id", adminHandler.DeleteAssessor)
		admin.GET("/reports/:id", reportHandler.ReportStatus)
		admin.GET("/reports/:id/download", reportHandler.DownloadReport)

		accounts := admin.Group("/accounts")
		{
			accounts.PUT("/:id/password", adminHandler.ChangeAdminPassword)

			super := accounts.Group("", middleware.RequireSuperAdmin())
			{
				super.GET("", adminHandler.ListAdmins)
				super.GET("/:id", adminHandler.GetAdmin)
				super.PUT("/:id", adminHandler.UpdateAdmin)
				super.DELETE("/:id", adminHandler.DeleteAdmin)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reportQueue.Start(ctx)
	defer reportQueue.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
	if err := cacheRepo.Close(); err != nil {
		logr.Sugar().Warnw("failed to close redis", "error", err)
	}
}
