package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/classtrack/approval-api/api/swagger"
	"github.com/classtrack/approval-api/internal/dto"
	"github.com/classtrack/approval-api/internal/handler"
	internalmiddleware "github.com/classtrack/approval-api/internal/middleware"
	"github.com/classtrack/approval-api/internal/models"
	"github.com/classtrack/approval-api/internal/repository"
	"github.com/classtrack/approval-api/internal/service"
	"github.com/classtrack/approval-api/pkg/cache"
	"github.com/classtrack/approval-api/pkg/config"
	"github.com/classtrack/approval-api/pkg/database"
	"github.com/classtrack/approval-api/pkg/export"
	"github.com/classtrack/approval-api/pkg/jobs"
	"github.com/classtrack/approval-api/pkg/logger"
	corsmiddleware "github.com/classtrack/approval-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classtrack/approval-api/pkg/middleware/requestid"
)

// @title ClassTrack Approval API
// @version 1.0.0
// @description Grade and honor approval workflow service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	gradeRepo := repository.NewGradeRepository(db)
	honorRepo := repository.NewHonorRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT)

	honorSvc := service.NewHonorService(honorRepo, gradeRepo, catalogRepo, auditRepo, nil, logr,
		service.WithHonorTransitionObserver(metricsSvc))

	evalQueue := jobs.NewQueue("honor-evaluation", func(ctx context.Context, job jobs.Job) error {
		req, ok := job.Payload.(dto.EvaluateHonorsRequest)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		_, err := honorSvc.Evaluate(ctx, req)
		return err
	}, jobs.QueueConfig{
		Workers:    cfg.Honors.EvalWorkers,
		BufferSize: cfg.Honors.EvalBuffer,
		MaxRetries: cfg.Honors.EvalMaxRetries,
		RetryDelay: cfg.Honors.EvalRetryDelay,
		Logger:     logr,
	})

	trigger := service.EvaluationTriggerFunc(func(studentID, academicLevelID, schoolYear string) {
		err := evalQueue.Enqueue(jobs.Job{
			Type: "honor.evaluate",
			Payload: dto.EvaluateHonorsRequest{
				StudentID:       studentID,
				AcademicLevelID: academicLevelID,
				SchoolYear:      schoolYear,
			},
		})
		if err != nil {
			logr.Warn("failed to enqueue honor evaluation",
				zap.String("student_id", studentID), zap.Error(err))
		}
	})

	gradeSvc := service.NewGradeWorkflowService(gradeRepo, catalogRepo, auditRepo, nil, logr,
		service.WithEvaluationTrigger(trigger),
		service.WithTransitionObserver(metricsSvc))

	certificateSvc := service.NewCertificateService(honorRepo)
	reportSvc := service.NewReportService(honorRepo, cacheRepo, export.NewCSVExporter(), export.NewPDFExporter(), cfg.Reports.CacheTTL, logr)

	gradeHandler := handler.NewGradeHandler(gradeSvc)
	honorHandler := handler.NewHonorHandler(honorSvc)
	certificateHandler := handler.NewCertificateHandler(certificateSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(authSvc))

	staff := internalmiddleware.RequireRoles(models.RoleInstructor, models.RoleChairperson, models.RolePrincipal, models.RoleAdmin)
	validators := internalmiddleware.RequireRoles(models.RoleChairperson, models.RolePrincipal, models.RoleAdmin)
	principalOnly := internalmiddleware.RequireRoles(models.RolePrincipal, models.RoleAdmin)

	grades := api.Group("/grades")
	{
		grades.POST("", staff, gradeHandler.Create)
		grades.GET("", staff, gradeHandler.List)
		grades.GET("/pending", validators, gradeHandler.ListPending)
		grades.POST("/:id/submit", staff, gradeHandler.Submit)
		grades.POST("/:id/approve", validators, gradeHandler.Approve)
		grades.POST("/:id/return", validators, gradeHandler.Return)
	}

	honors := api.Group("/honors")
	{
		honors.POST("/evaluate", validators, honorHandler.Evaluate)
		honors.GET("", validators, honorHandler.List)
		honors.GET("/pending", validators, honorHandler.ListPending)
		honors.POST("/:id/approve", principalOnly, honorHandler.Approve)
		honors.POST("/:id/reject", principalOnly, honorHandler.Reject)
	}

	criteria := api.Group("/honor-criteria")
	{
		criteria.GET("", staff, honorHandler.ListCriteria)
		criteria.POST("", principalOnly, honorHandler.CreateCriterion)
		criteria.PUT("/:id", principalOnly, honorHandler.UpdateCriterion)
	}

	api.GET("/certificates/eligibility", staff, certificateHandler.Eligibility)

	if cfg.Reports.Enabled {
		api.GET("/reports/honor-roll", validators, reportHandler.HonorRoll)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	evalQueue.Start(ctx)
	defer evalQueue.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
