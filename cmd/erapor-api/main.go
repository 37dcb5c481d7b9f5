package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/erapor-sd-api/internal/handler"
	"github.com/noah-isme/erapor-sd-api/internal/middleware"
	"github.com/noah-isme/erapor-sd-api/internal/models"
	"github.com/noah-isme/erapor-sd-api/internal/repository"
	"github.com/noah-isme/erapor-sd-api/internal/service"
	"github.com/noah-isme/erapor-sd-api/pkg/cache"
	"github.com/noah-isme/erapor-sd-api/pkg/config"
	"github.com/noah-isme/erapor-sd-api/pkg/database"
	"github.com/noah-isme/erapor-sd-api/pkg/export"
	"github.com/noah-isme/erapor-sd-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/erapor-sd-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/erapor-sd-api/pkg/middleware/requestid"
	"github.com/noah-isme/erapor-sd-api/pkg/storage"
)

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

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, standings cache disabled", "error", err)
			redisClient = nil
		}
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	store := repository.NewStore(db)
	studentRepo := repository.NewStudentRepository(store)
	gradeRepo := repository.NewGradeRepository(store)
	attendanceRepo := repository.NewAttendanceRepository(store)
	settingsRepo := repository.NewSettingsRepository(store)
	objectiveRepo := repository.NewObjectiveRepository(store)
	credentialRepo := repository.NewCredentialRepository(store)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Ledger.CacheTTL, logr, cfg.Redis.Enabled && redisClient != nil)
	ledgerSvc := service.NewLedgerService(studentRepo, gradeRepo, cacheSvc, logr)
	studentSvc := service.NewStudentService(studentRepo, ledgerSvc, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, studentRepo, ledgerSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, validate, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, validate, logr)
	objectiveSvc := service.NewObjectiveService(objectiveRepo, validate, logr)
	reportSvc := service.NewReportService(studentRepo, gradeRepo, attendanceRepo, settingsRepo, ledgerSvc, logr)
	importSvc := service.NewImportService(studentRepo, objectiveRepo, ledgerSvc, metricsSvc, logr)
	commentSvc := service.NewCommentService(cfg.Comments, logr)
	authSvc := service.NewAuthService(credentialRepo, settingsRepo, cfg.JWT, cfg.Admin, validate, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err, "dir", cfg.Exports.StorageDir)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(
		reportSvc,
		export.NewPDFRenderer(),
		export.NewCSVExporter(),
		exportStore,
		signer,
		metricsSvc,
		cfg.Exports,
		cfg.APIPrefix,
		logr,
	)

	ctx := context.Background()
	exportSvc.StartCleanup(ctx)

	if cfg.Seed.Enabled {
		seeder := repository.NewSeeder(store, studentRepo, objectiveRepo, logr)
		if err := seeder.Run(ctx); err != nil {
			logr.Sugar().Warnw("seeding skipped", "error", err)
		}
	}

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, importSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	objectiveHandler := handler.NewObjectiveHandler(objectiveSvc, importSvc)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc, reportSvc, exportSvc)
	reportHandler := handler.NewReportHandler(reportSvc, exportSvc)
	commentHandler := handler.NewCommentHandler(commentSvc, studentSvc, gradeSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/teacher/login", authHandler.TeacherLogin)
		auth.POST("/admin/login", authHandler.AdminLogin)

		protected := auth.Group("", middleware.JWT(authSvc))
		protected.GET("/me", authHandler.Me)
		protected.POST("/change-password", authHandler.ChangePassword)
		protected.PUT("/profile", authHandler.UpdateProfile)
	}

	// Signed download links carry their own authorization in the token.
	api.GET("/exports/download/:token", reportHandler.Download)

	authed := api.Group("", middleware.JWT(authSvc))

	students := authed.Group("/students")
	{
		students.GET("", studentHandler.List)
		students.POST("", studentHandler.Create)
		students.POST("/import", studentHandler.Import)
		students.GET("/:id", studentHandler.Get)
		students.PUT("/:id", studentHandler.Update)
		students.DELETE("/:id", studentHandler.Delete)
	}

	grades := authed.Group("/grades")
	{
		grades.GET("", gradeHandler.List)
		grades.PUT("", gradeHandler.Save)
	}

	attendance := authed.Group("/attendance")
	{
		attendance.GET("/:studentId", attendanceHandler.Get)
		attendance.PUT("", attendanceHandler.Save)
	}

	settings := authed.Group("/settings")
	{
		settings.GET("", settingsHandler.Get)
		settings.PUT("", middleware.RequireRoles(models.RoleAdmin), settingsHandler.Save)
		settings.PUT("/teachers/:classLevel", middleware.RequireRoles(models.RoleAdmin), settingsHandler.UpdateTeacher)
	}

	objectives := authed.Group("/objectives")
	{
		objectives.GET("", objectiveHandler.List)
		objectives.POST("", objectiveHandler.Save)
		objectives.POST("/import", objectiveHandler.Import)
		objectives.DELETE("/:id", objectiveHandler.Delete)
	}

	ledger := authed.Group("/ledger/:classLevel", middleware.ClassScope("classLevel"))
	{
		ledger.GET("", ledgerHandler.Standings)
		ledger.GET("/document", ledgerHandler.Document)
		ledger.POST("/export/pdf", ledgerHandler.ExportPDF)
		ledger.POST("/export/csv", ledgerHandler.ExportCSV)
	}

	reports := authed.Group("/reports")
	{
		reports.GET("/students/:id", reportHandler.Document)
		reports.GET("/students/:id/cover", reportHandler.Cover)
		reports.POST("/students/:id/export", reportHandler.ExportReport)
		reports.POST("/students/:id/cover/export", reportHandler.ExportCover)
		reports.POST("/classes/:classLevel/export", middleware.ClassScope("classLevel"), reportHandler.ExportClass)
	}

	authed.POST("/comments/draft", commentHandler.Draft)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
