package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/univpanel/scheduling-api/api/swagger"
	"github.com/univpanel/scheduling-api/internal/handler"
	"github.com/univpanel/scheduling-api/internal/middleware"
	"github.com/univpanel/scheduling-api/internal/models"
	"github.com/univpanel/scheduling-api/internal/repository"
	"github.com/univpanel/scheduling-api/internal/service"
	"github.com/univpanel/scheduling-api/pkg/cache"
	"github.com/univpanel/scheduling-api/pkg/config"
	"github.com/univpanel/scheduling-api/pkg/database"
	"github.com/univpanel/scheduling-api/pkg/logger"
	corsmiddleware "github.com/univpanel/scheduling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/univpanel/scheduling-api/pkg/middleware/requestid"
	"github.com/univpanel/scheduling-api/pkg/storage"
)

// @title Campus Scheduling API
// @version 1.0.0
// @description Room, period and schedule management with professor substitution handling
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare exports directory", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	roomRepo := repository.NewRoomRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	substituteRepo := repository.NewSubstituteRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)

	roomSvc := service.NewRoomService(roomRepo, nil, logr)
	periodSvc := service.NewPeriodService(periodRepo, roomRepo, subjectRepo, nil, cacheSvc, metricsSvc, nil, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, periodSvc, nil, logr)
	scheduleFiles := storage.NewScheduleFiles(exportStore)
	substitutionSvc := service.NewSubstitutionService(substituteRepo, accountRepo, scheduleFiles, nil, logr)
	accountSvc := service.NewAccountService(accountRepo, nil, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, nil, logr)
	timetableSvc := service.NewTimetableService(roomRepo, periodRepo, subjectRepo, cacheSvc, cfg.Timetable.CacheTTL, logr)
	exportSvc := service.NewExportService(timetableSvc, scheduleSvc, roomRepo, exportStore, logr, cfg.Exports.Enabled)

	roomHandler := handler.NewRoomHandler(roomSvc)
	periodHandler := handler.NewPeriodHandler(periodSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	substitutionHandler := handler.NewSubstitutionHandler(substitutionSvc)
	accountHandler := handler.NewAccountHandler(accountSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	rooms := api.Group("/rooms")
	rooms.GET("", roomHandler.List)
	rooms.GET("/available", roomHandler.Available)
	rooms.GET("/kind/:kind", roomHandler.ByKind)
	rooms.GET("/physical/:kind", roomHandler.BySubKind)
	rooms.GET("/:id", roomHandler.Get)
	rooms.GET("/:id/timetable", timetableHandler.ForRoom)
	rooms.GET("/:id/timetable/export", timetableHandler.ExportRoom)
	rooms.POST("", middleware.Audit(accountRepo, models.AuditActionRoomWrite, "room"), roomHandler.Create)
	rooms.PUT("/:id", middleware.Audit(accountRepo, models.AuditActionRoomWrite, "room"), roomHandler.Update)
	rooms.PATCH("/:id/maintenance", middleware.Audit(accountRepo, models.AuditActionRoomWrite, "room"), roomHandler.SetMaintenance)
	rooms.PATCH("/:id/occupied", middleware.Audit(accountRepo, models.AuditActionRoomWrite, "room"), roomHandler.SetOccupied)
	rooms.DELETE("/:id", middleware.Audit(accountRepo, models.AuditActionRoomWrite, "room"), roomHandler.Delete)

	periods := api.Group("/periods")
	periods.GET("", periodHandler.List)
	periods.GET("/:id", periodHandler.Get)
	periods.POST("", middleware.Audit(accountRepo, models.AuditActionPeriodWrite, "period"), periodHandler.Create)
	periods.PUT("/:id", middleware.Audit(accountRepo, models.AuditActionPeriodWrite, "period"), periodHandler.Update)
	periods.DELETE("/:id", middleware.Audit(accountRepo, models.AuditActionPeriodWrite, "period"), periodHandler.Delete)
	if cfg.Seeder.Enabled {
		periods.POST("/seed", middleware.Audit(accountRepo, models.AuditActionPeriodWrite, "period"), periodHandler.Seed)
	}

	schedules := api.Group("/schedules")
	schedules.GET("", scheduleHandler.List)
	schedules.GET("/professor/:professorId", scheduleHandler.ByProfessor)
	schedules.GET("/subject/:subjectId", scheduleHandler.BySubject)
	schedules.GET("/day/:day", scheduleHandler.ByDay)
	schedules.GET("/room/:roomId", scheduleHandler.ByRoom)
	schedules.GET("/:id", scheduleHandler.Get)
	schedules.GET("/:id/export", timetableHandler.ExportSchedule)
	schedules.POST("", middleware.Audit(accountRepo, models.AuditActionScheduleWrite, "schedule"), scheduleHandler.Create)
	schedules.POST("/:id/periods", middleware.Audit(accountRepo, models.AuditActionScheduleWrite, "schedule"), scheduleHandler.AddPeriod)
	schedules.DELETE("/:id", middleware.Audit(accountRepo, models.AuditActionScheduleWrite, "schedule"), scheduleHandler.Delete)
	schedules.DELETE("/:id/periods/:periodId", middleware.Audit(accountRepo, models.AuditActionScheduleWrite, "schedule"), scheduleHandler.RemovePeriod)

	substitutions := api.Group("/substitutions")
	substitutions.GET("", substitutionHandler.ListAll)
	substitutions.GET("/active", substitutionHandler.ListActive)
	substitutions.GET("/:id", substitutionHandler.Get)
	substitutions.POST("/promote", middleware.Audit(accountRepo, models.AuditActionPromotion, "substitution"), substitutionHandler.Promote)
	substitutions.POST("/revert/:accountId", middleware.Audit(accountRepo, models.AuditActionReversion, "substitution"), substitutionHandler.Revert)

	accounts := api.Group("/accounts")
	accounts.GET("", accountHandler.List)
	accounts.GET("/username/:username", accountHandler.GetByUsername)
	accounts.GET("/:id", accountHandler.Get)
	accounts.POST("", accountHandler.Create)
	accounts.DELETE("/:id", middleware.Audit(accountRepo, models.AuditActionAccountDelete, "account"), accountHandler.Delete)

	subjects := api.Group("/subjects")
	subjects.GET("", subjectHandler.List)
	subjects.GET("/:id", subjectHandler.Get)
	subjects.POST("", subjectHandler.Create)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
