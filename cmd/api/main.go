package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edricrolandli/cssc-api/api/swagger"
	"github.com/edricrolandli/cssc-api/internal/handler"
	"github.com/edricrolandli/cssc-api/internal/middleware"
	"github.com/edricrolandli/cssc-api/internal/models"
	"github.com/edricrolandli/cssc-api/internal/repository"
	"github.com/edricrolandli/cssc-api/internal/service"
	"github.com/edricrolandli/cssc-api/pkg/cache"
	"github.com/edricrolandli/cssc-api/pkg/config"
	"github.com/edricrolandli/cssc-api/pkg/database"
	"github.com/edricrolandli/cssc-api/pkg/export"
	"github.com/edricrolandli/cssc-api/pkg/logger"
	corsmiddleware "github.com/edricrolandli/cssc-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edricrolandli/cssc-api/pkg/middleware/requestid"
)

// @title CSSC API
// @version 0.1.0
// @description Class scheduling and course communication backend
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional: the template cache degrades to pass-through
	// reads when no client is available.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, template cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	templateRepo := repository.NewClassScheduleRepository(db)
	eventRepo := repository.NewScheduleEventRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, cfg.JWT)
	projectorSvc := service.NewProjectorService(templateRepo, eventRepo, cacheRepo, cfg.Cache, logr)
	rescheduleSvc := service.NewRescheduleService(eventRepo, courseRepo, roomRepo, cacheRepo, cfg.Semester, validate, logr)
	availabilitySvc := service.NewAvailabilityService(roomRepo, eventRepo, cfg.Semester, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, eventRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, cacheRepo, logr)
	exportSvc := service.NewExportService(projectorSvc, export.NewPDFExporter(), logr)

	authHandler := handler.NewAuthHandler(authSvc)
	scheduleHandler := handler.NewScheduleHandler(projectorSvc, rescheduleSvc, exportSvc, metricsSvc)
	roomHandler := handler.NewRoomHandler(roomSvc, availabilitySvc, metricsSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, projectorSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("", middleware.JWT(authSvc))

	schedule := authed.Group("/schedule")
	schedule.GET("/real", scheduleHandler.Week)
	schedule.GET("/default", scheduleHandler.Default)
	schedule.GET("/export", scheduleHandler.Export)
	schedule.GET("/history/:course_id", scheduleHandler.History)
	schedule.POST("/update",
		middleware.RequireRoles(models.RoleAdmin, models.RoleKomting),
		middleware.Audit(userRepo, models.AuditActionScheduleUpdate, "schedule"),
		scheduleHandler.Update)

	rooms := authed.Group("/rooms")
	rooms.GET("", roomHandler.List)
	rooms.GET("/free-slots", roomHandler.FreeSlots)
	rooms.GET("/status", roomHandler.Status)
	rooms.GET("/available-for-reschedule", roomHandler.AvailableForReschedule)
	rooms.GET("/:id", roomHandler.Get)
	rooms.GET("/:id/schedule", roomHandler.Schedule)

	courses := authed.Group("/courses")
	courses.GET("/schedules/my", courseHandler.MySchedules)
	courses.GET("/schedules/all", courseHandler.AllSchedules)
	courses.POST("/:id/subscribe",
		middleware.Audit(userRepo, models.AuditActionSubscribe, "course"),
		courseHandler.Subscribe)
	courses.DELETE("/:id/subscribe",
		middleware.Audit(userRepo, models.AuditActionUnsubscribe, "course"),
		courseHandler.Unsubscribe)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
