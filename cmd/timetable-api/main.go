package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/kittisak-dev/timetable-api/internal/handler"
	"github.com/kittisak-dev/timetable-api/internal/repository"
	"github.com/kittisak-dev/timetable-api/internal/service"
	"github.com/kittisak-dev/timetable-api/pkg/cache"
	"github.com/kittisak-dev/timetable-api/pkg/config"
	"github.com/kittisak-dev/timetable-api/pkg/database"
	"github.com/kittisak-dev/timetable-api/pkg/logger"
	corsmiddleware "github.com/kittisak-dev/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/kittisak-dev/timetable-api/pkg/middleware/requestid"
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, validation caching disabled", "error", err)
		}
	}

	departments := repository.NewDepartmentRepository(db)
	groups := repository.NewClassGroupRepository(db)
	rooms := repository.NewRoomRepository(db)
	teachers := repository.NewTeacherRepository(db, logr)
	subjects := repository.NewSubjectRepository(db)
	settings := repository.NewSettingsRepository(db, logr)
	timetables := repository.NewTimetableRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()
	metrics := service.NewMetricsService()

	generator := service.NewGeneratorService(
		departments, groups, rooms, teachers, subjects, settings, timetables,
		cacheRepo, validate, logr, metrics,
		service.GeneratorServiceConfig{Seed: cfg.Generator.Seed},
	)
	validatorSvc := service.NewValidatorService(
		timetables, groups, rooms, cacheRepo, validate, logr, metrics, cfg.Validator.CacheTTL,
	)

	generatorHandler := handler.NewGeneratorHandler(generator)
	timetableHandler := handler.NewTimetableHandler(generator)
	validatorHandler := handler.NewValidatorHandler(validatorSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(func(c *gin.Context) {
		started := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(started))
	})

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/timetable/generate/group", generatorHandler.GenerateGroup)
		api.POST("/timetable/generate/department", generatorHandler.GenerateDepartment)
		api.POST("/timetable/generate/institution", generatorHandler.GenerateInstitution)
		api.GET("/timetable", timetableHandler.List)
		api.DELETE("/timetable", timetableHandler.Clear)
		api.GET("/timetable/validate", validatorHandler.Validate)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
