package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/api"
	"github.com/brigadehq/roster/internal/config"
	"github.com/brigadehq/roster/internal/database"
	"github.com/brigadehq/roster/internal/handlers"
	"github.com/brigadehq/roster/internal/holiday"
	"github.com/brigadehq/roster/internal/logging"
	"github.com/brigadehq/roster/internal/middleware"
	"github.com/brigadehq/roster/internal/repository"
	"github.com/brigadehq/roster/internal/scheduler"
	"github.com/brigadehq/roster/internal/services"
)

func main() {
	// CLI flags
	configPath := pflag.StringP("config", "c", "config.yaml", "Path to config file")
	migrateOnly := pflag.BoolP("migrate", "m", false, "Run database migrations and exit")
	version := pflag.BoolP("version", "v", false, "Print version and exit")
	port := pflag.IntP("port", "p", 8080, "HTTP server listen port")
	logLevel := pflag.StringP("log-level", "l", "info", "Log level (debug, info, warn, error)")
	jwtSecret := pflag.String("jwt-secret", "", "Override JWT secret from config")

	pflag.Parse()

	if *version {
		fmt.Println("rosterd version 1.0.0")
		os.Exit(0)
	}

	cfg, err := config.LoadWithPath(*configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Override config with CLI flags if set
	if pflag.Lookup("port").Changed {
		cfg.Server.Port = *port
	}
	if pflag.Lookup("log-level").Changed {
		cfg.Logging.Level = *logLevel
	}
	if pflag.Lookup("jwt-secret").Changed && *jwtSecret != "" {
		cfg.Auth.JWTSecret = *jwtSecret
	}

	if *migrateOnly {
		if err := database.RunMigrations(cfg.Database.ToDBConfig()); err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migrations applied successfully.")
		os.Exit(0)
	}

	// Initialize logger
	logger, err := logging.InitLogger(logging.Config(cfg.Logging))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Configuration loaded", zap.Int("port", cfg.Server.Port))

	if err := database.RunMigrations(cfg.Database.ToDBConfig()); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	db, err := database.NewPostgresDB(cfg.Database.ToDBConfig())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Initialize repositories
	brigadeRepo := repository.NewBrigadeRepository(db, logger)
	eventRepo := repository.NewEventRepository(db, logger)
	exceptionRepo := repository.NewExceptionRepository(db, logger)
	leaveRepo := repository.NewLeaveRepository(db, logger)
	holidayRepo := repository.NewHolidayRepository(db, logger)
	memberRepo := repository.NewMemberRepository(db, logger)

	// Initialize scheduling services
	clock := scheduler.SystemClock()
	oracle := holiday.NewService(holidayRepo, redisClient, cfg.Holiday.Region, cfg.Holiday.CacheTTL, logger)
	trainings := scheduler.NewTrainingScheduler(eventRepo, exceptionRepo, oracle, clock, logger)
	calculator := scheduler.NewLeaveWindowCalculator(exceptionRepo, leaveRepo, oracle, clock, logger)

	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize handlers
	tokenHandler := handlers.NewTokenHandler(tokenService, memberRepo)
	eventHandler := handlers.NewEventHandler(eventRepo, exceptionRepo)
	trainingHandler := handlers.NewTrainingHandler(brigadeRepo, eventRepo, trainings, calculator, clock,
		cfg.Scheduler.HorizonMonths, cfg.Leave.UpcomingLimit)
	leaveHandler := handlers.NewLeaveHandler(leaveRepo, brigadeRepo, calculator, clock, cfg.Leave.MaxOpenRequests)
	holidayHandler := handlers.NewHolidayHandler(holidayRepo, cfg.Holiday.Region)

	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, logger, tokenService, tokenHandler, eventHandler,
		trainingHandler, leaveHandler, holidayHandler, rateLimiter)

	// Nightly training materialization for every brigade
	materialize := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		brigades, err := brigadeRepo.List(ctx)
		if err != nil {
			logger.Error("Failed to list brigades for materialization", zap.Error(err))
			return
		}
		for i := range brigades {
			log := logging.WithBrigade(logger, brigades[i].ID.String())
			// Rows created by the nightly job carry the zero UUID as
			// their author, marking them system-generated.
			created, err := trainings.MaterializeHorizon(ctx, &brigades[i], uuid.Nil, cfg.Scheduler.HorizonMonths)
			if err != nil {
				log.Error("Materialization failed", zap.Error(err))
				continue
			}
			if created > 0 {
				log.Info("Materialized trainings", zap.Int("created", created))
			}
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Scheduler.MaterializeCron, materialize); err != nil {
		logger.Fatal("Invalid materialization cron expression", zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	// Catch up on startup
	go materialize()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		logger.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}
