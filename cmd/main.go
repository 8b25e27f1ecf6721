package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/shenikar/support_matching/internal/config"
	v1 "github.com/shenikar/support_matching/internal/handler/http/v1"
	"github.com/shenikar/support_matching/internal/repository"
	"github.com/shenikar/support_matching/internal/service"
	"github.com/shenikar/support_matching/internal/webhook"
	"github.com/shenikar/support_matching/pkg/logger"
	"github.com/shenikar/support_matching/pkg/postgres"
	redisclient "github.com/shenikar/support_matching/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/support_matching/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Support Matching API
// @version 1.0
// @description Matches survivor reports to verified support services and notifies both sides.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New("file://migrations", migrationURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel)

	// Контекст фоновых воркеров, отменяется при остановке
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	redisClient, err := redisclient.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Уведомления: сервис кладет события в очередь Redis, воркер доставляет их на вебхук
	dispatcher := webhook.NewRedisNotificationDispatcher(redisClient)
	notificationWorker := webhook.NewNotificationWorker(redisClient, log, cfg)
	notificationWorker.Start(ctx)

	repos := service.Repositories{
		Reports:  repository.NewReportRepository(dbpool),
		Services: repository.NewSupportServiceRepository(dbpool),
		Profiles: repository.NewProfileRepository(dbpool, redisClient, cfg.ProfileCacheTTL),
		Matches:  repository.NewMatchRepository(dbpool),
		Locker:   repository.NewRedisReportLocker(redisClient, cfg.MatchLockTTL),
	}

	matchingService := service.NewMatchingService(repos, dispatcher, log, cfg)
	sweeper := service.NewSweeper(repos.Reports, matchingService, log, cfg)
	sweeper.Start(ctx)

	handler := v1.NewHandler(matchingService, sweeper, log, cfg)

	router := gin.New()
	router.Use(gin.Recovery())
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	// останавливаем проходы и воркер уведомлений до закрытия пулов
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
