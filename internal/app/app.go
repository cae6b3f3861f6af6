package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jobboard_backend/database"
	"jobboard_backend/internal/aggregator"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/email"
	"jobboard_backend/internal/handlers"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/routes"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/storage"
	"jobboard_backend/internal/validator"
	"jobboard_backend/internal/workers"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := OpenDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected", "driver", cfg.Database.Driver)

	if err := database.RunMigrations(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ginRouter := SetupRouter(ctx, cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// OpenDatabase opens the configured driver. TranslateError is on so
// repositories can match gorm.ErrDuplicatedKey across drivers.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	switch cfg.Database.Driver {
	case "mysql":
		return gorm.Open(mysql.Open(cfg.Database.DSN), gormCfg)
	default:
		return gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
	}
}

// SetupRouter builds the full gin engine: services, handlers, routes
// and background workers. ctx bounds the workers' lifetime.
func SetupRouter(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	storageInstance, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}

	searcher := initializeAggregator(cfg)
	serviceContainer := initializeServices(cfg, searcher, storageInstance)
	appHandlers := initializeHandlers(serviceContainer, storageInstance)

	startWorkers(ctx, gormDB, cfg, searcher)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

// initializeAggregator builds the external search client, wrapped in a
// redis cache when REDIS_URL is configured. Returns nil when upstream
// credentials are missing.
func initializeAggregator(cfg *config.Config) aggregator.Searcher {
	client := aggregator.NewClient(
		cfg.Aggregator.BaseURL,
		cfg.Aggregator.AppID,
		cfg.Aggregator.AppKey,
		cfg.Aggregator.Country,
	)
	if !client.Configured() {
		logger.Warn("Aggregator credentials missing, external search disabled")
		return nil
	}

	if cfg.Redis.URL == "" {
		return client
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Warn("Invalid REDIS_URL, aggregator cache disabled", "error", err)
		return client
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis unreachable, aggregator cache disabled", "error", err)
		return client
	}
	logger.Info("Aggregator cache enabled")
	ttl := time.Duration(cfg.Aggregator.CacheTTLMinutes) * time.Minute
	return aggregator.NewCachedSearcher(client, rdb, ttl)
}

func initializeServices(cfg *config.Config, searcher aggregator.Searcher, store storage.Storage) *services.ServiceContainer {
	var emailProvider email.Provider
	if cfg.Email.SMTPHost != "" {
		p, err := email.NewSMTPProvider(email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
		if err != nil {
			logger.Warn("Email provider misconfigured, falling back to noop", "error", err)
			emailProvider = &email.NoopProvider{}
		} else {
			emailProvider = p
		}
	} else {
		emailProvider = &email.NoopProvider{}
	}

	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	jobRepo := repositories.NewJobRepository()

	return &services.ServiceContainer{
		AuthService:       services.NewAuthService(userRepo, refreshTokenRepo, emailProvider),
		UserService:       services.NewUserService(userRepo, jobRepo, store),
		JobService:        services.NewJobService(jobRepo),
		AggregatorService: services.NewAggregatorService(searcher),
		EmailService:      emailProvider,
	}
}

func initializeHandlers(container *services.ServiceContainer, storageInstance storage.Storage) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler: handlers.NewAuthHandler(baseHandler, container.AuthService),
		UserHandler: handlers.NewUserHandler(baseHandler, container.UserService, storageInstance),
		JobHandler:  handlers.NewJobHandler(baseHandler, container.JobService, container.AggregatorService),
	}
}

func startWorkers(ctx context.Context, gormDB *gorm.DB, cfg *config.Config, searcher aggregator.Searcher) {
	workers.NewTokenWorker(gormDB).Start(ctx)

	syncWorker := workers.NewSyncWorker(gormDB, searcher,
		cfg.Aggregator.SyncQueries, cfg.Aggregator.SyncIntervalHours)
	if err := syncWorker.Start(ctx); err != nil {
		logger.Warn("Failed to start job sync worker", "error", err)
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists, skipping creation", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Name:         "Administrator",
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		Role:         models.UserRoleAdmin,
	}
	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return nil
}
