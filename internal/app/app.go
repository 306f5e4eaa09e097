package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/mentorconnect/goaltracker/internal/cache"
	"github.com/mentorconnect/goaltracker/internal/config"
	"github.com/mentorconnect/goaltracker/internal/db"
	"github.com/mentorconnect/goaltracker/internal/jobs"
	"github.com/mentorconnect/goaltracker/internal/middleware"
	"github.com/mentorconnect/goaltracker/internal/repository"
	"github.com/mentorconnect/goaltracker/internal/service"
	"github.com/mentorconnect/goaltracker/internal/storage"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	Redis               *redis.Client
	AuthService         *service.AuthService
	UserService         *service.UserService
	AssignmentService   *service.AssignmentService
	GoalService         *service.GoalService
	FileService         *service.FileService
	NotificationService *service.NotificationService
	EmailService        *service.EmailService
	HelpDigest          *jobs.HelpDigest
	RateLimiter         *middleware.RateLimiter
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Mentee cache (optional)
	var redisClient *redis.Client
	var menteeCache cache.MenteeCache = cache.Noop{}
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		menteeCache = cache.NewRedisCache(redisClient, cfg.AssignmentCacheTTL)
	} else {
		slog.Info("redis not configured, mentee lists are not cached")
	}

	// Storage
	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if fileStorage == nil {
		slog.Info("S3 bucket not configured, attachments disabled")
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	assignmentRepository := repository.NewAssignmentRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	fileRepository := repository.NewFileRepository(database)
	notificationRepository := repository.NewNotificationRepository(database)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.EmailDevMode,
	)
	userService := service.NewUserService(userRepository)
	assignmentService := service.NewAssignmentService(assignmentRepository, userRepository, menteeCache)
	notificationService := service.NewNotificationService(notificationRepository, userRepository, assignmentRepository, emailService)
	fileService := service.NewFileService(fileRepository, goalRepository, fileStorage)
	goalService := service.NewGoalService(goalRepository, assignmentService, notificationService, fileService)
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry)

	helpDigest := jobs.NewHelpDigest(jobs.DigestMentors{
		Mentors: assignmentService,
		Goals:   goalService,
		Users:   userService,
	}, emailService)

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		Redis:               redisClient,
		AuthService:         authService,
		UserService:         userService,
		AssignmentService:   assignmentService,
		GoalService:         goalService,
		FileService:         fileService,
		NotificationService: notificationService,
		EmailService:        emailService,
		HelpDigest:          helpDigest,
		RateLimiter:         middleware.NewRateLimiter(cfg.RateLimitWrites, cfg.RateLimitWindow),
	}, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
