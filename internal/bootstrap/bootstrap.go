package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/studentdir/internal/app/controllers"
	appMigrations "github.com/yigit/studentdir/internal/app/migrations"
	appRepos "github.com/yigit/studentdir/internal/app/repositories"
	appRoutes "github.com/yigit/studentdir/internal/app/routes"
	appServices "github.com/yigit/studentdir/internal/app/services"
	"github.com/yigit/studentdir/internal/config"
	"github.com/yigit/studentdir/internal/db"
	appMiddleware "github.com/yigit/studentdir/internal/middleware"
	pkgAuth "github.com/yigit/studentdir/internal/pkg/auth"
	"github.com/yigit/studentdir/internal/pkg/cache"
	"github.com/yigit/studentdir/internal/pkg/helpers"
	"github.com/yigit/studentdir/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	EnrollmentService appServices.EnrollmentService
	StudentController *appControllers.StudentController
	AuthController    *appControllers.AuthController
	HealthController  *appControllers.HealthController
	Repos             *appRepos.Repositories
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, logger.WithComponent("migrations"))
	if err := migrator.Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return dbPool, nil
}

// SetupCache connects to Redis when the profile cache is enabled.
// It returns a nil client when caching is disabled.
func SetupCache(cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Profile cache disabled")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := cache.NewRedisClient(ctx, cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		return nil, err
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Profile cache connected")
	return client, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, redisClient *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	hasher := pkgAuth.NewPasswordHasher(cfg.Security.BcryptCost)
	allocator := appServices.NewMatriculationAllocator(
		deps.Repos.StudentRepository,
		cfg.Matric.Prefix,
		cfg.Matric.Width,
		logger.WithComponent("allocator"),
	)

	var profileCache appServices.ProfileCache = cache.NoopProfileCache{}
	checks := map[string]appControllers.Pinger{"database": dbPool}
	if redisClient != nil {
		profileCache = cache.NewProfileCache(redisClient, helpers.ParseDuration(cfg.Redis.ProfileTTL, 24*time.Hour))
		checks["redis"] = appControllers.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	deps.EnrollmentService = appServices.NewEnrollmentService(
		deps.Repos.StudentRepository,
		hasher,
		allocator,
		logger.WithComponent("enrollment"),
		appServices.WithProfileCache(profileCache),
		appServices.WithMaxAssignAttempts(cfg.Matric.MaxAttempts),
	)

	deps.StudentController = appControllers.NewStudentController(deps.EnrollmentService, lgr)
	deps.AuthController = appControllers.NewAuthController(deps.EnrollmentService, lgr)
	deps.HealthController = appControllers.NewHealthController(checks)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.Recovery(), appMiddleware.RequestLogger(logger.WithComponent("http")))

	appRoutes.SetupRouter(router,
		deps.StudentController,
		deps.AuthController,
		deps.HealthController,
	)

	return router
}
