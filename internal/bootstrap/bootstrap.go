package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/unigate/admissions/internal/app/auth"
	appControllers "github.com/unigate/admissions/internal/app/controllers"
	appMigrations "github.com/unigate/admissions/internal/app/migrations"
	appRepos "github.com/unigate/admissions/internal/app/repositories"
	appRoutes "github.com/unigate/admissions/internal/app/routes"
	appServices "github.com/unigate/admissions/internal/app/services"
	"github.com/unigate/admissions/internal/config"
	"github.com/unigate/admissions/internal/db"
	"github.com/unigate/admissions/internal/jobs"
	appMiddleware "github.com/unigate/admissions/internal/middleware"
	pkgAuth "github.com/unigate/admissions/internal/pkg/auth"
	"github.com/unigate/admissions/internal/pkg/cache"
	"github.com/unigate/admissions/internal/pkg/email"
	"github.com/unigate/admissions/internal/pkg/errreport"
	"github.com/unigate/admissions/internal/pkg/filestorage"
	"github.com/unigate/admissions/internal/pkg/helpers"
	"github.com/unigate/admissions/internal/pkg/logger"
	"github.com/unigate/admissions/internal/pkg/realtime"
	"github.com/unigate/admissions/internal/pkg/validation"
	"github.com/unigate/admissions/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos              *appRepos.Repositories
	JWTService         *pkgAuth.JWTService
	AuthzService       *appAuth.AuthorizationService
	AuthMiddleware     *appMiddleware.AuthMiddleware
	AuthService        appServices.AuthService
	LookupService      appServices.LookupService
	StudentService     appServices.StudentService
	DocumentService    appServices.DocumentService
	ApplicationService appServices.ApplicationService
	ReviewService      appServices.ReviewService
	Notifier           *appServices.EmailNotifier
	Controllers        appRoutes.Controllers
	Hub                *realtime.Hub
	Maintenance        *jobs.Maintenance
	FileStorage        filestorage.Storage
	Signer             *filestorage.URLSigner
	Cache              *cache.RedisCache // nil when Redis is not configured
	Logger             zerolog.Logger
}

// ConfigPath returns CONFIG_PATH or configs/config.yaml
func ConfigPath() string {
	return config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logCfg := logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format)
	logCfg.Service = "admissions-api"
	logger.Configure(logCfg)

	errreport.Init(errreport.Config{
		Token:       cfg.Rollbar.Token,
		Environment: cfg.Rollbar.Environment,
		CodeVersion: cfg.Rollbar.CodeVersion,
	})

	lgr := log.Logger
	lgr.Info().
		Str("logLevel", string(logCfg.Level)).
		Str("logFormat", cfg.Logging.Format).
		Bool("errorReporting", errreport.Enabled()).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the pool without touching the schema
func ConnectDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database.Pool, nil
}

// RunMigrations applies the embedded schema migrations
func RunMigrations(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(dbPool, lgr).Migrate(ctx, appMigrations.Files())
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	dbPool, err := ConnectDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := RunMigrations(ctx, dbPool, lgr); err != nil {
		dbPool.Close()
		return nil, err
	}

	admin := seed.AdminAccount{Email: cfg.Admin.Email, Password: cfg.Admin.Password}
	if err := seed.CreateDefaultData(ctx, dbPool, admin, lgr); err != nil {
		// Missing seed rows are reported but do not stop the server
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// NewFileStorage builds the storage backend named by storage.driver
func NewFileStorage(ctx context.Context, cfg *config.Config, signer *filestorage.URLSigner) (filestorage.Storage, error) {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "", "local":
		return filestorage.NewLocalStorage(cfg.Storage.Path, signer)
	case "s3":
		return filestorage.NewS3Storage(ctx, filestorage.S3Config{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretKey,
		})
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	ctx := context.Background()

	if err := validation.RegisterGinValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(dbPool)

	// File storage
	var err error
	deps.Signer = filestorage.NewURLSigner(cfg.StorageSigningSecret(), cfg.BaseURL())
	deps.FileStorage, err = NewFileStorage(ctx, cfg, deps.Signer)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	// Lookup cache
	var lookupCache cache.Cache
	if cfg.Redis.Addr != "" {
		deps.Cache, err = cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "admissions:")
		if err != nil {
			lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		lookupCache = deps.Cache
	} else {
		lgr.Info().Msg("Redis not configured, lookup caching disabled")
	}

	// Notifications
	sender, err := email.NewSender(email.Config{
		Provider:       cfg.Email.Provider,
		FromEmail:      cfg.Email.From,
		FromName:       cfg.Email.FromName,
		SMTPHost:       cfg.Email.SMTPHost,
		SMTPPort:       cfg.Email.SMTPPort,
		SMTPUsername:   cfg.Email.SMTPUsername,
		SMTPPassword:   cfg.Email.SMTPPassword,
		SMTPUseTLS:     cfg.Email.SMTPPort == 465,
		SendgridAPIKey: cfg.Email.SendgridAPIKey,
	}, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email sender: %w", err)
	}
	deps.Hub = realtime.NewHub(lgr)
	deps.Notifier = appServices.NewNotifier(sender, deps.Hub, lgr)

	// Auth
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 168*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.RoleRepository)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService)

	// Services
	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.Repos.RoleRepository,
		deps.JWTService,
		deps.Notifier,
		lgr,
	)
	deps.LookupService = appServices.NewLookupService(
		deps.Repos.Lookups,
		lookupCache,
		helpers.ParseDuration(cfg.Redis.LookupTTL, 5*time.Minute),
		lgr,
	)
	deps.StudentService = appServices.NewStudentService(deps.Repos.StudentRepository, deps.Repos.ApplicationRepository, lgr)
	deps.DocumentService = appServices.NewDocumentService(
		deps.Repos.StudentRepository,
		deps.Repos.ApplicationRepository,
		deps.Repos.DocumentRepository,
		deps.FileStorage,
		appServices.DocumentConfig{
			MaxUploadBytes: cfg.Storage.MaxUploadBytes,
			SignedURLTTL:   helpers.ParseDuration(cfg.Storage.SignedURLTTL, 60*time.Second),
		},
		lgr,
	)
	deps.ApplicationService = appServices.NewApplicationService(
		deps.Repos.StudentRepository,
		deps.Repos.ApplicationRepository,
		deps.Repos.DocumentRepository,
		deps.StudentService,
		deps.DocumentService,
		deps.Notifier,
		appServices.WizardConfig{RequireDocuments: cfg.Wizard.RequireDocuments},
		lgr,
	)
	deps.ReviewService = appServices.NewReviewService(deps.Repos.StudentRepository, deps.Repos.ApplicationRepository, deps.Notifier, lgr)

	// Controllers
	deps.Controllers = appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.AuthService, lgr),
		Lookup:    appControllers.NewLookupController(deps.LookupService, lgr),
		Applicant: appControllers.NewApplicantController(deps.StudentService, deps.ApplicationService, deps.DocumentService, lgr),
		Admin:     appControllers.NewAdminController(deps.StudentService, deps.DocumentService, deps.ReviewService, lgr),
		Intake:    appControllers.NewIntakeController(deps.ApplicationService, lgr),
		Realtime:  realtime.NewHandler(deps.Hub, cfg.Server.AllowedOrigins, lgr),
	}
	if _, ok := deps.FileStorage.(*filestorage.LocalStorage); ok {
		// S3 links point at the bucket directly
		deps.Controllers.File = appControllers.NewFileController(deps.FileStorage, deps.Signer, lgr)
	}

	deps.Maintenance = jobs.NewMaintenance(jobs.MaintenanceConfig{
		Interval:      helpers.ParseDuration(cfg.Jobs.MaintenanceInterval, time.Hour),
		StaleDraftAge: helpers.ParseDuration(cfg.Jobs.StaleDraftAge, 7*24*time.Hour),
	}, deps.Repos.TokenRepository, deps.Repos.ApplicationRepository, lgr)

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
	router.Use(appMiddleware.RequestLogger(lgr), appMiddleware.Recovery(lgr))
	if cfg.Storage.MaxUploadBytes > 0 {
		// multipart parts beyond this spill to temp files
		router.MaxMultipartMemory = cfg.Storage.MaxUploadBytes
	}

	if !cfg.IsProduction() {
		appRoutes.SetupSwagger(router)
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	// Health check
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
