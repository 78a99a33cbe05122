package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portsrepo "github.com/quillbooks/quillbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/quillbooks/quillbooks_backend/internal/core/ports/services"
	"github.com/quillbooks/quillbooks_backend/internal/core/services"
	"github.com/quillbooks/quillbooks_backend/internal/handlers"
	"github.com/quillbooks/quillbooks_backend/internal/middleware"
	"github.com/quillbooks/quillbooks_backend/internal/platform/config"
	"github.com/quillbooks/quillbooks_backend/internal/repositories/database/pgsql"
	memstore "github.com/quillbooks/quillbooks_backend/internal/repositories/memory"
	"github.com/quillbooks/quillbooks_backend/pkg/database"
)

// @title QuillBooks Ledger API
// @version 1.0
// @description Double-entry ledger backend for small-business bookkeeping.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	accountRepo, ledgerRepo, userRepo, cleanup, err := buildRepositories(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	equationService := services.NewEquationService(accountRepo, ledgerRepo)
	serviceContainer := &portssvc.ServiceContainer{
		Account:   services.NewAccountService(accountRepo, ledgerRepo),
		Ledger:    services.NewLedgerService(accountRepo, ledgerRepo),
		Equation:  equationService,
		Reporting: services.NewReportingService(accountRepo, ledgerRepo, equationService),
		User:      services.NewUserService(userRepo),
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := handlers.RegisterCustomValidators(); err != nil {
		logger.Error("Failed to register validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))
	if limiterInstance, err := buildRateLimiter(cfg); err != nil {
		logger.Error("Failed to configure rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	} else if limiterInstance != nil {
		r.Use(middleware.RateLimit(limiterInstance))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting",
		slog.String("port", cfg.Port),
		slog.String("storage_driver", cfg.StorageDriver),
	)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildRepositories selects the storage driver. The in-memory driver serves
// development and evaluation setups; pgsql is the durable backend.
func buildRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (
	portsrepo.AccountRepository,
	portsrepo.LedgerRepository,
	portsrepo.UserRepository,
	func(),
	error,
) {
	switch cfg.StorageDriver {
	case "pgsql":
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := runMigrations(cfg, logger); err != nil {
			database.ClosePgxPool(dbPool)
			return nil, nil, nil, nil, err
		}
		cleanup := func() { database.ClosePgxPool(dbPool) }
		return pgsql.NewAccountRepository(dbPool), pgsql.NewLedgerRepository(dbPool), pgsql.NewUserRepository(dbPool), cleanup, nil
	default:
		logger.Info("Using in-memory storage; data is lost on shutdown")
		store := memstore.NewStore()
		return store, store, store, func() {}, nil
	}
}

// runMigrations applies all pending "up" migrations over a short-lived
// database/sql connection, compatible with the pgx pool.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Database migrations applied successfully")
	}
	return nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = !cfg.IsProduction
	if cfg.IsProduction {
		corsCfg.AllowOrigins = []string{"https://quillbooks.app"}
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.MaxAge = 12 * time.Hour
	return corsCfg
}

// buildRateLimiter parses the configured rate (e.g. "100-M") into a
// memory-backed limiter. An empty rate disables limiting.
func buildRateLimiter(cfg *config.Config) (*limiter.Limiter, error) {
	if cfg.RateLimit == "" {
		return nil, nil
	}
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate), nil
}
