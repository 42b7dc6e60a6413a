package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	authpg "github.com/frahmantamala/expense-reimbursement/internal/auth/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/claim"
	claimpg "github.com/frahmantamala/expense-reimbursement/internal/claim/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/core/events"
	"github.com/frahmantamala/expense-reimbursement/internal/masterdata"
	masterdatapg "github.com/frahmantamala/expense-reimbursement/internal/masterdata/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/storage"
	"github.com/frahmantamala/expense-reimbursement/internal/transport/rest"
	"github.com/frahmantamala/expense-reimbursement/internal/transport/swagger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	EventBus *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config

	if _, err := swagger.LoadSpec(context.Background(), cfg.Server.OpenAPIPath); err != nil {
		deps.Logger.Warn("openapi spec unavailable", "error", err)
	}

	publicKey, err := cfg.Security.GetPublicKey()
	if err != nil {
		deps.Logger.Error("invalid JWT public key", "error", err)
		os.Exit(1)
	}
	tokens := auth.NewJWTTokenGenerator(nil, publicKey, cfg.Security.AccessTokenDuration)
	authHandler := auth.NewHandler(tokens, authpg.NewRepository(deps.Gorm), deps.Logger)

	claimRepo := claimpg.NewClaimRepository(deps.Gorm, deps.DB)
	claimService := claim.NewService(claimRepo, deps.EventBus, deps.Logger).
		WithReadTimeout(cfg.Database.QueryTimeout)
	receipts := storage.NewOSReceiptStore(cfg.Storage.ReceiptDir, deps.Logger)
	claimHandler := claim.NewHandler(claimService, receipts, cfg.Storage.MaxUploadBytes, deps.Logger)

	lookupService := masterdata.NewService(masterdatapg.NewRepository(deps.Gorm), deps.Logger)
	lookupHandler := masterdata.NewHandler(lookupService, deps.Logger)

	claim.NewEventHandler(deps.Logger).RegisterEventHandlers(deps.EventBus)

	rest.RegisterAllRoutes(deps.Router, rest.Routes{
		DB:             deps.DB.DB,
		Capabilities:   claimRepo,
		AuthHandler:    authHandler,
		ClaimHandler:   claimHandler,
		LookupHandler:  lookupHandler,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		OpenAPIPath:    cfg.Server.OpenAPIPath,
		Logger:         deps.Logger,
	})
}

func initializeDependencies() (*Dependencies, error) {
	config, lg, err := loadConfigAndLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Gorm:     gormDB,
		EventBus: events.NewEventBus(lg),
		Router:   chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers gorm over the sqlx pool so writes and reads share
// connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}
