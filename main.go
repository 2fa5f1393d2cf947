package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
	_ "github.com/datadrift/datadrift/pkg/adapters/datasource/file"
	_ "github.com/datadrift/datadrift/pkg/adapters/datasource/mssql"
	_ "github.com/datadrift/datadrift/pkg/adapters/datasource/postgres"
	_ "github.com/datadrift/datadrift/pkg/adapters/datasource/rest"
	"github.com/datadrift/datadrift/pkg/audit"
	"github.com/datadrift/datadrift/pkg/auth"
	"github.com/datadrift/datadrift/pkg/config"
	"github.com/datadrift/datadrift/pkg/crypto"
	"github.com/datadrift/datadrift/pkg/database"
	"github.com/datadrift/datadrift/pkg/handlers"
	"github.com/datadrift/datadrift/pkg/logging"
	"github.com/datadrift/datadrift/pkg/middleware"
	"github.com/datadrift/datadrift/pkg/repositories"
	"github.com/datadrift/datadrift/pkg/retry"
	"github.com/datadrift/datadrift/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("storage", cfg.Storage),
		zap.Bool("dev_login", cfg.Auth.DevLogin),
		zap.Duration("datasource_test_timeout", cfg.Datasource.TestTimeout),
	)

	if cfg.CredentialsKey == "" {
		return errors.New("DATADRIFT_CREDENTIALS_KEY is required")
	}
	encryptor, err := crypto.NewCredentialEncryptor(cfg.CredentialsKey)
	if err != nil {
		return fmt.Errorf("failed to create credential encryptor: %w", err)
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	adapterFactory := datasource.NewAdapterFactory()
	for _, info := range adapterFactory.ListTypes() {
		logger.Debug("Connection tester registered",
			zap.String("type", info.Type),
			zap.String("source_type", string(info.SourceType)))
	}
	dataSourceService := services.NewDataSourceService(store.repo, encryptor, adapterFactory, cfg.Datasource.TestTimeout, logger)

	authService, sessions, tokens, err := setupAuth(cfg, logger)
	if err != nil {
		return err
	}
	authMiddleware := auth.NewMiddleware(authService, logger)
	auditor := audit.NewSecurityAuditor(logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).
		WithStorageCheck(store.check).
		RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, sessions, tokens, logger).
		WithAuditor(auditor).
		RegisterRoutes(mux)
	handlers.NewDataSourcesHandler(dataSourceService, logger).
		WithAuditor(auditor).
		RegisterRoutes(mux, authMiddleware, store.scope)
	handlers.NewRulesHandler(logger).RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = middleware.RequestLogger(logger)(handler)
	handler = middleware.Recoverer(logger)(handler)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Connection tests may run up to the configured timeout.
		WriteTimeout: cfg.Datasource.TestTimeout + 15*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		tlsEnabled := cfg.TLSCertPath != ""
		logger.Info("Starting DataDrift server",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version),
			zap.Bool("tls", tlsEnabled))

		var err error
		if tlsEnabled {
			err = server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// storage is the data source repository selected by cfg.Storage together
// with the middleware its handlers run under.
type storage struct {
	repo  repositories.DataSourceRepository
	scope handlers.ScopeMiddleware
	check handlers.StorageCheck
	close func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	if cfg.Storage == "memory" {
		logger.Warn("Using in-memory storage; data sources are lost on restart")
		return &storage{
			repo:  repositories.NewMemoryDataSourceRepository(),
			scope: handlers.NoScope,
			close: func() {},
		}, nil
	}

	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database))

	onRetry := func(attempt int, err error, delay time.Duration) {
		logger.Warn("Database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.String("error", logging.SanitizeError(err)))
	}
	dbConfig := database.ConfigFrom(&cfg.Database)
	logger.Debug("Database URL", zap.String("url", logging.SanitizeConnectionString(dbConfig.URL)))

	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), onRetry, func() (*database.DB, error) {
		return database.NewConnection(ctx, dbConfig)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %s", logging.SanitizeError(err))
	}

	if err := database.RunMigrations(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &storage{
		repo:  repositories.NewDataSourceRepository(db),
		scope: database.WithScopeContext(db, logger),
		check: db.Ping,
		close: db.Close,
	}, nil
}

// setupAuth builds the user directory, token manager and cookie session store.
func setupAuth(cfg *config.Config, logger *zap.Logger) (auth.AuthService, *auth.SessionStore, *auth.TokenManager, error) {
	users, err := auth.NewUserDirectory(cfg.Auth.UsersFile, cfg.Auth.DevLogin)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load users: %w", err)
	}

	jwtSecret, err := secretOrEphemeral(cfg.Auth.JWTSecret, "DATADRIFT_JWT_SECRET", cfg.Auth.DevLogin, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	sessionSecret, err := secretOrEphemeral(cfg.Auth.SessionSecret, "DATADRIFT_SESSION_SECRET", cfg.Auth.DevLogin, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	tokens, err := auth.NewTokenManager(jwtSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	cookieSettings := auth.DeriveCookieSettings(cfg.BaseURL, cfg.CookieDomain)
	sessions := auth.NewSessionStore(sessionSecret, cookieSettings, cfg.Auth.TokenTTL)

	return auth.NewAuthService(users, tokens, sessions, logger), sessions, tokens, nil
}

// secretOrEphemeral returns secret, or with dev login a random one that does
// not survive a restart.
func secretOrEphemeral(secret, envName string, devLogin bool, logger *zap.Logger) (string, error) {
	if secret != "" {
		return secret, nil
	}
	if !devLogin {
		return "", fmt.Errorf("%s is required", envName)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", envName, err)
	}
	logger.Warn("Secret not set, using a random value; sessions end on restart", zap.String("env", envName))
	return base64.StdEncoding.EncodeToString(buf), nil
}
