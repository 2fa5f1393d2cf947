// Package cli implements the datadrift command-line console.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/apiclient"
	"github.com/datadrift/datadrift/pkg/config"
	"github.com/datadrift/datadrift/pkg/database"
	"github.com/datadrift/datadrift/pkg/httpclient"
	"github.com/datadrift/datadrift/pkg/session"
)

// redisKeyPrefix namespaces CLI keys in a shared Redis.
const redisKeyPrefix = "datadrift:cli:"

// App holds the client-side services one command invocation uses.
type App struct {
	Config  *config.ClientConfig
	Logger  *zap.Logger
	Store   *session.Store
	API     *apiclient.Client
	Session *session.Manager

	closers []func()
}

// NewApp wires the session backend, HTTP client, API client and auth session
// manager described by cfg.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *zap.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	backend, err := app.openBackend(ctx)
	if err != nil {
		return nil, err
	}

	app.Store = session.NewStore(backend, logger)
	app.API = apiclient.New(httpclient.New(cfg.APIURL, app.Store, logger))

	var authenticator session.Authenticator = app.API
	if cfg.MockAuth {
		logger.Warn("Mock authentication enabled; the server is not consulted at login")
		authenticator = session.MockAuthenticator{}
	}
	app.Session = session.NewManager(ctx, app.Store, authenticator, logger)
	app.closers = append(app.closers, app.Session.Close)

	return app, nil
}

func (a *App) openBackend(ctx context.Context) (session.Backend, error) {
	switch a.Config.Session.Backend {
	case "memory":
		return session.NewMemoryBackend(), nil
	case "redis":
		client, err := database.NewRedisClient(ctx, &a.Config.Session.Redis)
		if errors.Is(err, database.ErrRedisNotConfigured) {
			return nil, fmt.Errorf("session.redis.host is required for the redis session backend")
		}
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return session.NewRedisBackend(client, redisKeyPrefix, a.Config.Session.TTL), nil
	default:
		a.Logger.Debug("Using file session backend", zap.String("path", a.Config.Session.Path))
		return session.NewFileBackend(a.Config.Session.Path), nil
	}
}

// Close releases the app's resources in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// writeLine writes s followed by a newline unless s is empty.
func writeLine(w io.Writer, s string) {
	if s == "" {
		return
	}
	fmt.Fprintln(w, s)
}
