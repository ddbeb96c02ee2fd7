// Package serverapp wires configuration, observability, the database pool and
// the schema manager into a runnable HTTP server.
package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"

	"component-graphql/internal/config"
	"component-graphql/internal/logging"
	"component-graphql/internal/observability"
	"component-graphql/internal/resolver"
	"component-graphql/internal/schemarefresh"
	"component-graphql/internal/sqlutil"
)

// App owns runtime resources for the component-graphql server lifecycle.
type App struct {
	cfg     *config.Config
	logger  *logging.Logger
	dialect sqlutil.Dialect

	loggerProvider *observability.LoggerProvider

	meterProvider        *observability.MeterProvider
	resolverMetrics      *observability.ResolverMetrics
	schemaRefreshMetrics *observability.SchemaRefreshMetrics
	tracerProvider       *observability.TracerProvider

	db         *sql.DB
	dbStatsReg interface{ Unregister() error }

	states       *resolver.ComponentStates
	manager      *schemarefresh.Manager
	schemaCancel context.CancelFunc

	adminHandler http.Handler
	mux          *http.ServeMux
	handler      http.Handler

	serverAddr string
	srv        *http.Server

	cleanup cleanupStack

	stateMu      sync.Mutex
	initialized  bool
	started      bool
	serverErrors chan error

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	dialect, err := cfg.Database.Dialect()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database dialect: %w", err)
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		dialect: dialect,
	}, nil
}

// AttachLoggerProvider registers an optional logger provider for shutdown cleanup.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.loggerProvider = provider
}

// Handler returns the fully wrapped HTTP handler. It is nil before Init.
func (a *App) Handler() http.Handler {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.handler
}
