// Package schemarefresh builds GraphQL schema snapshots from component
// metadata and swaps them in when the metadata changes.
package schemarefresh

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"

	"component-graphql/internal/component"
	"component-graphql/internal/dbexec"
	"component-graphql/internal/logging"
	"component-graphql/internal/observability"
	"component-graphql/internal/resolver"
	"component-graphql/internal/sqlutil"
)

// Snapshot contains an immutable view of the current schema state.
type Snapshot struct {
	Schema      *graphql.Schema
	Handler     http.Handler
	Components  []component.Component
	BuiltAt     time.Time
	Fingerprint string
}

// Config controls schema refresh behavior.
type Config struct {
	Pool     dbexec.Pool
	Dialect  sqlutil.Dialect
	States   *resolver.ComponentStates
	Logger   *logging.Logger
	Metrics  *observability.SchemaRefreshMetrics
	GraphiQL bool
	// Interval between metadata polls. Zero disables polling.
	Interval time.Duration
}

// Manager maintains and refreshes schema snapshots.
type Manager struct {
	pool     dbexec.Pool
	dialect  sqlutil.Dialect
	states   *resolver.ComponentStates
	logger   *logging.Logger
	metrics  *observability.SchemaRefreshMetrics
	graphiQL bool
	interval time.Duration
	active   atomic.Pointer[Snapshot]
	mu       sync.Mutex
	wg       sync.WaitGroup
}

// NewManager builds the initial schema snapshot and returns a manager.
func NewManager(ctx context.Context, cfg Config) (*Manager, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("schema refresh manager requires a connection pool")
	}
	if cfg.Logger == nil {
		cfg.Logger = &logging.Logger{Logger: slog.Default()}
	}

	m := &Manager{
		pool:     cfg.Pool,
		dialect:  cfg.Dialect,
		states:   cfg.States,
		logger:   cfg.Logger.WithFields(slog.String("layer", "schema_refresh")),
		metrics:  cfg.Metrics,
		graphiQL: cfg.GraphiQL,
		interval: cfg.Interval,
	}

	if _, err := m.refresh(ctx, "startup", true); err != nil {
		return nil, err
	}
	return m, nil
}

// Start begins the background refresh loop.
func (m *Manager) Start(ctx context.Context) {
	if m.interval <= 0 {
		m.logger.Info("schema refresh polling disabled")
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.refreshLoop(ctx)
	}()
}

// Wait blocks until the refresh loop exits or the context is canceled.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler serves GraphQL requests against whichever snapshot is active when
// the request arrives.
func (m *Manager) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot := m.CurrentSnapshot()
		if snapshot == nil || snapshot.Handler == nil {
			http.Error(w, "schema not ready", http.StatusServiceUnavailable)
			return
		}
		snapshot.Handler.ServeHTTP(w, r)
	})
}

// CurrentSnapshot returns the active schema snapshot.
func (m *Manager) CurrentSnapshot() *Snapshot {
	return m.active.Load()
}

// RefreshNowContext forces a schema rebuild and swap.
func (m *Manager) RefreshNowContext(ctx context.Context) error {
	_, err := m.refresh(ctx, "manual", true)
	return err
}

func (m *Manager) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("schema refresh stopped")
			return
		case <-ticker.C:
			if _, err := m.refresh(ctx, "poll", false); err != nil {
				m.logger.Warn("schema refresh poll failed", slog.String("error", err.Error()))
			}
		}
	}
}

// refresh reloads component metadata and swaps in a new snapshot. Unless
// force is set, an unchanged fingerprint keeps the current snapshot.
func (m *Manager) refresh(ctx context.Context, trigger string, force bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	attempt := observability.RefreshAttempt{Trigger: trigger}
	defer func() {
		attempt.Duration = time.Since(start)
		m.metrics.RecordRefresh(ctx, attempt)
	}()

	snapshot, err := m.buildSnapshot(ctx, force)
	if err != nil {
		attempt.Outcome = observability.RefreshFailed
		return false, err
	}
	if snapshot == nil {
		attempt.Outcome = observability.RefreshUnchanged
		attempt.Components = len(m.CurrentSnapshot().Components)
		return false, nil
	}

	m.active.Store(snapshot)
	attempt.Outcome = observability.RefreshSwapped
	attempt.Components = len(snapshot.Components)
	m.logger.Info("schema snapshot swapped",
		slog.String("trigger", trigger),
		slog.Int("components", len(snapshot.Components)),
		slog.String("fingerprint", snapshot.Fingerprint),
		slog.Duration("duration", time.Since(start)),
	)
	return true, nil
}

// buildSnapshot returns nil without error when force is false and the
// metadata fingerprint matches the active snapshot.
func (m *Manager) buildSnapshot(ctx context.Context, force bool) (*Snapshot, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for schema build: %w", err)
	}
	defer func() {
		if err := conn.Release(); err != nil {
			m.logger.Warn("failed to release connection", slog.String("error", err.Error()))
		}
	}()

	definitions, err := LoadDefinitions(ctx, conn, m.dialect, m.logger.Logger)
	if err != nil {
		return nil, err
	}

	fingerprint := Fingerprint(definitions)
	if current := m.CurrentSnapshot(); !force && current != nil && current.Fingerprint == fingerprint {
		return nil, nil
	}

	result, err := buildFromDefinitions(BuildSchemaConfig{
		Dialect: m.dialect,
		States:  m.states,
		Logger:  m.logger.Logger,
	}, definitions)
	if err != nil {
		return nil, err
	}

	components := make([]component.Component, 0, len(definitions))
	for _, def := range definitions {
		components = append(components, def.Component)
		m.logger.Debug("component registered",
			slog.String("component", def.Component.Name),
			slog.Int("attributes", def.Schema.Len()),
		)
	}

	graphqlSchema := result.GraphQLSchema
	return &Snapshot{
		Schema: &graphqlSchema,
		Handler: handler.New(&handler.Config{
			Schema:   &graphqlSchema,
			Pretty:   true,
			GraphiQL: m.graphiQL,
		}),
		Components:  components,
		BuiltAt:     time.Now(),
		Fingerprint: result.Fingerprint,
	}, nil
}
