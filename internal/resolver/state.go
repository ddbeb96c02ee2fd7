package resolver

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"component-graphql/internal/component"
	"component-graphql/internal/dbexec"
	"component-graphql/internal/introspection"
	"component-graphql/internal/observability"
	"component-graphql/internal/planner"
	"component-graphql/internal/sqlutil"
)

// ComponentStates resolves component states. Each call acquires one pooled
// connection, loads the attribute schema on it, queries the component table
// and releases the connection before returning.
type ComponentStates struct {
	pool         dbexec.Pool
	dialect      sqlutil.Dialect
	defaultLimit uint64
	metrics      *observability.ResolverMetrics
}

// NewComponentStates creates a resolver over pool. A zero defaultLimit falls
// back to planner.DefaultLimit.
func NewComponentStates(pool dbexec.Pool, dialect sqlutil.Dialect, defaultLimit uint64) *ComponentStates {
	if defaultLimit == 0 {
		defaultLimit = planner.DefaultLimit
	}
	return &ComponentStates{
		pool:         pool,
		dialect:      dialect,
		defaultLimit: defaultLimit,
	}
}

// SetMetrics attaches resolution metrics.
func (s *ComponentStates) SetMetrics(metrics *observability.ResolverMetrics) {
	s.metrics = metrics
}

// Many returns the newest states of c matching the equality filters in args.
func (s *ComponentStates) Many(ctx context.Context, c component.Component, args map[string]any) (records []component.ValueRecord, err error) {
	ctx, span := startResolverSpan(ctx, "component.many",
		attribute.String("component.id", c.ID),
		attribute.String("component.name", c.Name),
	)
	started := time.Now()
	defer func() {
		finishResolverSpan(span, err, len(records))
		s.metrics.RecordResolution(ctx, c.Name, "many", len(records), time.Since(started), err)
	}()

	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, conn)

	schema, err := introspection.LoadAttributeSchema(ctx, conn, s.dialect, c.ID)
	if err != nil {
		return nil, err
	}

	filters, limit, err := ParseArguments(args, schema, s.defaultLimit)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("component.filters", len(filters)),
		attribute.Int64("component.limit", int64(limit)),
	)

	return QueryMany(ctx, conn, s.dialect, component.QuerySpec{
		Entity:  c.Name,
		Filters: filters,
		Limit:   limit,
	}, schema)
}

// ByID returns the state of c stored under id. It fails with
// component.ErrNotFound unless exactly one row matches.
func (s *ComponentStates) ByID(ctx context.Context, c component.Component, id string) (record component.ValueRecord, err error) {
	ctx, span := startResolverSpan(ctx, "component.by_id",
		attribute.String("component.id", c.ID),
		attribute.String("component.name", c.Name),
	)
	started := time.Now()
	defer func() {
		finishResolverSpan(span, err, record.Len())
		s.metrics.RecordResolution(ctx, c.Name, "by_id", record.Len(), time.Since(started), err)
	}()

	conn, err := s.acquire(ctx)
	if err != nil {
		return component.ValueRecord{}, err
	}
	defer s.release(ctx, conn)

	schema, err := introspection.LoadAttributeSchema(ctx, conn, s.dialect, c.ID)
	if err != nil {
		return component.ValueRecord{}, err
	}

	return QueryByID(ctx, conn, s.dialect, c.Name, id, schema)
}

func (s *ComponentStates) acquire(ctx context.Context) (dbexec.Conn, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("component states have no connection pool")
	}
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementActive(ctx)
	return conn, nil
}

func (s *ComponentStates) release(ctx context.Context, conn dbexec.Conn) {
	_ = conn.Release()
	s.metrics.DecrementActive(ctx)
}

// QueryMany runs the planned multi-row query on q and marshals every row.
func QueryMany(ctx context.Context, q dbexec.Queryer, dialect sqlutil.Dialect, spec component.QuerySpec, schema *component.AttributeSchema) ([]component.ValueRecord, error) {
	planned, err := planner.PlanMany(dialect, spec, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.QueryContext(ctx, planned.SQL, planned.Args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanRecords(rows, schema)
}

// QueryByID runs the single-row lookup on q. Zero or several matching rows
// yield component.ErrNotFound.
func QueryByID(ctx context.Context, q dbexec.Queryer, dialect sqlutil.Dialect, entity, id string, schema *component.AttributeSchema) (component.ValueRecord, error) {
	planned, err := planner.PlanByID(dialect, entity, id)
	if err != nil {
		return component.ValueRecord{}, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.QueryContext(ctx, planned.SQL, planned.Args...)
	if err != nil {
		return component.ValueRecord{}, err
	}
	defer func() {
		_ = rows.Close()
	}()

	records, err := scanRecords(rows, schema)
	if err != nil {
		return component.ValueRecord{}, err
	}
	if len(records) != 1 {
		return component.ValueRecord{}, fmt.Errorf("%w: %s %q matched %d rows", component.ErrNotFound, entity, id, len(records))
	}
	return records[0], nil
}
