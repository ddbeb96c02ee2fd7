// Package introspection discovers component metadata stored in the database.
// It reads the registered components and the attribute schema of each component
// from the metadata tables maintained by the indexer.
package introspection

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"component-graphql/internal/component"
	"component-graphql/internal/dbexec"
	"component-graphql/internal/sqlutil"
)

const (
	// MembersTable holds one row per component attribute.
	MembersTable = "component_members"
	// ComponentsTable holds one row per registered component.
	ComponentsTable = "components"
)

// Member is one row of the component_members table.
type Member struct {
	ComponentID string
	Name        string
	Type        string
	Slot        int64
	Offset      int64
}

// LoadAttributeSchema reads the attribute schema of a component in one round trip.
// Rows are folded in the order the store returns them; a repeated attribute name
// overwrites the earlier type. Every type tag must resolve to a known scalar kind.
func LoadAttributeSchema(ctx context.Context, q dbexec.Queryer, dialect sqlutil.Dialect, componentID string) (*component.AttributeSchema, error) {
	ctx, span := startSpan(ctx, "introspection.load_attribute_schema",
		attribute.String("component.id", componentID),
	)
	defer span.End()

	members, err := loadMembers(ctx, q, dialect, componentID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	schema := component.NewAttributeSchema()
	for _, m := range members {
		schema.Set(m.Name, m.Type)
	}
	if err := schema.Validate(); err != nil {
		err = fmt.Errorf("invalid schema for component %s: %w", componentID, err)
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("component.attributes", schema.Len()))
	return schema, nil
}

func loadMembers(ctx context.Context, q dbexec.Queryer, dialect sqlutil.Dialect, componentID string) ([]Member, error) {
	query, args, err := sq.Select(
		dialect.QuoteIdentifier("component_id"),
		dialect.QuoteIdentifier("name"),
		dialect.QuoteIdentifier("type"),
		dialect.QuoteIdentifier("slot"),
		dialect.QuoteIdentifier("offset"),
	).
		From(dialect.QuoteIdentifier(MembersTable)).
		Where(sq.Eq{dialect.QuoteIdentifier("component_id"): componentID}).
		PlaceholderFormat(dialect.Placeholder()).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members of component %s: %w", componentID, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ComponentID, &m.Name, &m.Type, &m.Slot, &m.Offset); err != nil {
			return nil, fmt.Errorf("failed to scan member of component %s: %w", componentID, err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read members of component %s: %w", componentID, err)
	}
	return members, nil
}

// ListComponents returns every registered component ordered by name.
func ListComponents(ctx context.Context, q dbexec.Queryer, dialect sqlutil.Dialect) ([]component.Component, error) {
	ctx, span := startSpan(ctx, "introspection.list_components")
	defer span.End()

	query, args, err := sq.Select(dialect.QuoteIdentifier("id"), dialect.QuoteIdentifier("name")).
		From(dialect.QuoteIdentifier(ComponentsTable)).
		OrderBy(dialect.QuoteIdentifier("name")).
		PlaceholderFormat(dialect.Placeholder()).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var components []component.Component
	for rows.Next() {
		var c component.Component
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			recordSpanError(span, err)
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("components.count", len(components)))
	return components, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("component-graphql/introspection")
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
