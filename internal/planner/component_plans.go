package planner

import (
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"component-graphql/internal/component"
	"component-graphql/internal/scalartype"
	"component-graphql/internal/sqlutil"
)

// DefaultLimit is the row cap applied when a query does not supply one.
const DefaultLimit = 10

// OrderNewestFirst is the fixed ordering of multi-row component queries.
const OrderNewestFirst = "created_at DESC"

// SQLQuery represents a planned SQL statement with bound args.
type SQLQuery struct {
	SQL  string
	Args []interface{}
}

// PlanMany builds the multi-row query for a component table:
// equality filters joined with AND, newest rows first, capped at spec.Limit.
func PlanMany(dialect sqlutil.Dialect, spec component.QuerySpec, schema *component.AttributeSchema) (SQLQuery, error) {
	if spec.Entity == "" {
		return SQLQuery{}, fmt.Errorf("component name is required")
	}

	builder := sq.Select("*").From(dialect.QuoteIdentifier(component.TableName(spec.Entity)))

	if len(spec.Filters) > 0 {
		conditions := make(sq.And, 0, len(spec.Filters))
		for _, filter := range spec.Filters {
			value, err := bindValue(schema, filter)
			if err != nil {
				return SQLQuery{}, err
			}
			column := dialect.QuoteIdentifier(component.ColumnName(filter.Attribute))
			conditions = append(conditions, sq.Eq{column: value})
		}
		builder = builder.Where(conditions)
	}

	query, args, err := builder.
		OrderBy(OrderNewestFirst).
		Suffix("LIMIT ?", spec.Limit).
		PlaceholderFormat(dialect.Placeholder()).
		ToSql()
	if err != nil {
		return SQLQuery{}, err
	}
	return SQLQuery{SQL: query, Args: args}, nil
}

// PlanByID builds the single-row lookup for a component table.
func PlanByID(dialect sqlutil.Dialect, entity string, id string) (SQLQuery, error) {
	if entity == "" {
		return SQLQuery{}, fmt.Errorf("component name is required")
	}

	query, args, err := sq.Select("*").
		From(dialect.QuoteIdentifier(component.TableName(entity))).
		Where(sq.Eq{dialect.QuoteIdentifier("id"): id}).
		PlaceholderFormat(dialect.Placeholder()).
		ToSql()
	if err != nil {
		return SQLQuery{}, err
	}
	return SQLQuery{SQL: query, Args: args}, nil
}

// bindValue converts a string-encoded filter into the argument bound for its column.
func bindValue(schema *component.AttributeSchema, filter component.Filter) (interface{}, error) {
	kind, err := schema.Kind(filter.Attribute)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", filter.Attribute, err)
	}

	switch kind {
	case scalartype.KindNumeric:
		n, err := strconv.ParseUint(filter.Value, 10, 64)
		if err != nil {
			return nil, component.InvalidArgumentError(filter.Attribute, err)
		}
		return n, nil
	case scalartype.KindBool:
		n, err := strconv.ParseInt(filter.Value, 10, 64)
		if err != nil {
			return nil, component.InvalidArgumentError(filter.Attribute, err)
		}
		return n, nil
	default:
		return filter.Value, nil
	}
}
