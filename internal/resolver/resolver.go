// Package resolver exposes component states through GraphQL.
// Schema shapes come from component metadata; every resolution reloads the
// attribute schema, parses equality filters, queries the component table and
// marshals rows into ordered value records.
package resolver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/graphql-go/graphql"

	"component-graphql/internal/component"
	"component-graphql/internal/naming"
	"component-graphql/internal/scalars"
	"component-graphql/internal/scalartype"
)

// ComponentDefinition pairs a component with the attribute schema its GraphQL
// type is built from.
type ComponentDefinition struct {
	Component component.Component
	Schema    *component.AttributeSchema
}

// Resolver builds the GraphQL schema for a set of components.
type Resolver struct {
	states         *ComponentStates
	definitions    []ComponentDefinition
	logger         *slog.Logger
	u64            *graphql.Scalar
	nonNegativeInt *graphql.Scalar
}

// NewResolver creates a resolver answering queries through states.
func NewResolver(states *ComponentStates, definitions []ComponentDefinition) *Resolver {
	return &Resolver{
		states:         states,
		definitions:    definitions,
		logger:         slog.Default(),
		u64:            scalars.U64(),
		nonNegativeInt: scalars.NonNegativeInt(),
	}
}

// SetLogger replaces the logger used to report skipped components and attributes.
func (r *Resolver) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// BuildGraphQLSchema assembles one object type plus a list and a by-id root
// field per component.
func (r *Resolver) BuildGraphQLSchema() (graphql.Schema, error) {
	queryFields := graphql.Fields{}
	typeNames := make(map[string]string)

	for _, def := range r.definitions {
		name := def.Component.Name
		if !naming.IsValidName(name) {
			r.logger.Warn("skipping component with invalid GraphQL name", slog.String("component", name))
			continue
		}
		typeName := naming.TypeName(name)
		if other, taken := typeNames[typeName]; taken {
			r.logger.Warn("skipping component with conflicting GraphQL type name",
				slog.String("component", name),
				slog.String("conflicts_with", other),
			)
			continue
		}

		objType, argFields := r.buildComponentType(typeName, def)
		if objType == nil {
			r.logger.Warn("skipping component without exposable attributes", slog.String("component", name))
			continue
		}
		typeNames[typeName] = name

		queryFields[naming.ListFieldName(name)] = &graphql.Field{
			Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(objType))),
			Description: fmt.Sprintf("Newest %s states matching every given attribute.", name),
			Args:        r.listArgs(argFields),
			Resolve:     r.makeListResolver(def.Component),
		}
		queryFields[naming.SingleFieldName(name)] = &graphql.Field{
			Type:        objType,
			Description: fmt.Sprintf("The %s state stored under id, or null.", name),
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: r.makeSingleResolver(def.Component),
		}
	}

	// If no components exist, add a placeholder query to satisfy GraphQL requirements
	if len(queryFields) == 0 {
		queryFields["_schema"] = &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return "No components registered", nil
			},
			Description: "Placeholder field when no components are registered",
		}
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queryFields,
		}),
	})
}

type argField struct {
	name string
	typ  graphql.Input
}

// buildComponentType returns nil when no attribute can be exposed.
func (r *Resolver) buildComponentType(typeName string, def ComponentDefinition) (*graphql.Object, []argField) {
	fields := graphql.Fields{}
	var args []argField

	for _, attr := range def.Schema.Attributes() {
		if !naming.IsValidName(attr.Name) {
			r.logger.Warn("skipping attribute with invalid GraphQL name",
				slog.String("component", def.Component.Name),
				slog.String("attribute", attr.Name),
			)
			continue
		}
		kind, err := scalartype.Resolve(attr.Type)
		if err != nil {
			r.logger.Warn("skipping attribute with unknown type",
				slog.String("component", def.Component.Name),
				slog.String("attribute", attr.Name),
				slog.String("type", attr.Type),
			)
			continue
		}

		scalar := r.scalarFor(kind)
		fields[attr.Name] = &graphql.Field{
			Type:        scalar,
			Description: fmt.Sprintf("%s (%s)", attr.Name, attr.Type),
		}
		if attr.Name != naming.LimitArgument {
			args = append(args, argField{name: attr.Name, typ: scalar})
		}
	}

	if len(fields) == 0 {
		return nil, nil
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name:   typeName,
		Fields: fields,
	}), args
}

func (r *Resolver) scalarFor(kind scalartype.Kind) *graphql.Scalar {
	switch kind {
	case scalartype.KindBool:
		return graphql.Boolean
	case scalartype.KindNumeric:
		return r.u64
	default:
		return graphql.String
	}
}

func (r *Resolver) listArgs(fields []argField) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		naming.LimitArgument: &graphql.ArgumentConfig{
			Type:        r.nonNegativeInt,
			Description: "Maximum number of states to return.",
		},
	}
	for _, f := range fields {
		args[f.name] = &graphql.ArgumentConfig{Type: f.typ}
	}
	return args
}

func (r *Resolver) makeListResolver(c component.Component) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		records, err := r.states.Many(p.Context, c, p.Args)
		if err != nil {
			return nil, err
		}
		results := make([]map[string]interface{}, len(records))
		for i, record := range records {
			results[i] = record.Map()
		}
		return results, nil
	}
}

func (r *Resolver) makeSingleResolver(c component.Component) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		id, ok := p.Args["id"].(string)
		if !ok {
			return nil, component.InvalidArgumentError("id", fmt.Errorf("expected string, got %T", p.Args["id"]))
		}
		record, err := r.states.ByID(p.Context, c, id)
		if errors.Is(err, component.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return record.Map(), nil
	}
}
