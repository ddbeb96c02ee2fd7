package schemarefresh

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/graphql-go/graphql"

	"component-graphql/internal/dbexec"
	"component-graphql/internal/introspection"
	"component-graphql/internal/resolver"
	"component-graphql/internal/scalartype"
	"component-graphql/internal/sqlutil"
)

// BuildSchemaConfig defines inputs for schema assembly.
type BuildSchemaConfig struct {
	Queryer dbexec.Queryer
	Dialect sqlutil.Dialect
	States  *resolver.ComponentStates
	Logger  *slog.Logger
}

// BuildSchemaResult contains schema artifacts produced by BuildSchema.
type BuildSchemaResult struct {
	Definitions   []resolver.ComponentDefinition
	GraphQLSchema graphql.Schema
	Fingerprint   string
}

// LoadDefinitions reads every registered component with its attribute schema.
// Components declaring an unknown type tag are skipped with a warning.
func LoadDefinitions(ctx context.Context, q dbexec.Queryer, dialect sqlutil.Dialect, logger *slog.Logger) ([]resolver.ComponentDefinition, error) {
	if logger == nil {
		logger = slog.Default()
	}

	components, err := introspection.ListComponents(ctx, q, dialect)
	if err != nil {
		return nil, err
	}

	definitions := make([]resolver.ComponentDefinition, 0, len(components))
	for _, c := range components {
		schema, err := introspection.LoadAttributeSchema(ctx, q, dialect, c.ID)
		if err != nil {
			if errors.Is(err, scalartype.ErrUnknownType) {
				logger.Warn("skipping component with unsupported attribute type",
					slog.String("component", c.Name),
					slog.String("error", err.Error()),
				)
				continue
			}
			return nil, err
		}
		definitions = append(definitions, resolver.ComponentDefinition{Component: c, Schema: schema})
	}
	return definitions, nil
}

// Fingerprint hashes component identities and attribute schemas so that
// unchanged metadata yields the same value.
func Fingerprint(definitions []resolver.ComponentDefinition) string {
	hash := sha256.New()
	for _, def := range definitions {
		fmt.Fprintf(hash, "%s|%s\n", def.Component.ID, def.Component.Name)
		for _, attr := range def.Schema.Attributes() {
			fmt.Fprintf(hash, "  %s:%s\n", attr.Name, attr.Type)
		}
	}
	return hex.EncodeToString(hash.Sum(nil))
}

// BuildSchema runs the schema assembly pipeline used by the manager and tests.
func BuildSchema(ctx context.Context, cfg BuildSchemaConfig) (*BuildSchemaResult, error) {
	if cfg.Queryer == nil {
		return nil, fmt.Errorf("schema builder requires a queryer")
	}

	definitions, err := LoadDefinitions(ctx, cfg.Queryer, cfg.Dialect, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load component definitions: %w", err)
	}

	return buildFromDefinitions(cfg, definitions)
}

func buildFromDefinitions(cfg BuildSchemaConfig, definitions []resolver.ComponentDefinition) (*BuildSchemaResult, error) {
	res := resolver.NewResolver(cfg.States, definitions)
	res.SetLogger(cfg.Logger)
	graphqlSchema, err := res.BuildGraphQLSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to build GraphQL schema: %w", err)
	}

	return &BuildSchemaResult{
		Definitions:   definitions,
		GraphQLSchema: graphqlSchema,
		Fingerprint:   Fingerprint(definitions),
	}, nil
}
