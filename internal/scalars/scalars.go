// Package scalars defines the custom GraphQL scalars exposed by component types.
package scalars

import (
	"math"
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// NonNegativeInt is used for row caps such as the limit argument.
func NonNegativeInt() *graphql.Scalar {
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        "NonNegativeInt",
		Description: "An integer greater than or equal to zero.",
		Serialize: func(value interface{}) interface{} {
			if parsed, ok := coerceNonNegativeInt(value); ok {
				return parsed
			}
			return nil
		},
		ParseValue: func(value interface{}) interface{} {
			if parsed, ok := coerceNonNegativeInt(value); ok {
				return parsed
			}
			return nil
		},
		ParseLiteral: func(valueAST ast.Value) interface{} {
			intValue, ok := valueAST.(*ast.IntValue)
			if !ok {
				return nil
			}
			parsed, err := strconv.Atoi(intValue.Value)
			if err != nil || parsed < 0 {
				return nil
			}
			return parsed
		},
	})
}

// U64 carries numeric component attributes. Unlike Int it is not limited to
// 32 bits: outputs serialize as JSON numbers, inputs parse to uint64.
func U64() *graphql.Scalar {
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        "U64",
		Description: "Unsigned 64-bit integer.",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case int64:
				return v
			case uint64:
				return v
			case int:
				return int64(v)
			case uint32:
				return uint64(v)
			case string:
				if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
					return parsed
				}
				return nil
			default:
				return nil
			}
		},
		ParseValue: func(value interface{}) interface{} {
			if parsed, ok := coerceUint64(value); ok {
				return parsed
			}
			return nil
		},
		ParseLiteral: func(valueAST ast.Value) interface{} {
			var raw string
			switch v := valueAST.(type) {
			case *ast.IntValue:
				raw = v.Value
			case *ast.StringValue:
				raw = v.Value
			default:
				return nil
			}
			parsed, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil
			}
			return parsed
		},
	})
}

func coerceUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint64:
		return v, true
	case float64:
		// JSON variables decode as float64.
		if v != math.Trunc(v) || v < 0 || v >= math.MaxUint64 {
			return 0, false
		}
		return uint64(v), true
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func coerceNonNegativeInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v < 0 {
			return 0, false
		}
		return v, true
	case int32:
		if v < 0 {
			return 0, false
		}
		return int(v), true
	case int64:
		if v < 0 || v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case float64:
		if v != math.Trunc(v) || v < 0 || v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
