package resolver

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cast"

	"component-graphql/internal/component"
	"component-graphql/internal/naming"
	"component-graphql/internal/scalartype"
)

// Storage encodings of boolean filter values.
const (
	boolFilterTrue  = "1"
	boolFilterFalse = "0"
)

// ParseArguments turns raw GraphQL arguments into equality filters and a row cap.
// Filters follow schema order; arguments naming no attribute are ignored and
// absent or null arguments produce no filter.
func ParseArguments(args map[string]any, schema *component.AttributeSchema, defaultLimit uint64) (component.FilterSet, uint64, error) {
	filters := make(component.FilterSet, 0, schema.Len())

	for _, attr := range schema.Attributes() {
		if attr.Name == naming.LimitArgument {
			continue
		}
		raw, ok := args[attr.Name]
		if !ok || raw == nil {
			continue
		}

		kind, err := scalartype.Resolve(attr.Type)
		if err != nil {
			return nil, 0, fmt.Errorf("attribute %s: %w", attr.Name, err)
		}

		encoded, err := encodeFilterValue(kind, raw)
		if err != nil {
			return nil, 0, component.InvalidArgumentError(attr.Name, err)
		}
		filters = append(filters, component.Filter{Attribute: attr.Name, Value: encoded})
	}

	limit := defaultLimit
	if raw, ok := args[naming.LimitArgument]; ok && raw != nil {
		parsed, err := toUint64(raw)
		if err != nil {
			return nil, 0, component.InvalidArgumentError(naming.LimitArgument, err)
		}
		limit = parsed
	}

	return filters, limit, nil
}

func encodeFilterValue(kind scalartype.Kind, raw any) (string, error) {
	switch kind {
	case scalartype.KindNumeric:
		n, err := toUint64(raw)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(n, 10), nil
	case scalartype.KindBool:
		b, err := toBool(raw)
		if err != nil {
			return "", err
		}
		if b {
			return boolFilterTrue, nil
		}
		return boolFilterFalse, nil
	default:
		s, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil
	}
}

// toUint64 accepts unsigned values, non-negative integers, integral floats
// (JSON variables) and base-10 strings.
func toUint64(raw any) (uint64, error) {
	switch v := raw.(type) {
	case bool:
		return 0, fmt.Errorf("expected unsigned integer, got bool")
	case string:
		return strconv.ParseUint(v, 10, 64)
	case float32:
		return floatToUint64(float64(v))
	case float64:
		return floatToUint64(v)
	}
	return cast.ToUint64E(raw)
}

func floatToUint64(v float64) (uint64, error) {
	if v != math.Trunc(v) || v < 0 || v >= math.MaxUint64 {
		return 0, fmt.Errorf("%v is not an unsigned integer", v)
	}
	return uint64(v), nil
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	}
	return cast.ToBoolE(raw)
}
