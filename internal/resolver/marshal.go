package resolver

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cast"

	"component-graphql/internal/component"
	"component-graphql/internal/dbexec"
	"component-graphql/internal/scalartype"
)

// MarshalRow decodes one raw row into a record following schema order.
// Each attribute is read from its external_ column by kind.
func MarshalRow(columns []string, values []any, schema *component.AttributeSchema) (component.ValueRecord, error) {
	if len(columns) != len(values) {
		return component.ValueRecord{}, fmt.Errorf("row has %d columns but %d values", len(columns), len(values))
	}

	index := make(map[string]int, len(columns))
	for i, column := range columns {
		index[column] = i
	}

	fields := make([]component.Field, 0, schema.Len())
	for _, attr := range schema.Attributes() {
		kind, err := scalartype.Resolve(attr.Type)
		if err != nil {
			return component.ValueRecord{}, fmt.Errorf("attribute %s: %w", attr.Name, err)
		}

		i, ok := index[component.ColumnName(attr.Name)]
		if !ok {
			return component.ValueRecord{}, &component.DecodeError{Attribute: attr.Name, Err: component.ErrMissingColumn}
		}

		value, err := decodeValue(kind, values[i])
		if err != nil {
			return component.ValueRecord{}, &component.DecodeError{Attribute: attr.Name, Err: err}
		}
		fields = append(fields, component.Field{Name: attr.Name, Value: value})
	}

	return component.NewValueRecord(fields...), nil
}

// scanRecords drains rows into records. The first failing row discards the whole result.
func scanRecords(rows dbexec.Rows, schema *component.AttributeSchema) ([]component.ValueRecord, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := make([]component.ValueRecord, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record, err := MarshalRow(columns, values, schema)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeValue(kind scalartype.Kind, raw any) (component.Value, error) {
	if raw == nil {
		return nil, component.ErrNullValue
	}

	switch kind {
	case scalartype.KindBool:
		n, err := storedInt64(raw)
		if err != nil {
			return nil, err
		}
		return component.DecodeBool(n), nil
	case scalartype.KindNumeric:
		n, err := storedInt64(raw)
		if err != nil {
			return nil, err
		}
		return component.Numeric(n), nil
	case scalartype.KindString:
		s, err := storedString(raw)
		if err != nil {
			return nil, err
		}
		return component.String(s), nil
	default:
		return nil, fmt.Errorf("%w: kind %d", scalartype.ErrUnknownType, kind)
	}
}

// storedInt64 reads an integer column. Text-protocol drivers return digits as bytes.
func storedInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int, int8, int16, int32, uint8, uint16, uint32, bool:
		return cast.ToInt64E(v)
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, fmt.Errorf("value %v is not an integer", v)
		}
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}

func storedString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case time.Time:
		return v.UTC().Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("expected text, got %T", raw)
	}
}
