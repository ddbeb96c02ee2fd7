package resolver

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"component-graphql/internal/component"
	"component-graphql/internal/scalartype"
)

var playerColumns = []string{"id", "created_at", "external_owner", "external_health", "external_alive"}

func TestMarshalRow(t *testing.T) {
	record, err := MarshalRow(playerColumns, []any{"p1", "2024-01-01", "0xabc", int64(10), int64(1)}, playerSchema())
	require.NoError(t, err)

	assert.Equal(t, []string{"owner", "health", "alive"}, record.Names())
	owner, _ := record.Get("owner")
	health, _ := record.Get("health")
	alive, _ := record.Get("alive")
	assert.Equal(t, component.String("0xabc"), owner)
	assert.Equal(t, component.Numeric(10), health)
	assert.Equal(t, component.Bool(true), alive)
}

func TestMarshalRow_BoolDecoding(t *testing.T) {
	tests := []struct {
		stored any
		want   component.Bool
	}{
		{stored: int64(1), want: true},
		{stored: int64(0), want: false},
		{stored: int64(2), want: false},
		{stored: int64(-1), want: false},
		{stored: []byte("1"), want: true},
		{stored: []byte("7"), want: false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.stored), func(t *testing.T) {
			record, err := MarshalRow(playerColumns, []any{"p1", "t", "0xabc", int64(1), tt.stored}, playerSchema())
			require.NoError(t, err)
			alive, ok := record.Get("alive")
			require.True(t, ok)
			assert.Equal(t, tt.want, alive)
		})
	}
}

func TestMarshalRow_TextProtocolValues(t *testing.T) {
	record, err := MarshalRow(playerColumns, []any{[]byte("p1"), []byte("t"), []byte("0xabc"), []byte("42"), []byte("0")}, playerSchema())
	require.NoError(t, err)

	health, _ := record.Get("health")
	owner, _ := record.Get("owner")
	assert.Equal(t, component.Numeric(42), health)
	assert.Equal(t, component.String("0xabc"), owner)
}

func TestMarshalRow_DateTimeAsText(t *testing.T) {
	schema := component.NewAttributeSchema(component.Attribute{Name: "seen", Type: "DateTime"})
	seen := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	record, err := MarshalRow([]string{"external_seen"}, []any{seen}, schema)
	require.NoError(t, err)
	value, _ := record.Get("seen")
	assert.Equal(t, component.String("2024-03-01T12:30:00Z"), value)
}

func TestMarshalRow_Errors(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		values  []any
		target  error
	}{
		{
			name:    "missing column",
			columns: []string{"id", "external_owner", "external_health"},
			values:  []any{"p1", "0xabc", int64(1)},
			target:  component.ErrMissingColumn,
		},
		{
			name:    "null value",
			columns: playerColumns,
			values:  []any{"p1", "t", nil, int64(1), int64(1)},
			target:  component.ErrNullValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalRow(tt.columns, tt.values, playerSchema())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))

			var decodeErr *component.DecodeError
			require.True(t, errors.As(err, &decodeErr))
		})
	}
}

func TestMarshalRow_TypeMismatch(t *testing.T) {
	_, err := MarshalRow(playerColumns, []any{"p1", "t", int64(5), int64(1), int64(1)}, playerSchema())
	require.Error(t, err)

	var decodeErr *component.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "owner", decodeErr.Attribute)

	_, err = MarshalRow(playerColumns, []any{"p1", "t", "0xabc", "ten", int64(1)}, playerSchema())
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "health", decodeErr.Attribute)
}

func TestMarshalRow_UnknownType(t *testing.T) {
	schema := component.NewAttributeSchema(component.Attribute{Name: "blob", Type: "bytes"})

	_, err := MarshalRow([]string{"external_blob"}, []any{"x"}, schema)
	require.Error(t, err)
	assert.True(t, errors.Is(err, scalartype.ErrUnknownType))
}

func TestMarshalRow_RoundTrip(t *testing.T) {
	stored := []any{"p1", "t", "0xabc", int64(99), int64(0)}
	record, err := MarshalRow(playerColumns, stored, playerSchema())
	require.NoError(t, err)

	for i, field := range record.Fields() {
		assert.Equal(t, stored[i+2], field.Value.Encode(), field.Name)
	}
}

func TestScanRecords(t *testing.T) {
	rows := &fakeRows{
		columns: playerColumns,
		rows: [][]any{
			{"p2", "t2", "0xabc", int64(5), int64(1)},
			{"p1", "t1", "0xdef", int64(7), int64(0)},
		},
	}

	records, err := scanRecords(rows, playerSchema())
	require.NoError(t, err)
	require.Len(t, records, 2)
	owner, _ := records[1].Get("owner")
	assert.Equal(t, component.String("0xdef"), owner)
}

func TestScanRecords_EmptyIsNotNil(t *testing.T) {
	records, err := scanRecords(&fakeRows{columns: playerColumns}, playerSchema())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestScanRecords_DiscardsAllOnFailure(t *testing.T) {
	rows := &fakeRows{
		columns: playerColumns,
		rows: [][]any{
			{"p2", "t2", "0xabc", int64(5), int64(1)},
			{"p1", "t1", nil, int64(7), int64(0)},
		},
	}

	records, err := scanRecords(rows, playerSchema())
	require.Error(t, err)
	assert.Nil(t, records)
}

func TestScanRecords_RowsError(t *testing.T) {
	rows := &fakeRows{columns: playerColumns, err: errors.New("connection reset")}

	_, err := scanRecords(rows, playerSchema())
	require.EqualError(t, err, "connection reset")
}
