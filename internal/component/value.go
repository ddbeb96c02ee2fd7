package component

import (
	"bytes"
	"encoding/json"

	"component-graphql/internal/scalartype"
)

// BoolTrue is the stored integer encoding of a true boolean.
const BoolTrue int64 = 1

// Value is a sealed tagged variant holding one decoded attribute value.
// Only Bool, Numeric and String implement it.
type Value interface {
	// Kind reports the scalar category of the value.
	Kind() scalartype.Kind
	// Interface returns the value as a plain Go value for the GraphQL layer.
	Interface() any
	// Encode returns the value in its storage encoding.
	Encode() any

	componentValue()
}

// Bool is a decoded boolean attribute.
type Bool bool

func (Bool) componentValue() {}

func (Bool) Kind() scalartype.Kind { return scalartype.KindBool }

func (v Bool) Interface() any { return bool(v) }

func (v Bool) Encode() any {
	if v {
		return BoolTrue
	}
	return int64(0)
}

// DecodeBool maps a stored integer to a boolean. Only BoolTrue is true.
func DecodeBool(stored int64) Bool {
	return Bool(stored == BoolTrue)
}

// Numeric is a decoded integer attribute.
type Numeric int64

func (Numeric) componentValue() {}

func (Numeric) Kind() scalartype.Kind { return scalartype.KindNumeric }

func (v Numeric) Interface() any { return int64(v) }

func (v Numeric) Encode() any { return int64(v) }

// String is a decoded text attribute.
type String string

func (String) componentValue() {}

func (String) Kind() scalartype.Kind { return scalartype.KindString }

func (v String) Interface() any { return string(v) }

func (v String) Encode() any { return string(v) }

// Field pairs an attribute name with its decoded value.
type Field struct {
	Name  string
	Value Value
}

// ValueRecord is an immutable, ordered set of decoded attribute values.
type ValueRecord struct {
	fields []Field
	index  map[string]int
}

// NewValueRecord builds a record from fields in order. A repeated name replaces
// the earlier value in place.
func NewValueRecord(fields ...Field) ValueRecord {
	rec := ValueRecord{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if i, ok := rec.index[f.Name]; ok {
			rec.fields[i].Value = f.Value
			continue
		}
		rec.index[f.Name] = len(rec.fields)
		rec.fields = append(rec.fields, f)
	}
	return rec
}

// Len returns the number of fields.
func (r ValueRecord) Len() int {
	return len(r.fields)
}

// Get returns the value of a field.
func (r ValueRecord) Get(name string) (Value, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Fields returns a copy of the fields in order.
func (r ValueRecord) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the field names in order.
func (r ValueRecord) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Map flattens the record into the map shape graphql-go resolves fields from.
func (r ValueRecord) Map() map[string]any {
	out := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		out[f.Name] = f.Value.Interface()
	}
	return out
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r ValueRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value.Interface())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
