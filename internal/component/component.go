// Package component models runtime-discovered component schemas and the values
// decoded from their per-component tables.
package component

import (
	"fmt"

	"component-graphql/internal/scalartype"
)

// ExternalPrefix is prepended to component table and attribute column names so
// user-chosen names never collide with reserved identifiers in the store.
const ExternalPrefix = "external_"

// TableName returns the storage table for a component.
func TableName(entity string) string {
	return ExternalPrefix + entity
}

// ColumnName returns the storage column for a component attribute.
func ColumnName(attribute string) string {
	return ExternalPrefix + attribute
}

// Component identifies a registered component.
type Component struct {
	ID   string
	Name string
}

// Attribute is one named, typed field of a component.
type Attribute struct {
	Name string
	Type string
}

// AttributeSchema is an ordered mapping from attribute name to declared type tag.
// Order is insertion order; re-setting an existing name replaces its type but
// keeps its original position.
type AttributeSchema struct {
	order []string
	types map[string]string
}

// NewAttributeSchema builds a schema from attributes in order.
func NewAttributeSchema(attrs ...Attribute) *AttributeSchema {
	s := &AttributeSchema{types: make(map[string]string, len(attrs))}
	for _, attr := range attrs {
		s.Set(attr.Name, attr.Type)
	}
	return s
}

// Set adds or replaces an attribute.
func (s *AttributeSchema) Set(name, typeTag string) {
	if s.types == nil {
		s.types = make(map[string]string)
	}
	if _, exists := s.types[name]; !exists {
		s.order = append(s.order, name)
	}
	s.types[name] = typeTag
}

// Type returns the declared type tag of an attribute.
func (s *AttributeSchema) Type(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	typeTag, ok := s.types[name]
	return typeTag, ok
}

// Kind resolves the scalar kind of an attribute.
func (s *AttributeSchema) Kind(name string) (scalartype.Kind, error) {
	typeTag, ok := s.Type(name)
	if !ok {
		return scalartype.KindString, fmt.Errorf("attribute %q is not part of the schema", name)
	}
	return scalartype.Resolve(typeTag)
}

// Len returns the number of attributes.
func (s *AttributeSchema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Names returns attribute names in schema order.
func (s *AttributeSchema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Attributes returns the attributes in schema order.
func (s *AttributeSchema) Attributes() []Attribute {
	if s == nil {
		return nil
	}
	attrs := make([]Attribute, 0, len(s.order))
	for _, name := range s.order {
		attrs = append(attrs, Attribute{Name: name, Type: s.types[name]})
	}
	return attrs
}

// Validate checks that every declared type tag resolves to a known kind.
func (s *AttributeSchema) Validate() error {
	for _, attr := range s.Attributes() {
		if _, err := scalartype.Resolve(attr.Type); err != nil {
			return fmt.Errorf("attribute %s: %w", attr.Name, err)
		}
	}
	return nil
}

// Filter is one equality filter with its string-encoded value.
type Filter struct {
	Attribute string
	Value     string
}

// FilterSet holds equality filters in schema order.
type FilterSet []Filter

// Get returns the filter value for an attribute.
func (f FilterSet) Get(attribute string) (string, bool) {
	for _, filter := range f {
		if filter.Attribute == attribute {
			return filter.Value, true
		}
	}
	return "", false
}

// QuerySpec describes a multi-row component query.
type QuerySpec struct {
	Entity  string
	Filters FilterSet
	Limit   uint64
}
