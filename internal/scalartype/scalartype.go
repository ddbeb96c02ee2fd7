// Package scalartype classifies the type tags declared in component metadata.
// Every other layer (argument parsing, query planning, row decoding) asks this
// package which semantic category an attribute belongs to.
package scalartype

import (
	"errors"
	"fmt"
)

// ErrUnknownType reports a type tag that is not part of the known scalar set.
var ErrUnknownType = errors.New("unknown scalar type")

// Kind is the semantic category of a declared scalar type.
type Kind int

const (
	// KindString covers text and string-encoded numerics too wide for int64.
	KindString Kind = iota
	// KindNumeric covers unsigned integers that fit in a 64-bit column.
	KindNumeric
	// KindBool is stored as an integer 0 or 1.
	KindBool
)

var kindsByTag = map[string]Kind{
	"bool": KindBool,

	"u8":    KindNumeric,
	"u16":   KindNumeric,
	"u32":   KindNumeric,
	"u64":   KindNumeric,
	"usize": KindNumeric,

	// Wide integers and addresses are stored as hex/decimal text.
	"u128":            KindString,
	"u250":            KindString,
	"u256":            KindString,
	"felt252":         KindString,
	"ClassHash":       KindString,
	"ContractAddress": KindString,
	"Cursor":          KindString,
	"DateTime":        KindString,
	"String":          KindString,
}

// Resolve maps a declared type tag to its Kind. Tags are case sensitive.
func Resolve(tag string) (Kind, error) {
	kind, ok := kindsByTag[tag]
	if !ok {
		return KindString, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}
	return kind, nil
}

// IsNumeric reports whether the kind is read and filtered as an unsigned integer.
func (k Kind) IsNumeric() bool {
	return k == KindNumeric
}

// String returns a short lowercase label used in logs and errors.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumeric:
		return "numeric"
	default:
		return "string"
	}
}

// GraphQLName returns the GraphQL scalar name used to expose values of this kind.
func (k Kind) GraphQLName() string {
	switch k {
	case KindBool:
		return "Boolean"
	case KindNumeric:
		return "U64"
	default:
		return "String"
	}
}
