// Package naming derives GraphQL type and field names from component metadata.
package naming

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// LimitArgument is the reserved argument carrying the row cap of list fields.
const LimitArgument = "limit"

var graphqlNamePattern = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// IsValidName reports whether name can be used verbatim as a GraphQL name.
func IsValidName(name string) bool {
	return graphqlNamePattern.MatchString(name) && !isIntrospectionName(name)
}

func isIntrospectionName(name string) bool {
	return len(name) >= 2 && name[:2] == "__"
}

// TypeName returns the GraphQL object type name for a component.
// Example: "position" -> "Position"; reserved names are suffixed: "Query" -> "Query_".
func TypeName(componentName string) string {
	name := upperFirst(componentName)
	if isReservedTypeName(name) {
		return name + "_"
	}
	return name
}

// ListFieldName returns the root field listing states of a component.
// Example: "Position" -> "positionComponents"
func ListFieldName(componentName string) string {
	return lowerFirst(componentName) + "Components"
}

// SingleFieldName returns the root field fetching one state by id.
// Example: "Position" -> "positionComponent"
func SingleFieldName(componentName string) string {
	return lowerFirst(componentName) + "Component"
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
