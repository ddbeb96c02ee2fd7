// Package planner converts component queries into parameterized SQL statements.
// Every filter value is passed as a bound argument; only identifiers derived from
// component metadata are written into the statement text, and those are quoted.
package planner
