package types

import "fmt"

// GraphQLError is one entry of a successful-transport response's
// top-level errors[] array (schema-level error, never a rejection).
type GraphQLError struct {
	Message   string         `json:"message"`
	Path      []string       `json:"path,omitempty"`
	Locations []ErrorLoc     `json:"locations,omitempty"`
	Extra     map[string]any `json:"extensions,omitempty"`
}

// ErrorLoc is a line/column pointer into the source query text.
type ErrorLoc struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String implements fmt.Stringer for log-friendly rendering.
func (e GraphQLError) String() string {
	return fmt.Sprintf("%s", e.Message)
}

// GraphQLResult is the payload delivered to a caller or listener: the
// assembled data, any schema-level errors, and whether it is a partial
// (cache-only) or complete view.
type GraphQLResult struct {
	Data     map[string]any `json:"data,omitempty"`
	Errors   []GraphQLError `json:"errors,omitempty"`
	Complete bool           `json:"-"`
}

// HasErrors reports whether the result carries schema-level errors.
func (r *GraphQLResult) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}
