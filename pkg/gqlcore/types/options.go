package types

import (
	"time"

	"github.com/nbaertsch/gqlcore/internal/ast"
)

// WatchOptions configures a watchQuery/query call. Immutable from the
// caller's perspective; refetch/startPolling derive a new record rather
// than mutating this one.
type WatchOptions struct {
	Query             *ast.Document
	Variables         map[string]any
	ForceFetch        bool
	ReturnPartialData bool
	PollInterval      time.Duration

	// UseSubscription routes this watch to the Live Query Watch (push
	// over a GraphQL subscription transport) instead of the polling
	// Scheduler. Mutually exclusive with PollInterval in practice: a
	// live query is, like a polling query, owned exclusively by its
	// driving mechanism.
	UseSubscription bool
}

// WithVariables returns a derived options record with new variables,
// used by refetch.
func (o WatchOptions) WithVariables(vars map[string]any) WatchOptions {
	o.Variables = vars
	return o
}

// WithForceFetch returns a derived options record with ForceFetch set,
// used by refetch (which always re-enters fetchQuery with forceFetch=true).
func (o WatchOptions) WithForceFetch(force bool) WatchOptions {
	o.ForceFetch = force
	return o
}

// MutateOptions configures a mutate() call.
type MutateOptions struct {
	Mutation  *ast.Document
	Variables map[string]any
}
