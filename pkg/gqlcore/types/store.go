package types

import (
	"github.com/nbaertsch/gqlcore/internal/ast"
)

// QueryStoreValue is the store's per-query snapshot record: the contract
// by which Broadcast feeds listeners. It is read from
// state[rootKey].queries[queryId] after every dispatch.
type QueryStoreValue struct {
	Loading           bool
	ReturnPartialData bool
	GraphQLErrors     []GraphQLError
	NetworkError      error
	Query             SelectionSetWithRoot
	Variables         map[string]any
	FragmentMap       ast.FragmentMap
}

// ProjectedView is state[rootKey]: the normalized entity map plus the
// per-query snapshot table. This is the value Broadcast diffs for
// structural equality between store changes.
type ProjectedView struct {
	Data    map[string]any
	Queries map[string]QueryStoreValue
}

// Clone returns a shallow-enough copy suitable for before/after
// structural-equality comparison in Broadcast; the entity map and the
// queries table are both copied one level deep since the store never
// mutates a QueryStoreValue or an entity record in place.
func (v *ProjectedView) Clone() *ProjectedView {
	if v == nil {
		return nil
	}
	out := &ProjectedView{
		Data:    make(map[string]any, len(v.Data)),
		Queries: make(map[string]QueryStoreValue, len(v.Queries)),
	}
	for k, d := range v.Data {
		out.Data[k] = d
	}
	for k, q := range v.Queries {
		out.Queries[k] = q
	}
	return out
}

// IsEmpty reports whether the view carries neither entities nor queries
// — the condition under which Broadcast fans out even when the view is
// unchanged.
func (v *ProjectedView) IsEmpty() bool {
	return v == nil || (len(v.Data) == 0 && len(v.Queries) == 0)
}
