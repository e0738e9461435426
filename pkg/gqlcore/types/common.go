// Package types holds the data-transfer records exchanged between the
// QueryManager and its callers and collaborators: selection sets, query
// store snapshots, watch options, and GraphQL results.
package types

import (
	"github.com/nbaertsch/gqlcore/internal/ast"
)

// RootKind names the two addressable roots a selection can be rooted at.
type RootKind string

const (
	RootQuery    RootKind = "ROOT_QUERY"
	RootMutation RootKind = "ROOT_MUTATION"
)

// SelectionSetWithRoot is the addressable unit of reads, writes, and
// diffs: a selection tree plus the root entity id and type it hangs
// off of. Immutable after construction.
type SelectionSetWithRoot struct {
	RootID       RootKind
	TypeName     string
	SelectionSet *ast.SelectionSet
}
