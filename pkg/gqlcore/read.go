package gqlcore

import (
	"fmt"

	"github.com/nbaertsch/gqlcore/internal/ast"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// readSelectionSetFromStore performs a full (non-diffing) read of sel
// against store, swallowing any panic raised by a malformed normalized
// graph: the store is the authoritative error surface for a post-fetch
// merge, not the fetch promise.
func readSelectionSetFromStore(sel types.SelectionSetWithRoot, store *types.ProjectedView, variables map[string]any, fragmentMap ast.FragmentMap) (result map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic reading store: %v", r)
		}
	}()
	result, _ = diffSelectionSet(string(sel.RootID), sel.SelectionSet, store, variables, fragmentMap)
	return result, nil
}
