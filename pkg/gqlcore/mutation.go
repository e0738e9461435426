package gqlcore

import (
	"context"

	"github.com/nbaertsch/gqlcore/internal/ast"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// Mutate runs the unconditional, single-shot mutation path: no diffing,
// no batching coordination, no client-side retry. Failures propagate to
// the caller unchanged, unlike fetchQuery's narrower resolve-never-reject
// contract.
func (m *QueryManager) Mutate(ctx context.Context, options types.MutateOptions) (types.GraphQLResult, error) {
	if options.Mutation == nil || options.Mutation.Operation == nil {
		return types.GraphQLResult{}, WrapError("Mutate", ErrInvalidOptions, "options.Mutation is required")
	}

	mutationID := m.ids.newMutationID()

	transformed := applyTransformer(m.config.QueryTransformer, options.Mutation)
	if transformed.Operation != nil {
		// Fold in anything the transformer added (e.g. an injected
		// __typename) without letting it drop a field the caller
		// originally asked for.
		transformed.Operation.SelectionSet = ast.MergeSelectionSet(options.Mutation.Operation.SelectionSet, transformed.Operation.SelectionSet)
	}
	fragmentMap := ast.CollectFragments(transformed)

	m.store.Dispatch(mutationInitEvent(ast.Print(transformed), transformed, options.Variables, mutationID, fragmentMap))

	result, err := m.network.Mutate(ctx, Request{Query: transformed, Variables: options.Variables})
	if err != nil {
		return types.GraphQLResult{}, WrapError("Mutate", err, "mutation request failed")
	}

	m.store.Dispatch(mutationResultEvent(result, mutationID))

	return result, nil
}
