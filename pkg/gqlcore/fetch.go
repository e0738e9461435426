package gqlcore

import (
	"context"

	"github.com/nbaertsch/gqlcore/internal/ast"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// FetchOutcome is what a fetchQuery Deferred resolves with. Err is
// populated on a network/batcher rejection but the Deferred is still
// Resolved, never Rejected: callers that need a hard failure signal
// must use Mutate or an Observer's Error capability, not this return
// value.
type FetchOutcome struct {
	Result types.GraphQLResult
	Err    error
}

// fetchQuery is the heart of the system: transform, diff against the
// store, issue whatever is missing, then merge the result back in. It
// always returns a non-nil Deferred; the deferred is resolved (never
// rejected) exactly once, on the cooperative task or from the batcher's
// continuation.
func (m *QueryManager) fetchQuery(queryID string, options types.WatchOptions) *Deferred[FetchOutcome] {
	out := NewDeferred[FetchOutcome]()

	// 1. Transform.
	transformedDoc := applyTransformer(m.config.QueryTransformer, options.Query)
	fragmentMap := ast.CollectFragments(transformedDoc)

	// 2. Wrap: the untransformed selection-set-with-root, used for the
	// final caller-facing merged read so transformer-injected fields
	// (e.g. an injected __typename) never leak into the delivered shape.
	querySS := types.SelectionSetWithRoot{
		RootID:       types.RootQuery,
		TypeName:     "Query",
		SelectionSet: options.Query.Operation.SelectionSet,
	}

	transformedSS := types.SelectionSetWithRoot{
		RootID:       types.RootQuery,
		TypeName:     "Query",
		SelectionSet: transformedDoc.Operation.SelectionSet,
	}

	// 3. Plan.
	var missing *ast.SelectionSet
	var initialResult map[string]any

	if options.ForceFetch {
		missing = transformedDoc.Operation.SelectionSet
		if options.ReturnPartialData {
			initialResult, _ = readSelectionSetFromStore(transformedSS, m.currentView(), options.Variables, fragmentMap)
		}
	} else {
		diffResult := m.diffPlanner.Diff(DiffInput{
			Selection:           transformedSS,
			Store:               m.currentView(),
			Variables:           options.Variables,
			FragmentMap:         fragmentMap,
			ThrowOnMissingField: false,
		})
		missing = diffResult.Missing
		initialResult = diffResult.Result
	}

	var minimizedDoc *ast.Document
	var minimizedQueryString string
	if missing != nil && len(missing.Selections) > 0 {
		minimizedDoc = &ast.Document{
			Operation: &ast.OperationDefinition{
				Type:                transformedDoc.Operation.Type,
				Name:                transformedDoc.Operation.Name,
				VariableDefinitions: transformedDoc.Operation.VariableDefinitions,
				// missing shares nodes with transformedDoc's own
				// selection set; clone it so the residual document
				// sent over the wire never aliases the caller's AST.
				SelectionSet: ast.CloneSelectionSet(missing),
			},
			Fragments: transformedDoc.Fragments,
		}
		minimizedQueryString = ast.Print(minimizedDoc)
	}

	// 4. Allocate requestId.
	requestID := m.ids.newRequestID()

	// 5. Emit QUERY_INIT.
	m.store.Dispatch(queryInitEvent(
		ast.Print(transformedDoc), minimizedQueryString,
		transformedDoc, minimizedDoc,
		options.Variables, options.ForceFetch, options.ReturnPartialData,
		queryID, requestID, fragmentMap,
	))

	// 6. Emit QUERY_RESULT_CLIENT when fully satisfied or partial data
	// was explicitly requested.
	complete := minimizedDoc == nil
	if complete || options.ReturnPartialData {
		m.store.Dispatch(queryResultClientEvent(
			types.GraphQLResult{Data: initialResult, Complete: complete},
			options.Variables, transformedDoc, complete, queryID,
		))
	}

	// 7. Residual exists: enqueue to the batcher and attach a continuation.
	if minimizedDoc != nil {
		batchDeferred := m.batcher.Enqueue(queryID, Request{Query: minimizedDoc, Variables: options.Variables})
		go m.awaitResidual(queryID, requestID, querySS, options.Variables, fragmentMap, batchDeferred, out)
		return out
	}

	// 8. No residual: resolve immediately with the cache-only result.
	out.Resolve(FetchOutcome{Result: types.GraphQLResult{Data: initialResult, Complete: true}})
	return out
}

// awaitResidual is fetchQuery's step-7 continuation, run once the
// Batcher resolves (or rejects) the enqueued residual request.
func (m *QueryManager) awaitResidual(queryID string, requestID int64, querySS types.SelectionSetWithRoot, variables map[string]any, fragmentMap ast.FragmentMap, batchDeferred *Deferred[types.GraphQLResult], out *Deferred[FetchOutcome]) {
	res, err := batchDeferred.Wait(context.Background())
	if err != nil {
		m.store.Dispatch(queryErrorEvent(err, queryID, requestID))
		out.Resolve(FetchOutcome{Err: err})
		return
	}
	if res.HasErrors() {
		m.config.logf("fetchQuery(%s): result carried %d graphql error(s)", queryID, len(res.Errors))
	}

	m.store.Dispatch(queryResultEvent(res, queryID, requestID))

	// Re-read the full (un-minimized) selection from the store to
	// produce the merged view. Errors here are swallowed; the store
	// remains the authoritative error surface, not the fetch promise.
	merged, readErr := readSelectionSetFromStore(querySS, m.currentView(), variables, fragmentMap)
	if readErr != nil {
		m.config.logf("fetchQuery(%s): post-fetch store re-read failed: %v", queryID, readErr)
		merged = res.Data
	}

	out.Resolve(FetchOutcome{Result: types.GraphQLResult{Data: merged, Complete: true}})
}
