// Package memstore is a reference StoreAdapter implementation: a small
// event-sourced, normalizing cache good enough to drive gqlcore's tests
// and examples. It is not a production-grade normalized cache — real
// deployments plug in their own store, with its own eviction and
// garbage-collection policy, behind the same gqlcore.StoreAdapter
// contract.
package memstore

import (
	"fmt"
	"sync"

	"github.com/nbaertsch/gqlcore/internal/ast"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

const refKey = "__ref"

// queryMeta is what the store remembers about a registered query
// between APOLLO_QUERY_INIT and the result/error event that follows it,
// so a later APOLLO_QUERY_RESULT (which carries only the raw result,
// not the selection that produced it) can still be written into the
// entity graph field-by-field rather than as an opaque blob.
type queryMeta struct {
	selection   *ast.SelectionSet
	variables   map[string]any
	fragmentMap ast.FragmentMap
}

// Store is an in-memory, mutex-guarded StoreAdapter.
type Store struct {
	mu sync.Mutex

	data    map[string]map[string]any
	queries map[string]types.QueryStoreValue
	meta    map[string]queryMeta

	listeners map[int]func()
	nextID    int
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		data:      make(map[string]map[string]any),
		queries:   make(map[string]types.QueryStoreValue),
		meta:      make(map[string]queryMeta),
		listeners: make(map[int]func()),
	}
}

// Dispatch implements gqlcore.StoreAdapter: it is synchronous, so
// GetState reflects the event by the time Dispatch returns.
func (s *Store) Dispatch(event gqlcore.Event) {
	s.mu.Lock()
	s.apply(event)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) apply(event gqlcore.Event) {
	switch event.Type {
	case gqlcore.EventQueryInit:
		s.applyQueryInit(event)
	case gqlcore.EventQueryResultClient:
		s.applyQueryResultClient(event)
	case gqlcore.EventQueryResult:
		s.applyQueryResult(event)
	case gqlcore.EventQueryError:
		s.applyQueryError(event)
	case gqlcore.EventQueryStop:
		s.applyQueryStop(event)
	case gqlcore.EventMutationResult:
		s.applyMutationResult(event)
	}
}

func (s *Store) applyQueryInit(event gqlcore.Event) {
	queryID, _ := event.Fields["queryId"].(string)
	variables, _ := event.Fields["variables"].(map[string]any)
	forceFetch, _ := event.Fields["forceFetch"].(bool)
	returnPartial, _ := event.Fields["returnPartialData"].(bool)
	fragmentMap, _ := event.Fields["fragmentMap"].(ast.FragmentMap)
	fullDoc, _ := event.Fields["query"].(*ast.Document)
	minimizedDoc, _ := event.Fields["minimizedQuery"].(*ast.Document)

	var fullSelection *ast.SelectionSet
	if fullDoc != nil && fullDoc.Operation != nil {
		fullSelection = fullDoc.Operation.SelectionSet
	}

	residual := fullSelection
	if minimizedDoc != nil && minimizedDoc.Operation != nil {
		residual = minimizedDoc.Operation.SelectionSet
	}

	s.meta[queryID] = queryMeta{selection: residual, variables: variables, fragmentMap: fragmentMap}
	s.queries[queryID] = types.QueryStoreValue{
		Loading:           !forceFetch || residual != nil,
		ReturnPartialData: returnPartial,
		Query: types.SelectionSetWithRoot{
			RootID:       types.RootQuery,
			TypeName:     "Query",
			SelectionSet: fullSelection,
		},
		Variables:   variables,
		FragmentMap: fragmentMap,
	}
}

func (s *Store) applyQueryResultClient(event gqlcore.Event) {
	queryID, _ := event.Fields["queryId"].(string)
	complete, _ := event.Fields["complete"].(bool)
	qv, ok := s.queries[queryID]
	if !ok {
		return
	}
	qv.Loading = !complete
	s.queries[queryID] = qv
}

func (s *Store) applyQueryResult(event gqlcore.Event) {
	queryID, _ := event.Fields["queryId"].(string)
	result, _ := event.Fields["result"].(types.GraphQLResult)

	if meta, ok := s.meta[queryID]; ok && meta.selection != nil {
		s.writeSelectionResult("ROOT_QUERY", meta.selection, result.Data, meta.variables, meta.fragmentMap)
	} else {
		s.mergeFlat("ROOT_QUERY", result.Data)
	}

	qv, ok := s.queries[queryID]
	if !ok {
		return
	}
	qv.Loading = false
	qv.GraphQLErrors = result.Errors
	s.queries[queryID] = qv
}

func (s *Store) applyQueryError(event gqlcore.Event) {
	queryID, _ := event.Fields["queryId"].(string)
	err, _ := event.Fields["error"].(error)
	qv, ok := s.queries[queryID]
	if !ok {
		return
	}
	qv.Loading = false
	qv.NetworkError = err
	s.queries[queryID] = qv
}

func (s *Store) applyQueryStop(event gqlcore.Event) {
	queryID, _ := event.Fields["queryId"].(string)
	delete(s.queries, queryID)
	delete(s.meta, queryID)
}

func (s *Store) applyMutationResult(event gqlcore.Event) {
	result, _ := event.Fields["result"].(types.GraphQLResult)
	s.mergeFlat("ROOT_MUTATION", result.Data)
	// Also merge the top-level response keys into the query root, so a
	// later read of those same keys from ROOT_QUERY sees them. Values are
	// written as-is: normalized entities (e.g. "User:1") that earlier
	// query results point to are not updated.
	s.mergeFlat("ROOT_QUERY", result.Data)
}

// writeSelectionResult writes data into the entity at rootID
// field-by-field, following ss so that each field lands under the same
// store key diffSelectionSet will later look it up by. A nested object
// carrying both __typename and id is normalized into its own entity
// and replaced with a reference.
func (s *Store) writeSelectionResult(rootID string, ss *ast.SelectionSet, data map[string]any, variables map[string]any, fragmentMap ast.FragmentMap) {
	if ss == nil || data == nil {
		return
	}
	entity := s.entity(rootID)

	for _, sel := range expandSelections(ss, fragmentMap) {
		field, ok := sel.(*ast.Field)
		if !ok {
			continue
		}
		val, present := data[field.ResponseKey()]
		if !present {
			continue
		}
		storeKey := storeFieldKey(field, variables)

		if field.SelectionSet == nil || len(field.SelectionSet.Selections) == 0 {
			entity[storeKey] = val
			continue
		}

		if childMap, ok := val.(map[string]any); ok {
			childID, normalizable := entityIDOf(childMap)
			if normalizable {
				s.writeSelectionResult(childID, field.SelectionSet, childMap, variables, fragmentMap)
				entity[storeKey] = map[string]any{refKey: childID}
				continue
			}
		}
		entity[storeKey] = val
	}
}

// mergeFlat is the fallback write path used when the store has no
// selection set on record for a result (e.g. a mutation, or a query
// whose INIT event predates this store instance): it merges top-level
// response keys directly, without args-aware store keys or
// normalization.
func (s *Store) mergeFlat(rootID string, data map[string]any) {
	if data == nil {
		return
	}
	entity := s.entity(rootID)
	for k, v := range data {
		entity[k] = v
	}
}

func (s *Store) entity(id string) map[string]any {
	e, ok := s.data[id]
	if !ok {
		e = make(map[string]any)
		s.data[id] = e
	}
	return e
}

// GetState implements gqlcore.StoreAdapter.
func (s *Store) GetState(rootKey string) *types.ProjectedView {
	s.mu.Lock()
	defer s.mu.Unlock()

	dataCopy := make(map[string]any, len(s.data))
	for id, fields := range s.data {
		fieldsCopy := make(map[string]any, len(fields))
		for k, v := range fields {
			fieldsCopy[k] = v
		}
		dataCopy[id] = fieldsCopy
	}
	queriesCopy := make(map[string]types.QueryStoreValue, len(s.queries))
	for id, qv := range s.queries {
		queriesCopy[id] = qv
	}

	return &types.ProjectedView{Data: dataCopy, Queries: queriesCopy}
}

// Subscribe implements gqlcore.StoreAdapter.
func (s *Store) Subscribe(onChange func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = onChange
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()
	for _, l := range listeners {
		l()
	}
}

func expandSelections(ss *ast.SelectionSet, fragmentMap ast.FragmentMap) []ast.Selection {
	if ss == nil {
		return nil
	}
	out := make([]ast.Selection, 0, len(ss.Selections))
	for _, sel := range ss.Selections {
		switch s := sel.(type) {
		case *ast.Field:
			out = append(out, s)
		case *ast.InlineFragment:
			out = append(out, expandSelections(s.SelectionSet, fragmentMap)...)
		case *ast.FragmentSpread:
			if def, ok := fragmentMap[s.Name]; ok {
				out = append(out, expandSelections(def.SelectionSet, fragmentMap)...)
			}
		}
	}
	return out
}

func storeFieldKey(field *ast.Field, variables map[string]any) string {
	if len(field.Arguments) == 0 {
		return field.Name
	}
	resolved := make(map[string]any, len(field.Arguments))
	for k, v := range field.Arguments {
		resolved[k] = resolveArgument(v, variables)
	}
	return fmt.Sprintf("%s(%v)", field.Name, resolved)
}

func resolveArgument(v any, variables map[string]any) any {
	if name, ok := v.(string); ok && len(name) > 0 && name[0] == '$' {
		if val, bound := variables[name[1:]]; bound {
			return val
		}
	}
	return v
}

// entityIDOf reports whether m looks like a normalizable entity
// (carries both __typename and id) and, if so, the id to normalize it
// under.
func entityIDOf(m map[string]any) (string, bool) {
	typename, hasType := m["__typename"].(string)
	id, hasID := m["id"]
	if !hasType || !hasID {
		return "", false
	}
	return fmt.Sprintf("%s:%v", typename, id), true
}
