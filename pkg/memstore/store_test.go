package memstore

import (
	"testing"

	"github.com/nbaertsch/gqlcore/internal/ast"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

func queryDoc() *ast.Document {
	return &ast.Document{
		Operation: &ast.OperationDefinition{
			Type: ast.Query,
			SelectionSet: &ast.SelectionSet{
				Selections: []ast.Selection{
					&ast.Field{Name: "id"},
					&ast.Field{
						Name: "viewer",
						SelectionSet: &ast.SelectionSet{
							Selections: []ast.Selection{&ast.Field{Name: "name"}},
						},
					},
				},
			},
		},
	}
}

func TestStoreQueryInitMarksQueryLoading(t *testing.T) {
	s := New()
	doc := queryDoc()
	s.Dispatch(gqlcore.Event{Type: gqlcore.EventQueryInit, Fields: map[string]any{
		"queryId":           "q1",
		"query":             doc,
		"variables":         map[string]any{},
		"forceFetch":        false,
		"returnPartialData": false,
		"fragmentMap":       ast.FragmentMap{},
	}})

	view := s.GetState("ROOT_QUERY")
	qv, ok := view.Queries["q1"]
	if !ok {
		t.Fatal("GetState() did not record query q1")
	}
	if !qv.Loading {
		t.Error("QueryStoreValue.Loading = false, want true right after INIT")
	}
}

func TestStoreQueryResultNormalizesNestedEntity(t *testing.T) {
	s := New()
	doc := queryDoc()
	s.Dispatch(gqlcore.Event{Type: gqlcore.EventQueryInit, Fields: map[string]any{
		"queryId":           "q1",
		"query":             doc,
		"variables":         map[string]any{},
		"forceFetch":        false,
		"returnPartialData": false,
		"fragmentMap":       ast.FragmentMap{},
	}})

	data := map[string]any{
		"id": "1",
		"viewer": map[string]any{
			"__typename": "User",
			"id":         "1",
			"name":       "Ada",
		},
	}
	s.Dispatch(gqlcore.Event{Type: gqlcore.EventQueryResult, Fields: map[string]any{
		"queryId":   "q1",
		"requestId": int64(1),
		"result":    types.GraphQLResult{Data: data, Complete: true},
	}})

	view := s.GetState("ROOT_QUERY")
	root := view.Data["ROOT_QUERY"].(map[string]any)
	ref, ok := root["viewer"].(map[string]any)
	if !ok || ref[refKey] != "User:1" {
		t.Fatalf("root[viewer] = %v, want a {__ref: User:1} normalized reference", root["viewer"])
	}
	user := view.Data["User:1"].(map[string]any)
	if user["name"] != "Ada" {
		t.Errorf("normalized User:1 entity = %v, want name=Ada", user)
	}

	qv := view.Queries["q1"]
	if qv.Loading {
		t.Error("QueryStoreValue.Loading = true after QUERY_RESULT, want false")
	}
}

func TestStoreQueryErrorRecordsNetworkError(t *testing.T) {
	s := New()
	s.Dispatch(gqlcore.Event{Type: gqlcore.EventQueryInit, Fields: map[string]any{
		"queryId": "q1", "query": queryDoc(),
	}})

	boom := errDispatchFailure{}
	s.Dispatch(gqlcore.Event{Type: gqlcore.EventQueryError, Fields: map[string]any{
		"queryId": "q1", "requestId": int64(1), "error": boom,
	}})

	qv := s.GetState("ROOT_QUERY").Queries["q1"]
	if qv.Loading {
		t.Error("Loading = true after QUERY_ERROR, want false")
	}
	if qv.NetworkError == nil {
		t.Error("NetworkError = nil, want the dispatched error")
	}
}

func TestStoreQueryStopRemovesQuery(t *testing.T) {
	s := New()
	s.Dispatch(gqlcore.Event{Type: gqlcore.EventQueryInit, Fields: map[string]any{
		"queryId": "q1", "query": queryDoc(),
	}})
	s.Dispatch(gqlcore.Event{Type: gqlcore.EventQueryStop, Fields: map[string]any{"queryId": "q1"}})

	if _, ok := s.GetState("ROOT_QUERY").Queries["q1"]; ok {
		t.Error("query q1 still present after QUERY_STOP")
	}
}

func TestStoreSubscribeNotifiesOnDispatch(t *testing.T) {
	s := New()
	notified := make(chan struct{}, 1)
	unsubscribe := s.Subscribe(func() { notified <- struct{}{} })
	defer unsubscribe()

	s.Dispatch(gqlcore.Event{Type: gqlcore.EventQueryInit, Fields: map[string]any{
		"queryId": "q1", "query": queryDoc(),
	}})

	select {
	case <-notified:
	default:
		t.Fatal("Subscribe() callback was not invoked after Dispatch")
	}
}

func TestStoreUnsubscribeStopsNotifications(t *testing.T) {
	s := New()
	notified := make(chan struct{}, 4)
	unsubscribe := s.Subscribe(func() { notified <- struct{}{} })
	unsubscribe()

	s.Dispatch(gqlcore.Event{Type: gqlcore.EventQueryInit, Fields: map[string]any{
		"queryId": "q1", "query": queryDoc(),
	}})

	select {
	case <-notified:
		t.Fatal("Subscribe() callback fired after unsubscribe")
	default:
	}
}

type errDispatchFailure struct{}

func (errDispatchFailure) Error() string { return "dispatch failure" }
