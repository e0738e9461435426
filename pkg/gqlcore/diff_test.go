package gqlcore

import (
	"testing"

	"github.com/nbaertsch/gqlcore/internal/ast"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

func userSelection() *ast.SelectionSet {
	return &ast.SelectionSet{
		Selections: []ast.Selection{
			&ast.Field{Name: "id"},
			&ast.Field{
				Name: "viewer",
				SelectionSet: &ast.SelectionSet{
					Selections: []ast.Selection{
						&ast.Field{Name: "name"},
						&ast.Field{Name: "email"},
					},
				},
			},
		},
	}
}

func TestDiffSelectionSetCacheHit(t *testing.T) {
	store := &types.ProjectedView{Data: map[string]any{
		"ROOT_QUERY": map[string]any{
			"id":     "1",
			"viewer": map[string]any{refKey: "User:1"},
		},
		"User:1": map[string]any{"name": "Ada", "email": "ada@example.com"},
	}}

	result, missing := diffSelectionSet("ROOT_QUERY", userSelection(), store, nil, nil)
	if missing != nil {
		t.Fatalf("diffSelectionSet() missing = %v, want nil on a full cache hit", missing)
	}
	viewer := result["viewer"].(map[string]any)
	if viewer["name"] != "Ada" || viewer["email"] != "ada@example.com" {
		t.Errorf("diffSelectionSet() result = %v, want resolved viewer fields", result)
	}
}

func TestDiffSelectionSetCacheMissOnEmptyStore(t *testing.T) {
	store := &types.ProjectedView{Data: map[string]any{}}

	_, missing := diffSelectionSet("ROOT_QUERY", userSelection(), store, nil, nil)
	if missing == nil || len(missing.Selections) != 2 {
		t.Fatalf("diffSelectionSet() missing = %v, want both top-level fields", missing)
	}
}

func TestDiffSelectionSetPartialCacheRecursesIntoReference(t *testing.T) {
	store := &types.ProjectedView{Data: map[string]any{
		"ROOT_QUERY": map[string]any{
			"id":     "1",
			"viewer": map[string]any{refKey: "User:1"},
		},
		"User:1": map[string]any{"name": "Ada"}, // email missing
	}}

	result, missing := diffSelectionSet("ROOT_QUERY", userSelection(), store, nil, nil)
	if result["id"] != "1" {
		t.Errorf("diffSelectionSet() did not return the cached top-level field")
	}

	if missing == nil || len(missing.Selections) != 1 {
		t.Fatalf("diffSelectionSet() missing = %v, want exactly the viewer field", missing)
	}
	viewerMissing := missing.Selections[0].(*ast.Field)
	if viewerMissing.Name != "viewer" {
		t.Fatalf("missing field = %q, want viewer", viewerMissing.Name)
	}
	if len(viewerMissing.SelectionSet.Selections) != 1 {
		t.Fatalf("viewer's missing selection set = %v, want just email", viewerMissing.SelectionSet.Selections)
	}
	if viewerMissing.SelectionSet.Selections[0].(*ast.Field).Name != "email" {
		t.Errorf("missing grandchild field = %v, want email", viewerMissing.SelectionSet.Selections[0])
	}
}

func TestDiffSelectionSetArgumentsProduceDistinctStoreKeys(t *testing.T) {
	ss := &ast.SelectionSet{
		Selections: []ast.Selection{
			&ast.Field{Name: "user", Arguments: map[string]any{"id": "$uid"}},
		},
	}
	store := &types.ProjectedView{Data: map[string]any{
		"ROOT_QUERY": map[string]any{"user(map[id:1])": "first", "user(map[id:2])": "second"},
	}}

	result, missing := diffSelectionSet("ROOT_QUERY", ss, store, map[string]any{"uid": 1}, nil)
	if missing != nil {
		t.Fatalf("diffSelectionSet() missing = %v, want nil", missing)
	}
	if result["user"] != "first" {
		t.Errorf("diffSelectionSet() result[user] = %v, want the id:1 slot", result["user"])
	}
}

func TestDefaultDiffPlannerUsesRootIDFromSelection(t *testing.T) {
	planner := newDiffPlanner()
	store := &types.ProjectedView{Data: map[string]any{"ROOT_QUERY": map[string]any{"id": "1"}}}

	out := planner.Diff(DiffInput{
		Selection: types.SelectionSetWithRoot{
			RootID:       types.RootQuery,
			SelectionSet: &ast.SelectionSet{Selections: []ast.Selection{&ast.Field{Name: "id"}}},
		},
		Store: store,
	})
	if out.Missing != nil {
		t.Errorf("Diff() missing = %v, want nil", out.Missing)
	}
	if out.Result["id"] != "1" {
		t.Errorf("Diff() result = %v, want id resolved", out.Result)
	}
}
