package ast

import "testing"

func TestPrintFieldWithArgumentsSortsKeys(t *testing.T) {
	doc := &Document{
		Operation: &OperationDefinition{
			Type: Query,
			SelectionSet: &SelectionSet{
				Selections: []Selection{
					&Field{
						Name:      "user",
						Arguments: map[string]any{"id": 1, "active": true},
						SelectionSet: &SelectionSet{
							Selections: []Selection{&Field{Name: "name"}},
						},
					},
				},
			},
		},
	}

	got := Print(doc)
	want := "query { user(active: true, id: 1) { name } }"
	if got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}

func TestPrintIsDeterministicAcrossCalls(t *testing.T) {
	doc := &Document{
		Operation: &OperationDefinition{
			Type: Query,
			SelectionSet: &SelectionSet{
				Selections: []Selection{
					&Field{Name: "b", Arguments: map[string]any{"z": 1, "a": 2}},
					&Field{Name: "a"},
				},
			},
		},
	}

	first := Print(doc)
	for i := 0; i < 5; i++ {
		if got := Print(doc); got != first {
			t.Fatalf("Print() not deterministic: %q vs %q", got, first)
		}
	}
}

func TestPrintAliasOmittedWhenEqualToName(t *testing.T) {
	f := &Field{Alias: "name", Name: "name"}
	if got := printSelection(f); got != "name" {
		t.Errorf("printSelection() = %q, want %q", got, "name")
	}
}

func TestPrintAliasIncludedWhenDifferent(t *testing.T) {
	f := &Field{Alias: "n", Name: "name"}
	if got := printSelection(f); got != "n: name" {
		t.Errorf("printSelection() = %q, want %q", got, "n: name")
	}
}

func TestPrintFragmentSpreadAndInlineFragment(t *testing.T) {
	ss := &SelectionSet{
		Selections: []Selection{
			&FragmentSpread{Name: "UserFields"},
			&InlineFragment{
				TypeCondition: "Admin",
				SelectionSet:  &SelectionSet{Selections: []Selection{&Field{Name: "role"}}},
			},
		},
	}
	got := printSelectionSet(ss)
	want := "{ ...UserFields ... on Admin { role } }"
	if got != want {
		t.Errorf("printSelectionSet() = %q, want %q", got, want)
	}
}

func TestCollectFragmentsAndClone(t *testing.T) {
	frag := &FragmentDefinition{Name: "F", TypeCondition: "User", SelectionSet: &SelectionSet{}}
	doc := &Document{
		Operation: &OperationDefinition{Type: Query, SelectionSet: &SelectionSet{}},
		Fragments: []*FragmentDefinition{frag},
	}
	fm := CollectFragments(doc)
	if fm["F"] != frag {
		t.Fatalf("CollectFragments did not index fragment by name")
	}

	original := &SelectionSet{Selections: []Selection{&Field{Name: "a", Arguments: map[string]any{"x": 1}}}}
	clone := CloneSelectionSet(original)
	clone.Selections[0].(*Field).Arguments["x"] = 2
	if original.Selections[0].(*Field).Arguments["x"] != 1 {
		t.Fatalf("CloneSelectionSet aliased the original argument map")
	}
}

func TestMergeSelectionSetDedupesByResponseKey(t *testing.T) {
	base := &SelectionSet{Selections: []Selection{&Field{Name: "id"}}}
	addition := &SelectionSet{Selections: []Selection{&Field{Name: "id"}, &Field{Name: "name"}}}

	merged := MergeSelectionSet(base, addition)
	if len(merged.Selections) != 2 {
		t.Fatalf("MergeSelectionSet() got %d selections, want 2", len(merged.Selections))
	}
}
