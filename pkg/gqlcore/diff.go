package gqlcore

import (
	"fmt"

	"github.com/nbaertsch/gqlcore/internal/ast"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// refKey is the conventional field value the Store uses to link a
// normalized entity reference — `{ __ref: "User:1" }` in place of a
// nested object, the convention most normalized GraphQL caches use.
// DiffPlanner only walks the shape the Store already exposes through
// ProjectedView.Data; it does not own normalization itself.
const refKey = "__ref"

// DiffInput is the Diff Planner's input contract.
type DiffInput struct {
	Selection   types.SelectionSetWithRoot
	Store       *types.ProjectedView
	Variables   map[string]any
	FragmentMap ast.FragmentMap

	// ThrowOnMissingField is always false for this core: a missing
	// field is a cache miss to diff around, never an error.
	ThrowOnMissingField bool
}

// DiffResult is the Diff Planner's output contract. Missing is the
// possibly-nil ordered sequence of selection subtrees whose data is
// absent; Result is the best-effort projection assembled from Store.
type DiffResult struct {
	Missing *ast.SelectionSet
	Result  map[string]any
}

// DiffPlanner compares a selection against the store and produces a
// minimized residual plus whatever data the store already has.
type DiffPlanner interface {
	Diff(input DiffInput) DiffResult
}

// defaultDiffPlanner is the built-in DiffPlanner, reading entities out
// of ProjectedView.Data by the selection's root id plus a store-field
// key per selected field. The selection's TypeName is not consulted.
type defaultDiffPlanner struct{}

func newDiffPlanner() DiffPlanner { return defaultDiffPlanner{} }

func (defaultDiffPlanner) Diff(input DiffInput) DiffResult {
	entityID := string(input.Selection.RootID)
	result, missing := diffSelectionSet(entityID, input.Selection.SelectionSet, input.Store, input.Variables, input.FragmentMap)
	return DiffResult{Missing: missing, Result: result}
}

// diffSelectionSet walks one selection set against the entity stored at
// entityID, returning the best-effort projection and the subset of
// selections that could not be satisfied. A field whose value is
// itself a normalized reference recurses into the referenced entity;
// if only some of its children are missing, the field is re-included
// in the residual with a selection set trimmed to just those children.
func diffSelectionSet(entityID string, ss *ast.SelectionSet, store *types.ProjectedView, variables map[string]any, fragmentMap ast.FragmentMap) (map[string]any, *ast.SelectionSet) {
	result := make(map[string]any)
	var missing []ast.Selection

	var entity map[string]any
	if store != nil {
		if e, ok := store.Data[entityID].(map[string]any); ok {
			entity = e
		}
	}

	for _, sel := range expandSelections(ss, fragmentMap) {
		field, ok := sel.(*ast.Field)
		if !ok {
			continue
		}
		storeKey := storeFieldKey(field, variables)
		key := field.ResponseKey()

		if entity == nil {
			missing = append(missing, field)
			continue
		}

		raw, present := entity[storeKey]
		if !present {
			missing = append(missing, field)
			continue
		}

		if field.SelectionSet == nil || len(field.SelectionSet.Selections) == 0 {
			result[key] = raw
			continue
		}

		childID, isRef := resolveRef(raw)
		if !isRef {
			// Not a reference we can recurse into; treat as satisfied
			// verbatim (e.g. the store already pre-resolved the shape).
			result[key] = raw
			continue
		}

		childResult, childMissing := diffSelectionSet(childID, field.SelectionSet, store, variables, fragmentMap)
		if childMissing == nil || len(childMissing.Selections) == 0 {
			result[key] = childResult
			continue
		}

		result[key] = childResult
		missing = append(missing, &ast.Field{
			Alias:        field.Alias,
			Name:         field.Name,
			Arguments:    field.Arguments,
			SelectionSet: childMissing,
		})
	}

	if len(missing) == 0 {
		return result, nil
	}
	return result, &ast.SelectionSet{Selections: missing}
}

// expandSelections flattens fragment spreads and inline fragments into
// their constituent fields, using fragmentMap for named fragments.
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

// storeFieldKey computes the key a field's value is stored under,
// folding in resolved arguments so that `user(id: 1)` and `user(id: 2)`
// occupy distinct slots.
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

// resolveArgument substitutes a $variable reference with its bound
// value; any other literal passes through unchanged.
func resolveArgument(v any, variables map[string]any) any {
	if name, ok := v.(string); ok && len(name) > 0 && name[0] == '$' {
		if val, bound := variables[name[1:]]; bound {
			return val
		}
	}
	return v
}

// resolveRef reports whether raw is a normalized entity reference and,
// if so, the entity id it points to.
func resolveRef(raw any) (string, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return "", false
	}
	id, ok := m[refKey].(string)
	return id, ok
}
