// Package ast provides the minimal GraphQL document representation the
// core operates on. It is not a parser: callers hand in documents already
// built or parsed upstream; this package only models the fragment of the
// grammar that Transform, Diff, and Print need to touch.
package ast

// OperationType distinguishes the three GraphQL operation kinds.
type OperationType string

const (
	Query        OperationType = "query"
	Mutation     OperationType = "mutation"
	Subscription OperationType = "subscription"
)

// Document is a single parsed GraphQL document: one operation plus the
// fragment definitions it (transitively) references.
type Document struct {
	Operation *OperationDefinition
	Fragments []*FragmentDefinition
}

// OperationDefinition is the query/mutation/subscription being executed.
type OperationDefinition struct {
	Type                OperationType
	Name                string
	VariableDefinitions []*VariableDefinition
	SelectionSet        *SelectionSet
}

// VariableDefinition declares one `$name: Type = default` slot.
type VariableDefinition struct {
	Name         string
	Type         string
	DefaultValue any
}

// SelectionSet is an ordered list of selections inside `{ ... }`.
type SelectionSet struct {
	Selections []Selection
}

// Selection is implemented by Field, FragmentSpread, and InlineFragment.
type Selection interface {
	selection()
}

// Field is a leaf or nested field selection, e.g. `user(id: $id) { name }`.
type Field struct {
	Alias        string
	Name         string
	Arguments    map[string]any
	SelectionSet *SelectionSet
}

// FragmentSpread is a `...FragmentName` reference.
type FragmentSpread struct {
	Name string
}

// InlineFragment is a `... on TypeName { ... }` selection.
type InlineFragment struct {
	TypeCondition string
	SelectionSet  *SelectionSet
}

func (*Field) selection()          {}
func (*FragmentSpread) selection() {}
func (*InlineFragment) selection() {}

// FragmentDefinition is a named, reusable selection set bound to a type
// condition: `fragment Name on TypeName { ... }`.
type FragmentDefinition struct {
	Name          string
	TypeCondition string
	SelectionSet  *SelectionSet
}

// ResponseKey returns the key a field's result is stored under: its alias
// if present, otherwise its name.
func (f *Field) ResponseKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// FragmentMap is a name -> definition lookup, threaded through every
// read, write, and diff that touches a document's fragment spreads.
type FragmentMap map[string]*FragmentDefinition

// CollectFragments builds a FragmentMap from a document's fragment list.
// It is derived once per document and passed by value (the map itself)
// to every subsequent operation on that document.
func CollectFragments(doc *Document) FragmentMap {
	fm := make(FragmentMap, len(doc.Fragments))
	for _, f := range doc.Fragments {
		fm[f.Name] = f
	}
	return fm
}

// CloneSelectionSet deep-copies a selection set so that residual/merged
// documents never alias the caller's original AST.
func CloneSelectionSet(ss *SelectionSet) *SelectionSet {
	if ss == nil {
		return nil
	}
	out := &SelectionSet{Selections: make([]Selection, len(ss.Selections))}
	for i, sel := range ss.Selections {
		out.Selections[i] = cloneSelection(sel)
	}
	return out
}

func cloneSelection(sel Selection) Selection {
	switch s := sel.(type) {
	case *Field:
		args := make(map[string]any, len(s.Arguments))
		for k, v := range s.Arguments {
			args[k] = v
		}
		return &Field{
			Alias:        s.Alias,
			Name:         s.Name,
			Arguments:    args,
			SelectionSet: CloneSelectionSet(s.SelectionSet),
		}
	case *FragmentSpread:
		return &FragmentSpread{Name: s.Name}
	case *InlineFragment:
		return &InlineFragment{
			TypeCondition: s.TypeCondition,
			SelectionSet:  CloneSelectionSet(s.SelectionSet),
		}
	default:
		return sel
	}
}

// MergeSelectionSet appends selections from addition that are not already
// present (by response key / fragment name) in base, returning a new
// selection set. Used by Mutate to fold a transformer's output back onto
// the original mutation's selections. Inline fragments are always
// appended.
func MergeSelectionSet(base, addition *SelectionSet) *SelectionSet {
	if base == nil {
		return CloneSelectionSet(addition)
	}
	if addition == nil {
		return CloneSelectionSet(base)
	}
	out := CloneSelectionSet(base)
	seen := make(map[string]bool, len(out.Selections))
	for _, sel := range out.Selections {
		switch s := sel.(type) {
		case *Field:
			seen[s.ResponseKey()] = true
		case *FragmentSpread:
			seen["..."+s.Name] = true
		}
	}
	for _, sel := range addition.Selections {
		var key string
		switch s := sel.(type) {
		case *Field:
			key = s.ResponseKey()
		case *FragmentSpread:
			key = "..." + s.Name
		}
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out.Selections = append(out.Selections, cloneSelection(sel))
	}
	return out
}
