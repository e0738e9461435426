package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Print serializes a document back to GraphQL query text. It stands in
// for the out-of-scope printer collaborator: deterministic and minimal,
// not a full spec-compliant printer (no block strings, no directives).
func Print(doc *Document) string {
	var b strings.Builder
	op := doc.Operation

	b.WriteString(string(op.Type))
	if op.Name != "" {
		b.WriteString(" ")
		b.WriteString(op.Name)
	}
	if len(op.VariableDefinitions) > 0 {
		b.WriteString("(")
		for i, v := range op.VariableDefinitions {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(printVariableDefinition(v))
		}
		b.WriteString(")")
	}
	b.WriteString(" ")
	b.WriteString(printSelectionSet(op.SelectionSet))

	for _, frag := range doc.Fragments {
		b.WriteString(" fragment ")
		b.WriteString(frag.Name)
		b.WriteString(" on ")
		b.WriteString(frag.TypeCondition)
		b.WriteString(" ")
		b.WriteString(printSelectionSet(frag.SelectionSet))
	}

	return b.String()
}

func printVariableDefinition(v *VariableDefinition) string {
	if v.DefaultValue != nil {
		return fmt.Sprintf("$%s: %s = %v", v.Name, v.Type, v.DefaultValue)
	}
	return fmt.Sprintf("$%s: %s", v.Name, v.Type)
}

func printSelectionSet(ss *SelectionSet) string {
	if ss == nil || len(ss.Selections) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{ ")
	for i, sel := range ss.Selections {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(printSelection(sel))
	}
	b.WriteString(" }")
	return b.String()
}

func printSelection(sel Selection) string {
	switch s := sel.(type) {
	case *Field:
		var b strings.Builder
		if s.Alias != "" && s.Alias != s.Name {
			b.WriteString(s.Alias)
			b.WriteString(": ")
		}
		b.WriteString(s.Name)
		if len(s.Arguments) > 0 {
			b.WriteString("(")
			b.WriteString(printArguments(s.Arguments))
			b.WriteString(")")
		}
		if s.SelectionSet != nil && len(s.SelectionSet.Selections) > 0 {
			b.WriteString(" ")
			b.WriteString(printSelectionSet(s.SelectionSet))
		}
		return b.String()
	case *FragmentSpread:
		return "..." + s.Name
	case *InlineFragment:
		return "... on " + s.TypeCondition + " " + printSelectionSet(s.SelectionSet)
	default:
		return ""
	}
}

func printArguments(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %v", k, args[k])
	}
	return strings.Join(parts, ", ")
}
