package gqlcore

import "github.com/nbaertsch/gqlcore/internal/ast"

// applyTransformer runs the configured QueryTransformer exactly once on
// doc's operation definition and substitutes the rewritten operation
// back into a (shallow) copy of the document. A nil transformer passes
// the document through unchanged.
func applyTransformer(transformer QueryTransformer, doc *ast.Document) *ast.Document {
	if transformer == nil {
		return doc
	}
	rewritten := transformer(doc.Operation)
	return &ast.Document{
		Operation: rewritten,
		Fragments: doc.Fragments,
	}
}
