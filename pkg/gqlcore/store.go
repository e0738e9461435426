package gqlcore

import (
	"reflect"

	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// StoreAdapter wraps an external event-sourced store. Dispatch is
// synchronous: once it returns, GetState reflects the event. Subscribe
// is optional; when present, the manager arms a change listener that
// drives broadcast.
type StoreAdapter interface {
	Dispatch(event Event)
	GetState(rootKey string) *types.ProjectedView
	Subscribe(onChange func()) (unsubscribe func())
}

// deepEqualViews implements the store-change equality rule: structural
// deep equality on the projected view.
func deepEqualViews(a, b *types.ProjectedView) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(a.Data, b.Data) && reflect.DeepEqual(a.Queries, b.Queries)
}
