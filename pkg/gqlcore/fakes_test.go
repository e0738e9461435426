package gqlcore

import (
	"context"
	"sync"

	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// fakeStore is a minimal StoreAdapter double for tests that only need
// Validate/NewQueryManager plumbing to succeed, not real dispatch
// semantics — see memstore for the behavioral reference implementation
// exercised by the package's integration tests.
type fakeStore struct {
	mu        sync.Mutex
	view      *types.ProjectedView
	listeners []func()
	events    []Event
}

func (f *fakeStore) Dispatch(event Event) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
}

func (f *fakeStore) GetState(_ string) *types.ProjectedView {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view == nil {
		return &types.ProjectedView{Data: map[string]any{}, Queries: map[string]types.QueryStoreValue{}}
	}
	return f.view
}

func (f *fakeStore) Subscribe(onChange func()) func() {
	f.mu.Lock()
	f.listeners = append(f.listeners, onChange)
	f.mu.Unlock()
	return func() {}
}

// fakeNetwork is a NetworkInterface double that returns a fixed result
// or error, recording every call it receives.
type fakeNetwork struct {
	mu      sync.Mutex
	calls   []Request
	result  types.GraphQLResult
	err     error
	onQuery func(req Request) (types.GraphQLResult, error)
}

func (f *fakeNetwork) Query(_ context.Context, req Request) (types.GraphQLResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.onQuery != nil {
		return f.onQuery(req)
	}
	return f.result, f.err
}

func (f *fakeNetwork) Mutate(ctx context.Context, req Request) (types.GraphQLResult, error) {
	return f.Query(ctx, req)
}
