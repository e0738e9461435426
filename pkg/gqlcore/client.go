// Package gqlcore implements the client-side GraphQL query manager: the
// fetch/diff/broadcast engine that mediates between application code and
// a normalized result cache plus a network transport.
package gqlcore

import (
	"context"
	"fmt"
	"sync"

	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// QueryManager is the central coordinator: it owns the id counter, the
// observer registry, and the wiring between
// the Store, the Batcher, and the Scheduler.
type QueryManager struct {
	config *Config

	store       StoreAdapter
	network     NetworkInterface
	batcher     Batcher
	scheduler   Scheduler
	diffPlanner DiffPlanner

	ids idCounter

	registryMu    sync.RWMutex
	registry      map[string]types.Listener
	registryOrder []string

	viewMu       sync.Mutex
	previousView *types.ProjectedView

	unsubscribeStore func()

	subscriptionMu    sync.Mutex
	subscriptionClient *subscriptionClient

	liveMu      sync.Mutex
	liveQueries map[string]*liveQueryContext
}

// NewQueryManager constructs a QueryManager from config. If config is
// nil, DefaultConfig is used; it has no Store or NetworkInterface, so
// validation fails and an error wrapping ErrInvalidConfig is returned.
func NewQueryManager(config *Config) (*QueryManager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchInterval <= 0 {
		config.BatchInterval = DefaultConfig().BatchInterval
	}
	if config.Logf == nil {
		config.Logf = func(string, ...any) {}
	}
	if err := config.Validate(); err != nil {
		return nil, WrapError("NewQueryManager", fmt.Errorf("%w: %v", ErrInvalidConfig, err), "")
	}

	batcher := config.Batcher
	if batcher == nil {
		if shouldBatch(config) {
			batcher = newTickerBatcher(config.NetworkInterface, config.BatchInterval)
		} else {
			batcher = &unbatchedBatcher{network: config.NetworkInterface}
		}
	}

	scheduler := config.Scheduler
	if scheduler == nil {
		scheduler = newTickerScheduler()
	}

	m := &QueryManager{
		config:      config,
		store:       config.Store,
		network:     config.NetworkInterface,
		batcher:     batcher,
		scheduler:   scheduler,
		diffPlanner: newDiffPlanner(),
		registry:    make(map[string]types.Listener),
		liveQueries: make(map[string]*liveQueryContext),
	}

	m.previousView = m.store.GetState(m.config.RootKey)
	m.unsubscribeStore = m.store.Subscribe(func() {
		m.BroadcastNewStore(nil)
	})

	return m, nil
}

// shouldBatch resolves the batching decision: an explicit ShouldBatch
// wins, otherwise batching is enabled by default exactly when the
// NetworkInterface additionally implements BatchNetworkInterface.
func shouldBatch(config *Config) bool {
	if config.ShouldBatch != nil {
		return *config.ShouldBatch
	}
	_, ok := config.NetworkInterface.(BatchNetworkInterface)
	return ok
}

// currentView reads the store's projected view for this manager's root
// key. It returns a defensive copy so callers can't mutate the store's
// state out from under later reads or the next broadcast's equality
// check, regardless of how the configured StoreAdapter implements
// GetState.
func (m *QueryManager) currentView() *types.ProjectedView {
	return m.store.GetState(m.config.RootKey).Clone()
}

// Query runs a one-shot fetch: it subscribes, awaits the first result,
// then unsubscribes. returnPartialData is rejected synchronously on
// this path since a one-shot call has no listener to deliver a second,
// complete result to.
func (m *QueryManager) Query(ctx context.Context, options types.WatchOptions) (types.GraphQLResult, error) {
	if options.ReturnPartialData {
		return types.GraphQLResult{}, WrapError("Query", ErrInvalidOptions, "returnPartialData is not permitted on the one-shot query path")
	}

	obs, err := m.WatchQuery(options)
	if err != nil {
		return types.GraphQLResult{}, err
	}

	type firstResult struct {
		result types.GraphQLResult
		err    error
	}
	ch := make(chan firstResult, 1)
	handle, err := obs.Subscribe(types.Observer{
		Next: func(r types.GraphQLResult) {
			select {
			case ch <- firstResult{result: r}:
			default:
			}
		},
		Error: func(err error) {
			select {
			case ch <- firstResult{err: err}:
			default:
			}
		},
	})
	if err != nil {
		return types.GraphQLResult{}, err
	}
	defer handle.Unsubscribe()

	select {
	case first := <-ch:
		return first.result, first.err
	case <-ctx.Done():
		return types.GraphQLResult{}, ctx.Err()
	}
}

// BroadcastNewStore is the explicit re-broadcast trigger for hosts
// without a store subscription mechanism.
func (m *QueryManager) BroadcastNewStore(_ any) {
	m.broadcast()
}

// Close releases the store subscription and stops background workers.
func (m *QueryManager) Close() {
	if m.unsubscribeStore != nil {
		m.unsubscribeStore()
	}
	if tb, ok := m.batcher.(*tickerBatcher); ok {
		tb.Close()
	}
}
