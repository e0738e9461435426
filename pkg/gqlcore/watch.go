package gqlcore

import (
	"sync"
	"time"

	"github.com/nbaertsch/gqlcore/internal/ast"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// ObservableQuery is the handle watchQuery returns: a single queryId
// plus the options that drove its registration. Subscribe performs the
// actual registration; a query may only ever have one listener.
type ObservableQuery struct {
	m       *QueryManager
	queryID string

	mu         sync.Mutex
	options    types.WatchOptions
	subscribed bool
	polling    bool
	live       bool
}

// SubscriptionHandle is returned by Subscribe: unsubscribe plus the
// three lifecycle mutations a live watch exposes.
type SubscriptionHandle struct {
	Unsubscribe  func()
	Refetch      func(variables map[string]any) error
	StartPolling func(interval time.Duration) error
	StopPolling  func()
}

// WatchQuery registers a new query identity, drawn from the shared
// monotonic id counter, without yet installing a listener; Subscribe
// does that.
func (m *QueryManager) WatchQuery(options types.WatchOptions) (*ObservableQuery, error) {
	if options.Query == nil || options.Query.Operation == nil {
		return nil, WrapError("WatchQuery", ErrInvalidOptions, "options.Query is required")
	}
	return &ObservableQuery{
		m:       m,
		queryID: m.ids.newQueryID(),
		options: options,
	}, nil
}

// QueryID returns the opaque identity assigned at registration.
func (q *ObservableQuery) QueryID() string { return q.queryID }

// Subscribe installs the listener, calls fetchQuery exactly once, and —
// depending on options — hands this query's lifecycle to the Scheduler
// (PollInterval > 0) or the Live Query Watch (UseSubscription). A query
// is owned by at most one of the two at a time.
func (q *ObservableQuery) Subscribe(observer types.Observer) (*SubscriptionHandle, error) {
	q.mu.Lock()
	if q.subscribed {
		q.mu.Unlock()
		return nil, WrapError("Subscribe", ErrInvalidOptions, "query already has a listener")
	}
	q.subscribed = true
	opts := q.options
	q.mu.Unlock()

	fragmentMap := ast.CollectFragments(opts.Query)
	listener := buildListener(q.m, observer, fragmentMap)

	q.m.startQuery(q.queryID, opts, listener)

	switch {
	case opts.PollInterval > 0:
		q.mu.Lock()
		q.polling = true
		q.mu.Unlock()
		q.m.scheduler.RegisterPollingQuery(q.queryID, opts, func(o types.WatchOptions) {
			q.m.fetchQuery(q.queryID, o.WithForceFetch(true))
		})
	case opts.UseSubscription:
		q.mu.Lock()
		q.live = true
		q.mu.Unlock()
		q.m.startLiveQuery(q.queryID, opts, fragmentMap)
	}

	handle := &SubscriptionHandle{
		Unsubscribe: func() { q.unsubscribe() },
		Refetch:     func(vars map[string]any) error { return q.refetch(vars) },
		StartPolling: func(interval time.Duration) error {
			return q.startPolling(interval)
		},
		StopPolling: func() { q.stopPolling() },
	}
	return handle, nil
}

// refetch re-enters fetchQuery with the same queryId and
// forceFetch=true.
func (q *ObservableQuery) refetch(variables map[string]any) error {
	q.mu.Lock()
	if !q.subscribed {
		q.mu.Unlock()
		return WrapError("Refetch", ErrQueryStopped, "query is not subscribed")
	}
	q.mu.Unlock()
	if !q.m.hasListener(q.queryID) {
		return WrapError("Refetch", ErrUnknownQuery, "queryId has no registered listener")
	}
	q.mu.Lock()
	if variables != nil {
		q.options = q.options.WithVariables(variables)
	}
	opts := q.options.WithForceFetch(true)
	q.options = opts
	q.mu.Unlock()

	q.m.fetchQuery(q.queryID, opts)
	return nil
}

// startPolling hands this query to the Scheduler. It is only legal
// while the query is not already owned by the Scheduler or the Live
// Query Watch.
func (q *ObservableQuery) startPolling(interval time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.subscribed {
		return WrapError("StartPolling", ErrQueryStopped, "query is not subscribed")
	}
	if !q.m.hasListener(q.queryID) {
		return WrapError("StartPolling", ErrUnknownQuery, "queryId has no registered listener")
	}
	if q.live {
		return WrapError("StartPolling", ErrInvalidOptions, "query is owned by a live query watch")
	}
	if q.polling {
		return WrapError("StartPolling", ErrInvalidOptions, "query is already owned by the scheduler")
	}
	q.options.PollInterval = interval
	q.polling = true
	q.m.scheduler.RegisterPollingQuery(q.queryID, q.options, func(o types.WatchOptions) {
		q.m.fetchQuery(q.queryID, o.WithForceFetch(true))
	})
	return nil
}

// stopPolling releases the Scheduler's poll slot for this query.
func (q *ObservableQuery) stopPolling() {
	q.mu.Lock()
	if q.polling {
		q.polling = false
		q.options.PollInterval = 0
	}
	q.mu.Unlock()
	q.m.scheduler.StopPollingQuery(q.queryID)
}

// unsubscribe removes the listener, releases any poll/live-query slot,
// and dispatches QUERY_STOP. In-flight batched requests are not
// cancelled; a result that lands after unsubscribe is simply dropped by
// broadcast finding no registered listener.
func (q *ObservableQuery) unsubscribe() {
	q.mu.Lock()
	if !q.subscribed {
		q.mu.Unlock()
		return
	}
	q.subscribed = false
	polling := q.polling
	live := q.live
	q.polling = false
	q.live = false
	q.mu.Unlock()

	if polling {
		q.m.scheduler.StopPollingQuery(q.queryID)
	}
	if live {
		q.m.stopLiveQuery(q.queryID)
	}
	q.m.stopQuery(q.queryID)
}

// startQuery is the registry mutation backing Subscribe: install the
// listener then run the one mandatory fetchQuery call.
func (m *QueryManager) startQuery(queryID string, options types.WatchOptions, listener types.Listener) {
	m.addQueryListener(queryID, listener)
	m.fetchQuery(queryID, options)
}

// stopQuery is the registry mutation backing unsubscribe: remove the
// listener and dispatch QUERY_STOP.
func (m *QueryManager) stopQuery(queryID string) {
	m.removeQueryListener(queryID)
	m.store.Dispatch(queryStopEvent(queryID))
}

func (m *QueryManager) addQueryListener(queryID string, listener types.Listener) {
	m.registryMu.Lock()
	defer m.registryMu.Unlock()
	m.registry[queryID] = listener
	m.registryOrder = append(m.registryOrder, queryID)
}

func (m *QueryManager) removeQueryListener(queryID string) {
	m.registryMu.Lock()
	defer m.registryMu.Unlock()
	delete(m.registry, queryID)
	for i, id := range m.registryOrder {
		if id == queryID {
			m.registryOrder = append(m.registryOrder[:i], m.registryOrder[i+1:]...)
			break
		}
	}
}

// hasListener reports whether queryID currently has a registered
// listener, independent of any handle-local bookkeeping.
func (m *QueryManager) hasListener(queryID string) bool {
	m.registryMu.RLock()
	defer m.registryMu.RUnlock()
	_, ok := m.registry[queryID]
	return ok
}

// buildListener implements the Listener contract: translate a store's
// per-query snapshot into the observer's Next/Error capabilities.
func buildListener(m *QueryManager, observer types.Observer, fragmentMap ast.FragmentMap) types.Listener {
	return func(value types.QueryStoreValue) {
		switch {
		case value.Loading && !value.ReturnPartialData:
			return
		case len(value.GraphQLErrors) > 0:
			if observer.Next != nil {
				observer.Next(types.GraphQLResult{Errors: value.GraphQLErrors})
			}
		case value.NetworkError != nil:
			if observer.Error != nil {
				observer.Error(value.NetworkError)
			} else {
				m.config.logf("listener: dropped network error with no Error observer: %v", value.NetworkError)
			}
		default:
			fm := value.FragmentMap
			if fm == nil {
				fm = fragmentMap
			}
			data, err := readSelectionSetFromStore(value.Query, m.currentView(), value.Variables, fm)
			if err != nil {
				m.config.logf("listener: store read failed: %v", err)
				return
			}
			if observer.Next != nil {
				observer.Next(types.GraphQLResult{Data: data, Complete: true})
			}
		}
	}
}

// broadcast re-invokes every live listener with its slice of the
// current store. It skips the fan-out entirely when the store hasn't
// changed since the last broadcast (structural equality on the
// projected view), unless the previous view was empty.
func (m *QueryManager) broadcast() {
	current := m.currentView()

	m.viewMu.Lock()
	prev := m.previousView
	skip := deepEqualViews(prev, current) && !prev.IsEmpty()
	m.previousView = current
	m.viewMu.Unlock()

	if skip {
		return
	}

	m.registryMu.RLock()
	ids := make([]string, len(m.registryOrder))
	copy(ids, m.registryOrder)
	m.registryMu.RUnlock()

	for _, id := range ids {
		m.registryMu.RLock()
		listener, ok := m.registry[id]
		m.registryMu.RUnlock()
		if !ok {
			// Concurrent unsubscribe is legal; tolerate the gap.
			continue
		}
		if current == nil {
			continue
		}
		qv, ok := current.Queries[id]
		if !ok {
			continue
		}
		listener(qv)
	}
}
