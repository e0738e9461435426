package gqlcore

import (
	"context"

	graphql "github.com/hasura/go-graphql-client"

	"github.com/nbaertsch/gqlcore/internal/ast"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// subscriptionClient is an alias kept local to this file so the rest of
// the package never needs to import go-graphql-client directly.
type subscriptionClient = graphql.SubscriptionClient

// liveQueryContext tracks one Live Query Watch's WebSocket subscription
// lifecycle.
type liveQueryContext struct {
	cancel func()
	subID  string
}

// getSubscriptionClient lazily establishes the shared WebSocket
// connection: graphql-transport-ws protocol, connection params
// carrying headers, reconnect-tolerant error handling.
func (m *QueryManager) getSubscriptionClient() *subscriptionClient {
	m.subscriptionMu.Lock()
	defer m.subscriptionMu.Unlock()

	if m.subscriptionClient != nil {
		return m.subscriptionClient
	}

	var headers map[string]string
	if m.config.Headers != nil {
		headers = m.config.Headers()
	}

	client := graphql.NewSubscriptionClient(m.config.SubscriptionURL).
		WithConnectionParams(map[string]any{"headers": headers}).
		WithProtocol(graphql.GraphQLWS).
		OnError(func(sc *graphql.SubscriptionClient, err error) error {
			m.config.logf("live query watch: connection error: %v", err)
			return nil
		})

	m.subscriptionClient = client

	go func() {
		if err := m.subscriptionClient.Run(); err != nil {
			m.config.logf("live query watch: connection closed: %v", err)
		}
	}()

	return m.subscriptionClient
}

// startLiveQuery issues the full document (built the same way
// fetchQuery would for a force-fetch) as a GraphQL subscription and
// treats every pushed message as a QUERY_RESULT for queryID, feeding
// it through the same dispatch/broadcast pipeline a batcher resolve
// would.
func (m *QueryManager) startLiveQuery(queryID string, options types.WatchOptions, fragmentMap ast.FragmentMap) {
	transformedDoc := applyTransformer(m.config.QueryTransformer, options.Query)
	queryString := ast.Print(transformedDoc)

	ctx, cancel := context.WithCancel(context.Background())
	client := m.getSubscriptionClient()

	var raw map[string]any
	subID, err := client.Subscribe(queryString, options.Variables, func(dataValue []byte, errValue error) error {
		requestID := m.ids.newRequestID()
		if errValue != nil {
			m.store.Dispatch(queryErrorEvent(errValue, queryID, requestID))
			return nil
		}
		if err := parseJSON(dataValue, &raw); err != nil {
			m.store.Dispatch(queryErrorEvent(err, queryID, requestID))
			return nil
		}
		m.store.Dispatch(queryResultEvent(types.GraphQLResult{Data: raw, Complete: true}, queryID, requestID))

		querySS := types.SelectionSetWithRoot{
			RootID:       types.RootQuery,
			TypeName:     "Query",
			SelectionSet: options.Query.Operation.SelectionSet,
		}
		if merged, readErr := readSelectionSetFromStore(querySS, m.currentView(), options.Variables, fragmentMap); readErr == nil {
			raw = merged
		}
		return nil
	})

	if err != nil {
		m.config.logf("live query watch: subscribe failed for %s: %v", queryID, err)
		cancel()
		return
	}

	m.liveMu.Lock()
	m.liveQueries[queryID] = &liveQueryContext{
		cancel: func() { cancel(); _ = client.Unsubscribe(subID) },
		subID:  subID,
	}
	m.liveMu.Unlock()

	go func() {
		<-ctx.Done()
	}()
}

// stopLiveQuery tears down the WebSocket subscription backing queryID,
// if any.
func (m *QueryManager) stopLiveQuery(queryID string) {
	m.liveMu.Lock()
	lqc, ok := m.liveQueries[queryID]
	if ok {
		delete(m.liveQueries, queryID)
	}
	m.liveMu.Unlock()

	if ok && lqc.cancel != nil {
		lqc.cancel()
	}
}
