package gqlcore

import (
	"github.com/nbaertsch/gqlcore/internal/ast"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// Event name vocabulary. These strings are the binding contract with
// the Store and must be reproduced verbatim by any StoreAdapter
// implementation.
const (
	EventQueryInit         = "APOLLO_QUERY_INIT"
	EventQueryResultClient = "APOLLO_QUERY_RESULT_CLIENT"
	EventQueryResult       = "APOLLO_QUERY_RESULT"
	EventQueryError        = "APOLLO_QUERY_ERROR"
	EventQueryStop         = "APOLLO_QUERY_STOP"
	EventMutationInit      = "APOLLO_MUTATION_INIT"
	EventMutationResult    = "APOLLO_MUTATION_RESULT"
)

// Event is a single dispatch to the Store. Type is one of the Event*
// constants above; Fields carries the event-specific payload.
type Event struct {
	Type   string
	Fields map[string]any
}

func queryInitEvent(queryString, minimizedQueryString string, query, minimizedQuery *ast.Document, variables map[string]any, forceFetch, returnPartialData bool, queryID string, requestID int64, fragmentMap ast.FragmentMap) Event {
	return Event{
		Type: EventQueryInit,
		Fields: map[string]any{
			"queryString":          queryString,
			"query":                query,
			"minimizedQueryString": minimizedQueryString,
			"minimizedQuery":       minimizedQuery,
			"variables":            variables,
			"forceFetch":           forceFetch,
			"returnPartialData":    returnPartialData,
			"queryId":              queryID,
			"requestId":            requestID,
			"fragmentMap":          fragmentMap,
		},
	}
}

func queryResultClientEvent(result types.GraphQLResult, variables map[string]any, query *ast.Document, complete bool, queryID string) Event {
	return Event{
		Type: EventQueryResultClient,
		Fields: map[string]any{
			"result":    result,
			"variables": variables,
			"query":     query,
			"complete":  complete,
			"queryId":   queryID,
		},
	}
}

func queryResultEvent(result types.GraphQLResult, queryID string, requestID int64) Event {
	return Event{
		Type: EventQueryResult,
		Fields: map[string]any{
			"result":    result,
			"queryId":   queryID,
			"requestId": requestID,
		},
	}
}

func queryErrorEvent(err error, queryID string, requestID int64) Event {
	return Event{
		Type: EventQueryError,
		Fields: map[string]any{
			"error":     err,
			"queryId":   queryID,
			"requestId": requestID,
		},
	}
}

func queryStopEvent(queryID string) Event {
	return Event{
		Type:   EventQueryStop,
		Fields: map[string]any{"queryId": queryID},
	}
}

func mutationInitEvent(mutationString string, mutation *ast.Document, variables map[string]any, mutationID string, fragmentMap ast.FragmentMap) Event {
	return Event{
		Type: EventMutationInit,
		Fields: map[string]any{
			"mutationString": mutationString,
			"mutation":       mutation,
			"variables":      variables,
			"mutationId":     mutationID,
			"fragmentMap":    fragmentMap,
		},
	}
}

func mutationResultEvent(result types.GraphQLResult, mutationID string) Event {
	return Event{
		Type: EventMutationResult,
		Fields: map[string]any{
			"result":     result,
			"mutationId": mutationID,
		},
	}
}
