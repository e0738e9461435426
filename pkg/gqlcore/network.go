package gqlcore

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	graphql "github.com/hasura/go-graphql-client"

	"github.com/nbaertsch/gqlcore/internal/ast"
	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// Request is a single network attempt: a document plus its variables.
type Request struct {
	Query     *ast.Document
	Variables map[string]any
}

// NetworkInterface executes a single query or mutation request and
// blocks until a result or error is available. The Batcher collaborator
// wraps this to coalesce concurrent residual fetches.
type NetworkInterface interface {
	Query(ctx context.Context, req Request) (types.GraphQLResult, error)
	Mutate(ctx context.Context, req Request) (types.GraphQLResult, error)
}

// BatchNetworkInterface is the optional extension a NetworkInterface
// may implement to additionally support a single coalesced call for
// many requests. Its presence alone enables batching by default.
type BatchNetworkInterface interface {
	NetworkInterface
	BatchQuery(ctx context.Context, reqs []Request) ([]types.GraphQLResult, []error)
}

// HTTPNetworkInterface is the default NetworkInterface: a
// request-modifier hook injects headers (auth or otherwise) ahead of
// every call.
type HTTPNetworkInterface struct {
	client  *graphql.Client
	headers func() map[string]string
}

// NewHTTPNetworkInterface builds a NetworkInterface over a GraphQL
// HTTP endpoint, wiring graphql.NewClient plus an optional per-request
// header hook.
func NewHTTPNetworkInterface(endpoint string, httpClient *http.Client, headers func() map[string]string) *HTTPNetworkInterface {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPNetworkInterface{
		client:  graphql.NewClient(endpoint, httpClient),
		headers: headers,
	}
}

func (n *HTTPNetworkInterface) authenticatedClient() *graphql.Client {
	if n.headers == nil {
		return n.client
	}
	hdrs := n.headers()
	return n.client.WithRequestModifier(func(req *http.Request) {
		for k, v := range hdrs {
			req.Header.Set(k, v)
		}
	})
}

// Query executes req.Query as a GraphQL query over HTTP. The core hands
// NetworkInterface a runtime-built *ast.Document rather than a static Go
// struct, so this prints it and uses the client's raw-string Exec escape hatch
// instead of its reflection-based Query/Mutate helpers, which expect a
// fixed, compile-time operation shape.
func (n *HTTPNetworkInterface) Query(ctx context.Context, req Request) (types.GraphQLResult, error) {
	return n.execute(ctx, req)
}

// Mutate executes req.Query as a GraphQL mutation over HTTP.
func (n *HTTPNetworkInterface) Mutate(ctx context.Context, req Request) (types.GraphQLResult, error) {
	return n.execute(ctx, req)
}

func (n *HTTPNetworkInterface) execute(ctx context.Context, req Request) (types.GraphQLResult, error) {
	queryString := ast.Print(req.Query)
	var raw map[string]any
	if err := n.authenticatedClient().Exec(ctx, queryString, &raw, req.Variables); err != nil {
		if isAuthError(err) {
			return types.GraphQLResult{}, WrapError("execute", fmt.Errorf("%w: %v", ErrNotAuthenticated, err), "")
		}
		return types.GraphQLResult{}, WrapError("execute", fmt.Errorf("%w: %v", ErrNetwork, err), "")
	}
	return types.GraphQLResult{Data: raw, Complete: true}, nil
}

// isAuthError reports whether err looks like the transport rejected the
// request for lack of credentials, so execute can surface
// ErrNotAuthenticated instead of the generic ErrNetwork.
func isAuthError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "not authenticated")
}
