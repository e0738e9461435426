package gqlcore

import (
	"fmt"
	"time"

	"github.com/nbaertsch/gqlcore/internal/ast"
)

// QueryTransformer rewrites an operation definition before it is sent
// over the wire, e.g. to inject a typename selection on every object
// type. It must be pure with respect to its input AST: callers may
// reuse the original document afterward.
type QueryTransformer func(op *ast.OperationDefinition) *ast.OperationDefinition

// Config holds the configuration for a QueryManager.
type Config struct {
	// NetworkInterface executes (possibly batched) queries and mutations.
	NetworkInterface NetworkInterface

	// Store is the external event-sourced cache this manager drives.
	Store StoreAdapter

	// RootKey is the key under which the store projects this manager's
	// view: state[RootKey] = { data, queries }.
	RootKey string

	// QueryTransformer is applied exactly once per fetch or mutation.
	// Nil means documents pass through unchanged.
	QueryTransformer QueryTransformer

	// ShouldBatch enables the Batcher for residual fetches. If nil and
	// NetworkInterface implements BatchNetworkInterface, batching is
	// enabled by default.
	ShouldBatch *bool

	// Batcher coalesces residual fetches onto a shared network call.
	// If nil, a timer-based batcher at BatchInterval cadence is used when
	// batching is enabled (see ShouldBatch); otherwise each residual
	// fetch is sent on its own as soon as it is enqueued.
	Batcher Batcher

	// BatchInterval is the batcher's cadence. Defaults to 25ms.
	BatchInterval time.Duration

	// Scheduler drives polling watches. Defaults to a ticker-based
	// scheduler.
	Scheduler Scheduler

	// Logf receives diagnostic messages that have no listener to reach,
	// e.g. a network error on a listener with no Error capability.
	// Defaults to a no-op.
	Logf func(format string, args ...any)

	// SubscriptionURL is the WebSocket endpoint the Live Query Watch
	// connects to. Required only by watches with UseSubscription set.
	SubscriptionURL string

	// Headers returns connection-time headers for the Live Query
	// Watch's WebSocket handshake.
	Headers func() map[string]string
}

// Validate checks whether the configuration is usable.
func (c *Config) Validate() error {
	if c.Store == nil {
		return fmt.Errorf("Store is required")
	}
	if c.RootKey == "" {
		return fmt.Errorf("RootKey is required")
	}
	if c.NetworkInterface == nil {
		return fmt.Errorf("NetworkInterface is required")
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults. Store,
// NetworkInterface, and RootKey are still required before use.
func DefaultConfig() *Config {
	return &Config{
		RootKey:       "ROOT_QUERY",
		BatchInterval: 25 * time.Millisecond,
		Logf:          func(string, ...any) {},
	}
}

func (c *Config) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}
