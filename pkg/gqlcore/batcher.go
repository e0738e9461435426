package gqlcore

import (
	"context"
	"sync"
	"time"

	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// batchItem pairs an enqueued request with the queryId it belongs to
// and the Deferred its resolution must land on.
type batchItem struct {
	queryID  string
	request  Request
	deferred *Deferred[types.GraphQLResult]
}

// Batcher coalesces concurrently enqueued requests onto a single
// transport call at a fixed cadence. Enqueue returns a Deferred the
// fetch path attaches its continuation to.
type Batcher interface {
	Enqueue(queryID string, req Request) *Deferred[types.GraphQLResult]
}

// tickerBatcher is the batching Batcher: a goroutine drains whatever
// accumulated in the last interval and issues one BatchQuery call per
// tick when the NetworkInterface implements BatchNetworkInterface, or
// one Query call per pending request otherwise, rather than reaching
// for a third-party scheduling library; see DESIGN.md.
type tickerBatcher struct {
	network  NetworkInterface
	interval time.Duration

	mu      sync.Mutex
	pending []batchItem

	startOnce sync.Once
	stop      chan struct{}
}

func newTickerBatcher(network NetworkInterface, interval time.Duration) *tickerBatcher {
	if interval <= 0 {
		interval = 25 * time.Millisecond
	}
	return &tickerBatcher{network: network, interval: interval, stop: make(chan struct{})}
}

// Enqueue adds req to the current batch window and starts the
// background ticker on first use.
func (b *tickerBatcher) Enqueue(queryID string, req Request) *Deferred[types.GraphQLResult] {
	b.startOnce.Do(b.run)

	d := NewDeferred[types.GraphQLResult]()
	b.mu.Lock()
	b.pending = append(b.pending, batchItem{queryID: queryID, request: req, deferred: d})
	b.mu.Unlock()
	return d
}

func (b *tickerBatcher) run() {
	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.flush()
			case <-b.stop:
				return
			}
		}
	}()
}

func (b *tickerBatcher) flush() {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if bni, ok := b.network.(BatchNetworkInterface); ok {
		reqs := make([]Request, len(batch))
		for i, item := range batch {
			reqs[i] = item.request
		}
		results, errs := bni.BatchQuery(context.Background(), reqs)
		for i, item := range batch {
			if i < len(errs) && errs[i] != nil {
				item.deferred.Reject(errs[i])
				continue
			}
			var r types.GraphQLResult
			if i < len(results) {
				r = results[i]
			}
			item.deferred.Resolve(r)
		}
		return
	}

	// No batch-capable transport: issue one call per pending item.
	for _, item := range batch {
		item := item
		go func() {
			res, err := b.network.Query(context.Background(), item.request)
			if err != nil {
				item.deferred.Reject(err)
				return
			}
			item.deferred.Resolve(res)
		}()
	}
}

// Close stops the background ticker.
func (b *tickerBatcher) Close() {
	close(b.stop)
}

// unbatchedBatcher issues each enqueued request immediately on its own
// goroutine, used when no Batcher is configured and batching resolves
// to off: ShouldBatch is explicitly false, or it is nil and the
// NetworkInterface has no BatchNetworkInterface extension.
type unbatchedBatcher struct {
	network NetworkInterface
}

// Enqueue satisfies Batcher by dispatching req straight to the
// NetworkInterface with no coalescing window.
func (b *unbatchedBatcher) Enqueue(_ string, req Request) *Deferred[types.GraphQLResult] {
	d := NewDeferred[types.GraphQLResult]()
	go func() {
		res, err := b.network.Query(context.Background(), req)
		if err != nil {
			d.Reject(err)
			return
		}
		d.Resolve(res)
	}()
	return d
}
