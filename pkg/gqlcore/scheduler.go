package gqlcore

import (
	"sync"
	"time"

	"github.com/nbaertsch/gqlcore/pkg/gqlcore/types"
)

// Scheduler owns a query's refetch cadence once it has been registered
// with a pollInterval. It is the only legal mutation of a polling
// query's lifecycle other than stop.
type Scheduler interface {
	RegisterPollingQuery(queryID string, options types.WatchOptions, tick func(options types.WatchOptions))
	StopPollingQuery(queryID string)
}

// tickerScheduler is the default Scheduler: one time.Ticker per polling
// query, with a map of cancel channels guarded by a mutex tracking the
// live set.
type tickerScheduler struct {
	mu    sync.Mutex
	polls map[string]chan struct{}
}

func newTickerScheduler() *tickerScheduler {
	return &tickerScheduler{polls: make(map[string]chan struct{})}
}

// RegisterPollingQuery starts a ticker at options.PollInterval that
// invokes tick(options) on every fire until StopPollingQuery is called.
func (s *tickerScheduler) RegisterPollingQuery(queryID string, options types.WatchOptions, tick func(options types.WatchOptions)) {
	if options.PollInterval <= 0 {
		return
	}

	stop := make(chan struct{})
	s.mu.Lock()
	s.polls[queryID] = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(options.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tick(options)
			case <-stop:
				return
			}
		}
	}()
}

// StopPollingQuery cancels the polling ticker for queryID, if any.
func (s *tickerScheduler) StopPollingQuery(queryID string) {
	s.mu.Lock()
	stop, ok := s.polls[queryID]
	if ok {
		delete(s.polls, queryID)
	}
	s.mu.Unlock()
	if ok {
		close(stop)
	}
}
