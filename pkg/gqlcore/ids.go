package gqlcore

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// idCounter is the monotonic counter shared between the query and
// request id namespaces. Every acquisition increments it; queryId and
// requestId are drawn from the same sequence so that late results from
// superseded requests can never collide with a current query's id.
type idCounter struct {
	n atomic.Int64
}

// next returns the next numeric id in the shared sequence.
func (c *idCounter) next() int64 {
	return c.n.Add(1)
}

// newQueryID mints an opaque queryId: the numeric counter value plus a
// short uuid suffix for display/log disambiguation.
func (c *idCounter) newQueryID() string {
	n := c.next()
	return strconv.FormatInt(n, 10) + "-" + uuid.New().String()[:8]
}

// newRequestID mints the numeric requestId for a single network attempt.
func (c *idCounter) newRequestID() int64 {
	return c.next()
}

// newMutationID mints the opaque mutationId for a mutate() call.
func (c *idCounter) newMutationID() string {
	return c.newQueryID()
}
