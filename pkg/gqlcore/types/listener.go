package types

// Observer is the capability record a caller hands to Subscribe. It is
// polymorphic over {next, error}: Error may be nil, in which case a
// network error for this listener is logged and dropped rather than
// delivered.
type Observer struct {
	Next  func(result GraphQLResult)
	Error func(err error)
}

// Listener is the one-argument function bound to a queryId that
// Broadcast invokes with the store's current QueryStoreValue for that
// query. The watchQuery factory builds one per Observer.
type Listener func(value QueryStoreValue)
