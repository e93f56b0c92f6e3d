package models

// Stored booking statuses. Uppercase on purpose: the listing states below
// reuse the same spelling on the wire.
const (
	StatusWaiting   = "WAITING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const (
	// DefaultItemCacheTTL is how long item records stay in the read-through cache.
	DefaultItemCacheTTL = 30 * 60 // seconds

	// WorkerQueueSize is the in-memory export queue capacity.
	WorkerQueueSize = 128

	// DefaultListSize is the page size used when a caller passes from without size.
	DefaultListSize = 20
)
