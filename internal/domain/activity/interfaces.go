package activity

import "context"

// Writer appends entries to the activity log. Both the store and Service
// satisfy it.
type Writer interface {
	Log(ctx context.Context, tenantID string, entry *ActivityEntry) error
}

// Reader lists activity entries, newest first.
type Reader interface {
	List(ctx context.Context, tenantID string, opts ListActivityOptions) ([]ActivityEntry, error)
}

// Repository is the activity log store.
type Repository interface {
	Writer
	Reader
}
