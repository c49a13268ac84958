package descriptor

import (
	"context"
	"time"

	"github.com/rpggio/synchrokit/internal/domain/activity"
)

// Repository provides persistence for descriptors.
type Repository interface {
	Create(ctx context.Context, tenantID string, desc *ObjectDescriptor) error
	Get(ctx context.Context, tenantID string, identifier int) (*ObjectDescriptor, error)
	Update(ctx context.Context, tenantID string, desc *ObjectDescriptor) error
	Delete(ctx context.Context, tenantID string, identifier int) error
	List(ctx context.Context, tenantID string, opts ListOptions) ([]*ObjectDescriptor, error)
	RecordUse(ctx context.Context, tenantID string, identifier int, at time.Time) (*ObjectDescriptor, error)
}

// ActivityRepository records descriptor events. activity.Service and the
// activity store both satisfy it.
type ActivityRepository interface {
	activity.Writer
}
