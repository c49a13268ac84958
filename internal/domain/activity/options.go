package activity

import "time"

// DefaultListLimit caps a listing that does not set Limit.
const DefaultListLimit = 50

// ListActivityOptions filters an activity listing. Zero values do not filter.
type ListActivityOptions struct {
	DescriptorID *int
	ActivityType *ActivityType
	// Since keeps entries created at or after this instant.
	Since  time.Time
	Limit  int
	Offset int
}
