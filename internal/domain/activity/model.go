package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeDescriptorRegistered ActivityType = "descriptor_registered"
	TypeDescriptorUpdated    ActivityType = "descriptor_updated"
	TypeDescriptorUsed       ActivityType = "descriptor_used"
	TypeDescriptorDeleted    ActivityType = "descriptor_deleted"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case TypeDescriptorRegistered, TypeDescriptorUpdated, TypeDescriptorUsed, TypeDescriptorDeleted:
		return true
	default:
		return false
	}
}

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64
	TenantID     string
	DescriptorID int
	ActivityType ActivityType
	Summary      string
	Details      string // JSON string
	CreatedAt    time.Time
}
