package mcp

import (
	"time"

	"github.com/rpggio/synchrokit/internal/domain/activity"
	"github.com/rpggio/synchrokit/internal/domain/descriptor"
)

// RegisterDescriptorParams is the input of register_descriptor.
type RegisterDescriptorParams struct {
	Identifier   int     `json:"identifier" jsonschema:"numeric identifier, unique within the tenant"`
	Name         string  `json:"name,omitempty" jsonschema:"display name of the described object"`
	LastUsedDate *string `json:"last_used_date,omitempty" jsonschema:"RFC 3339 timestamp of the last use"`
	UsedCount    int     `json:"used_count,omitempty" jsonschema:"initial use count"`
}

// DescriptorIDParams names one descriptor for get_descriptor, record_use and
// delete_descriptor.
type DescriptorIDParams struct {
	Identifier int `json:"identifier" jsonschema:"descriptor identifier"`
}

// ListDescriptorsParams is the input of list_descriptors.
type ListDescriptorsParams struct {
	OrderBy string `json:"order_by,omitempty" jsonschema:"identifier (default), last_used or used_count"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
	Offset  int    `json:"offset,omitempty" jsonschema:"offset for pagination"`
}

// UpdateDescriptorParams is the input of update_descriptor. Nil fields are
// left unchanged.
type UpdateDescriptorParams struct {
	Identifier int     `json:"identifier" jsonschema:"descriptor identifier"`
	Name       *string `json:"name,omitempty" jsonschema:"new display name"`
	// An empty string clears the timestamp.
	LastUsedDate *string `json:"last_used_date,omitempty" jsonschema:"new RFC 3339 last use timestamp, empty to clear"`
	UsedCount    *int    `json:"used_count,omitempty" jsonschema:"new use count"`
}

// GetRecentActivityParams is the input of get_recent_activity.
type GetRecentActivityParams struct {
	Identifier *int    `json:"identifier,omitempty" jsonschema:"only entries for this descriptor"`
	Type       string  `json:"type,omitempty" jsonschema:"only entries of this activity type"`
	Since      *string `json:"since,omitempty" jsonschema:"only entries at or after this RFC 3339 timestamp"`
	Limit      int     `json:"limit,omitempty" jsonschema:"maximum number of results"`
	Offset     int     `json:"offset,omitempty" jsonschema:"offset for pagination"`
}

// DescriptorResponse is the wire form of a descriptor. LastUsedDate is RFC 3339
// and omitted when the descriptor was never used.
type DescriptorResponse struct {
	Identifier   int    `json:"identifier"`
	Name         string `json:"name"`
	LastUsedDate string `json:"last_used_date,omitempty"`
	UsedCount    int    `json:"used_count"`
}

// ListDescriptorsResponse is the result of list_descriptors.
type ListDescriptorsResponse struct {
	Descriptors []DescriptorResponse `json:"descriptors"`
}

// DeleteDescriptorResponse is the result of delete_descriptor.
type DeleteDescriptorResponse struct {
	Identifier int  `json:"identifier"`
	Deleted    bool `json:"deleted"`
}

// ActivityResponse is the wire form of an activity log entry.
type ActivityResponse struct {
	ID         int64  `json:"id"`
	Identifier int    `json:"identifier"`
	Type       string `json:"type"`
	Summary    string `json:"summary"`
	Details    string `json:"details,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// ActivityListResponse is the result of get_recent_activity.
type ActivityListResponse struct {
	Entries []ActivityResponse `json:"entries"`
}

func toDescriptorResponse(desc *descriptor.ObjectDescriptor) DescriptorResponse {
	resp := DescriptorResponse{
		Identifier: desc.Identifier(),
		Name:       desc.Name(),
		UsedCount:  desc.UsedCount(),
	}
	if t := desc.LastUsedDate(); !t.IsZero() {
		resp.LastUsedDate = t.Format(time.RFC3339Nano)
	}
	return resp
}

func toActivityResponse(entry activity.ActivityEntry) ActivityResponse {
	return ActivityResponse{
		ID:         entry.ID,
		Identifier: entry.DescriptorID,
		Type:       string(entry.ActivityType),
		Summary:    entry.Summary,
		Details:    entry.Details,
		CreatedAt:  entry.CreatedAt.Format(time.RFC3339Nano),
	}
}
