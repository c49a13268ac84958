package mcp

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/synchrokit/internal/domain/activity"
	"github.com/rpggio/synchrokit/internal/domain/descriptor"
)

// Tool names.
const (
	toolRegisterDescriptor = "register_descriptor"
	toolGetDescriptor      = "get_descriptor"
	toolListDescriptors    = "list_descriptors"
	toolUpdateDescriptor   = "update_descriptor"
	toolRecordUse          = "record_use"
	toolDeleteDescriptor   = "delete_descriptor"
	toolGetRecentActivity  = "get_recent_activity"
)

// toolset implements every tool once; Handler and the SDK server both call it.
type toolset struct {
	descriptors DescriptorService
	activity    ActivityService
}

func (ts *toolset) registerDescriptor(ctx context.Context, tenantID string, p RegisterDescriptorParams) (DescriptorResponse, error) {
	lastUsed, err := parseOptionalTime("last_used_date", p.LastUsedDate)
	if err != nil {
		return DescriptorResponse{}, mapError(err)
	}
	req := descriptor.RegisterRequest{
		Identifier: p.Identifier,
		Name:       p.Name,
		UsedCount:  p.UsedCount,
	}
	if !lastUsed.IsZero() {
		req.LastUsedDate = &lastUsed
	}

	desc, err := ts.descriptors.Register(ctx, tenantID, req)
	if err != nil {
		return DescriptorResponse{}, mapError(err)
	}
	return toDescriptorResponse(desc), nil
}

func (ts *toolset) getDescriptor(ctx context.Context, tenantID string, p DescriptorIDParams) (DescriptorResponse, error) {
	desc, err := ts.descriptors.Get(ctx, tenantID, p.Identifier)
	if err != nil {
		return DescriptorResponse{}, mapError(err)
	}
	return toDescriptorResponse(desc), nil
}

func (ts *toolset) listDescriptors(ctx context.Context, tenantID string, p ListDescriptorsParams) (ListDescriptorsResponse, error) {
	descs, err := ts.descriptors.List(ctx, tenantID, descriptor.ListOptions{
		OrderBy: descriptor.Order(p.OrderBy),
		Limit:   p.Limit,
		Offset:  p.Offset,
	})
	if err != nil {
		return ListDescriptorsResponse{}, mapError(err)
	}
	resp := ListDescriptorsResponse{Descriptors: make([]DescriptorResponse, 0, len(descs))}
	for _, desc := range descs {
		resp.Descriptors = append(resp.Descriptors, toDescriptorResponse(desc))
	}
	return resp, nil
}

func (ts *toolset) updateDescriptor(ctx context.Context, tenantID string, p UpdateDescriptorParams) (DescriptorResponse, error) {
	req := descriptor.UpdateRequest{
		Identifier: p.Identifier,
		Name:       p.Name,
		UsedCount:  p.UsedCount,
	}
	if p.LastUsedDate != nil {
		lastUsed, err := parseOptionalTime("last_used_date", p.LastUsedDate)
		if err != nil {
			return DescriptorResponse{}, mapError(err)
		}
		req.LastUsedDate = &lastUsed
	}

	desc, err := ts.descriptors.Update(ctx, tenantID, req)
	if err != nil {
		return DescriptorResponse{}, mapError(err)
	}
	return toDescriptorResponse(desc), nil
}

func (ts *toolset) recordUse(ctx context.Context, tenantID string, p DescriptorIDParams) (DescriptorResponse, error) {
	desc, err := ts.descriptors.RecordUse(ctx, tenantID, p.Identifier)
	if err != nil {
		return DescriptorResponse{}, mapError(err)
	}
	return toDescriptorResponse(desc), nil
}

func (ts *toolset) deleteDescriptor(ctx context.Context, tenantID string, p DescriptorIDParams) (DeleteDescriptorResponse, error) {
	if err := ts.descriptors.Delete(ctx, tenantID, p.Identifier); err != nil {
		return DeleteDescriptorResponse{}, mapError(err)
	}
	return DeleteDescriptorResponse{Identifier: p.Identifier, Deleted: true}, nil
}

func (ts *toolset) getRecentActivity(ctx context.Context, tenantID string, p GetRecentActivityParams) (ActivityListResponse, error) {
	since, err := parseOptionalTime("since", p.Since)
	if err != nil {
		return ActivityListResponse{}, mapError(err)
	}
	opts := activity.ListActivityOptions{
		DescriptorID: p.Identifier,
		Since:        since,
		Limit:        p.Limit,
		Offset:       p.Offset,
	}
	if p.Type != "" {
		typ := activity.ActivityType(p.Type)
		opts.ActivityType = &typ
	}

	entries, err := ts.activity.GetRecentActivity(ctx, tenantID, opts)
	if err != nil {
		return ActivityListResponse{}, mapError(err)
	}
	resp := ActivityListResponse{Entries: make([]ActivityResponse, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, toActivityResponse(entry))
	}
	return resp, nil
}

// parseOptionalTime treats nil and "" as absent.
func parseOptionalTime(field string, s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", errInvalidParams, field, err)
	}
	return t, nil
}

// registerTools exposes the toolset through the SDK server. Tenant comes
// from the context set by the receiving middleware.
func registerTools(server *sdkmcp.Server, ts *toolset) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolRegisterDescriptor,
		Description: "Register a descriptor for an object: identifier, optional name, last use time and use count",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in RegisterDescriptorParams) (*sdkmcp.CallToolResult, DescriptorResponse, error) {
		out, err := ts.registerDescriptor(ctx, getTenantID(ctx), in)
		return nil, out, err
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolGetDescriptor,
		Description: "Get a descriptor by identifier",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DescriptorIDParams) (*sdkmcp.CallToolResult, DescriptorResponse, error) {
		out, err := ts.getDescriptor(ctx, getTenantID(ctx), in)
		return nil, out, err
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolListDescriptors,
		Description: "List descriptors ordered by identifier, most recent use, or use count",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListDescriptorsParams) (*sdkmcp.CallToolResult, ListDescriptorsResponse, error) {
		out, err := ts.listDescriptors(ctx, getTenantID(ctx), in)
		return nil, out, err
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolUpdateDescriptor,
		Description: "Replace any of a descriptor's name, last use time or use count",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateDescriptorParams) (*sdkmcp.CallToolResult, DescriptorResponse, error) {
		out, err := ts.updateDescriptor(ctx, getTenantID(ctx), in)
		return nil, out, err
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolRecordUse,
		Description: "Record one use of the described object: increments the use count and stamps the last use time",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DescriptorIDParams) (*sdkmcp.CallToolResult, DescriptorResponse, error) {
		out, err := ts.recordUse(ctx, getTenantID(ctx), in)
		return nil, out, err
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolDeleteDescriptor,
		Description: "Delete a descriptor",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DescriptorIDParams) (*sdkmcp.CallToolResult, DeleteDescriptorResponse, error) {
		out, err := ts.deleteDescriptor(ctx, getTenantID(ctx), in)
		return nil, out, err
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolGetRecentActivity,
		Description: "List recent descriptor activity, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetRecentActivityParams) (*sdkmcp.CallToolResult, ActivityListResponse, error) {
		out, err := ts.getRecentActivity(ctx, getTenantID(ctx), in)
		return nil, out, err
	})
}
