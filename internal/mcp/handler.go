package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/synchrokit/internal/domain/activity"
	"github.com/rpggio/synchrokit/internal/domain/descriptor"
	"github.com/rpggio/synchrokit/internal/transport"
)

// DescriptorService defines descriptor operations needed by MCP.
type DescriptorService interface {
	Register(ctx context.Context, tenantID string, req descriptor.RegisterRequest) (*descriptor.ObjectDescriptor, error)
	Get(ctx context.Context, tenantID string, identifier int) (*descriptor.ObjectDescriptor, error)
	List(ctx context.Context, tenantID string, opts descriptor.ListOptions) ([]*descriptor.ObjectDescriptor, error)
	Update(ctx context.Context, tenantID string, req descriptor.UpdateRequest) (*descriptor.ObjectDescriptor, error)
	RecordUse(ctx context.Context, tenantID string, identifier int) (*descriptor.ObjectDescriptor, error)
	Delete(ctx context.Context, tenantID string, identifier int) error
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Descriptors DescriptorService
	Activity    ActivityService
}

var _ transport.MCPHandler = (*Handler)(nil)

// Handler dispatches JSON-RPC methods for the HTTP transport.
type Handler struct {
	tools *toolset
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		tools: &toolset{
			descriptors: services.Descriptors,
			activity:    services.Activity,
		},
	}
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error) {
	switch method {
	case toolRegisterDescriptor:
		var req RegisterDescriptorParams
		if err := decodeKeyedParams(params, &req); err != nil {
			return nil, err
		}
		return h.tools.registerDescriptor(ctx, tenantID, req)
	case toolGetDescriptor:
		var req DescriptorIDParams
		if err := decodeKeyedParams(params, &req); err != nil {
			return nil, err
		}
		return h.tools.getDescriptor(ctx, tenantID, req)
	case toolListDescriptors:
		var req ListDescriptorsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.tools.listDescriptors(ctx, tenantID, req)
	case toolUpdateDescriptor:
		var req UpdateDescriptorParams
		if err := decodeKeyedParams(params, &req); err != nil {
			return nil, err
		}
		return h.tools.updateDescriptor(ctx, tenantID, req)
	case toolRecordUse:
		var req DescriptorIDParams
		if err := decodeKeyedParams(params, &req); err != nil {
			return nil, err
		}
		return h.tools.recordUse(ctx, tenantID, req)
	case toolDeleteDescriptor:
		var req DescriptorIDParams
		if err := decodeKeyedParams(params, &req); err != nil {
			return nil, err
		}
		return h.tools.deleteDescriptor(ctx, tenantID, req)
	case toolGetRecentActivity:
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.tools.getRecentActivity(ctx, tenantID, req)
	default:
		return nil, fmt.Errorf("%w: %s", transport.ErrUnknownMethod, method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return mapError(fmt.Errorf("%w: %v", errInvalidParams, err))
	}
	return nil
}

// decodeKeyedParams decodes params for methods that act on one descriptor.
// A missing identifier is rejected rather than read as descriptor 0.
func decodeKeyedParams(params json.RawMessage, out any) error {
	if len(bytes.TrimSpace(params)) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		return mapError(fmt.Errorf("%w: params are required", errInvalidParams))
	}
	if err := decodeParams(params, out); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(params, &fields); err != nil {
		return mapError(fmt.Errorf("%w: %v", errInvalidParams, err))
	}
	if _, ok := fields["identifier"]; !ok {
		return mapError(fmt.Errorf("%w: identifier is required", errInvalidParams))
	}
	return nil
}
