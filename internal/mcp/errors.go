package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/synchrokit/internal/domain/activity"
	"github.com/rpggio/synchrokit/internal/domain/descriptor"
)

// errInvalidParams marks malformed tool arguments.
var errInvalidParams = errors.New("invalid params")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, descriptor.ErrDescriptorNotFound):
		return &APIError{Code: "DESCRIPTOR_NOT_FOUND", Message: "descriptor not found", RecoveryHint: "Check the identifier or register it first"}
	case errors.Is(err, descriptor.ErrAlreadyExists):
		return &APIError{Code: "DESCRIPTOR_EXISTS", Message: "descriptor already registered", RecoveryHint: "Use update_descriptor instead"}
	case errors.Is(err, descriptor.ErrUseCountExhausted):
		return &APIError{Code: "USE_COUNT_EXHAUSTED", Message: "use count is at its maximum", RecoveryHint: "Reset used_count with update_descriptor"}
	case errors.Is(err, descriptor.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check order_by, type, limit and offset"}
	case errors.Is(err, errInvalidParams):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Timestamps are RFC 3339"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
