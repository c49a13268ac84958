package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ErrUnknownMethod is returned by an MCPHandler for methods it does not serve.
var ErrUnknownMethod = errors.New("method not found")

// MCPHandler handles MCP method dispatch.
type MCPHandler interface {
	Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error)
}

// APIError is implemented by handler errors that carry a stable code.
type APIError interface {
	error
	CodeValue() string
	MessageValue() string
	RecoveryHintValue() string
}

// Server wires HTTP handlers.
type Server struct {
	handler MCPHandler
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware. tenantMiddleware
// is either AuthMiddleware or DefaultTenantMiddleware.
func NewServer(handler MCPHandler, tenantMiddleware func(http.Handler) http.Handler, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)

	srv := &Server{handler: handler, logger: logger}
	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if tenantMiddleware != nil {
			r.Use(tenantMiddleware)
		}
		r.Use(SessionMiddleware)
		r.Post("/mcp", srv.handleMCP)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			WriteError(w, nil, rpcErr.Code, rpcErr.Message, nil)
			return
		}
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	tenantID, ok := TenantFromContext(r.Context())
	if !ok || tenantID == "" {
		http.Error(w, "missing tenant", http.StatusUnauthorized)
		return
	}

	sessionID, _ := SessionIDFromContext(r.Context())
	requestID, _ := RequestIDFromContext(r.Context())

	result, err := s.handler.Handle(r.Context(), tenantID, sessionID, req.Method, req.Params)
	if req.IsNotification() {
		if err != nil {
			s.logger.Debug("mcp notification failed", "request_id", requestID, "tenant_id", tenantID, "method", req.Method, "error", err)
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if err != nil {
		s.logger.Debug("mcp request failed", "request_id", requestID, "tenant_id", tenantID, "method", req.Method, "error", err)
		s.writeHandlerError(w, req.ID, err)
		return
	}

	s.logger.Debug("mcp request", "request_id", requestID, "tenant_id", tenantID, "method", req.Method)
	WriteResult(w, req.ID, result)
}

func (s *Server) writeHandlerError(w http.ResponseWriter, id any, err error) {
	if errors.Is(err, ErrUnauthorized) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if errors.Is(err, ErrUnknownMethod) {
		WriteError(w, id, ErrMethodNotFound, err.Error(), nil)
		return
	}

	var apiErr APIError
	if errors.As(err, &apiErr) {
		code := ErrServer
		if apiErr.CodeValue() == "INVALID_INPUT" {
			code = ErrInvalidParams
		}
		WriteError(w, id, code, apiErr.MessageValue(), map[string]string{
			"code":          apiErr.CodeValue(),
			"recovery_hint": apiErr.RecoveryHintValue(),
		})
		return
	}

	s.logger.Error("mcp handler error", "error", err)
	WriteError(w, id, ErrInternal, "internal error", nil)
}
