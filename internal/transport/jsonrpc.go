package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// JSON-RPC 2.0 error codes.
const (
	ErrParseCode      = -32700
	ErrInvalidReq     = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603

	// ErrServer is the implementation-defined code for domain errors.
	ErrServer = -32000
)

// maxRequestBytes bounds a single JSON-RPC request body.
const maxRequestBytes = 1 << 20

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// IsNotification reports whether the request expects no response.
func (r Request) IsNotification() bool {
	return r.ID == nil
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error represents a JSON-RPC 2.0 error object. It doubles as the error
// returned by ParseRequest.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("json-rpc %d: %s", e.Code, e.Message)
}

// ParseRequest parses and validates a JSON-RPC request payload. Errors are
// *Error values carrying ErrParseCode or ErrInvalidReq.
func ParseRequest(body io.Reader) (Request, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxRequestBytes+1))
	if err != nil {
		return Request{}, &Error{Code: ErrParseCode, Message: "read error"}
	}
	if len(data) > maxRequestBytes {
		return Request{}, &Error{Code: ErrInvalidReq, Message: "request too large"}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return Request{}, &Error{Code: ErrInvalidReq, Message: "batch requests are not supported"}
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return Request{}, &Error{Code: ErrParseCode, Message: "parse error"}
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return Request{}, &Error{Code: ErrInvalidReq, Message: "invalid request"}
	}
	return req, nil
}

// WriteResult writes a JSON-RPC success response.
func WriteResult(w http.ResponseWriter, id any, result any) {
	writeJSON(w, http.StatusOK, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	})
}

// WriteError writes a JSON-RPC error response.
func WriteError(w http.ResponseWriter, id any, code int, message string, data any) {
	writeJSON(w, http.StatusOK, Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
