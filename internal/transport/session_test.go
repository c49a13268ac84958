package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantID     string
	}{
		{name: "absent", wantStatus: http.StatusOK},
		{name: "present", header: "sess-1", wantStatus: http.StatusOK, wantID: "sess-1"},
		{name: "space", header: "sess 1", wantStatus: http.StatusBadRequest},
		{name: "non ascii", header: "séance", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = SessionIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != "" {
				req.Header.Set(SessionHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.wantID, seen)
			require.Equal(t, tt.wantID, rec.Header().Get(SessionHeader))
		})
	}
}
