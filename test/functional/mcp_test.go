package functional_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/rpggio/synchrokit/internal/testserver"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type rpcError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type descriptorResult struct {
	Identifier   int    `json:"identifier"`
	Name         string `json:"name"`
	LastUsedDate string `json:"last_used_date"`
	UsedCount    int    `json:"used_count"`
}

func rpcCall(t *testing.T, ts *testserver.TestServer, token, method string, params any) rpcResponse {
	t.Helper()

	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/mcp", bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(bodyBytes))
	}

	var result rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

// call invokes a tool and decodes its result into out.
func call(t *testing.T, ts *testserver.TestServer, method string, params, out any) {
	t.Helper()

	resp := rpcCall(t, ts, ts.Token, method, params)
	require.Nil(t, resp.Error, "RPC error: %v", resp.Error)
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Result, out))
	}
}

func TestFunctional_Authentication(t *testing.T) {
	ts := testserver.New(t, "tenant1")

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/mcp", bytes.NewBufferString(`{"jsonrpc":"2.0","method":"list_descriptors","id":1}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err = http.NewRequest(http.MethodPost, ts.Server.URL+"/mcp", bytes.NewBufferString(`{"jsonrpc":"2.0","method":"list_descriptors","id":1}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-real-token")

	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestFunctional_DescriptorLifecycle(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := testserver.New(t, "tenant1", testserver.WithClock(func() time.Time { return now }))

	var created descriptorResult
	call(t, ts, "register_descriptor", map[string]any{
		"identifier":     42,
		"name":           "Camera",
		"last_used_date": "2024-01-01T00:00:00Z",
		"used_count":     3,
	}, &created)
	require.Equal(t, descriptorResult{Identifier: 42, Name: "Camera", LastUsedDate: "2024-01-01T00:00:00Z", UsedCount: 3}, created)

	var used descriptorResult
	call(t, ts, "record_use", map[string]any{"identifier": 42}, &used)
	require.Equal(t, 4, used.UsedCount)
	require.Equal(t, "2024-06-01T12:00:00Z", used.LastUsedDate)

	var renamed descriptorResult
	call(t, ts, "update_descriptor", map[string]any{"identifier": 42, "name": "Tripod", "last_used_date": ""}, &renamed)
	require.Equal(t, "Tripod", renamed.Name)
	require.Empty(t, renamed.LastUsedDate)
	require.Equal(t, 4, renamed.UsedCount)

	var got descriptorResult
	call(t, ts, "get_descriptor", map[string]any{"identifier": 42}, &got)
	require.Equal(t, renamed, got)

	var activity struct {
		Entries []struct {
			Identifier int    `json:"identifier"`
			Type       string `json:"type"`
		} `json:"entries"`
	}
	call(t, ts, "get_recent_activity", map[string]any{"identifier": 42}, &activity)
	require.Len(t, activity.Entries, 3)
	types := make(map[string]bool)
	for _, entry := range activity.Entries {
		require.Equal(t, 42, entry.Identifier)
		types[entry.Type] = true
	}
	require.True(t, types["descriptor_registered"])
	require.True(t, types["descriptor_used"])
	require.True(t, types["descriptor_updated"])

	var deleted struct {
		Deleted bool `json:"deleted"`
	}
	call(t, ts, "delete_descriptor", map[string]any{"identifier": 42}, &deleted)
	require.True(t, deleted.Deleted)

	resp := rpcCall(t, ts, ts.Token, "get_descriptor", map[string]any{"identifier": 42})
	require.NotNil(t, resp.Error)
	require.Equal(t, -32000, resp.Error.Code)
	require.Equal(t, "DESCRIPTOR_NOT_FOUND", resp.Error.Data["code"])
}

func TestFunctional_ListOrdering(t *testing.T) {
	ts := testserver.New(t, "tenant1")

	call(t, ts, "register_descriptor", map[string]any{"identifier": 1, "name": "a", "used_count": 1, "last_used_date": "2024-03-01T00:00:00Z"}, nil)
	call(t, ts, "register_descriptor", map[string]any{"identifier": 2, "name": "b", "used_count": 9}, nil)
	call(t, ts, "register_descriptor", map[string]any{"identifier": 3, "name": "c", "used_count": 5, "last_used_date": "2024-05-01T00:00:00Z"}, nil)

	ids := func(order string) []int {
		var list struct {
			Descriptors []descriptorResult `json:"descriptors"`
		}
		call(t, ts, "list_descriptors", map[string]any{"order_by": order}, &list)
		out := make([]int, 0, len(list.Descriptors))
		for _, d := range list.Descriptors {
			out = append(out, d.Identifier)
		}
		return out
	}

	require.Equal(t, []int{1, 2, 3}, ids(""))
	require.Equal(t, []int{3, 1, 2}, ids("last_used"))
	require.Equal(t, []int{2, 3, 1}, ids("used_count"))

	resp := rpcCall(t, ts, ts.Token, "list_descriptors", map[string]any{"order_by": "name"})
	require.NotNil(t, resp.Error)
	require.Equal(t, -32602, resp.Error.Code)
	require.Equal(t, "INVALID_INPUT", resp.Error.Data["code"])
}

func TestFunctional_Errors(t *testing.T) {
	ts := testserver.New(t, "tenant1")

	call(t, ts, "register_descriptor", map[string]any{"identifier": 7}, nil)

	resp := rpcCall(t, ts, ts.Token, "register_descriptor", map[string]any{"identifier": 7})
	require.NotNil(t, resp.Error)
	require.Equal(t, "DESCRIPTOR_EXISTS", resp.Error.Data["code"])

	resp = rpcCall(t, ts, ts.Token, "register_descriptor", map[string]any{"identifier": 8, "last_used_date": "yesterday"})
	require.NotNil(t, resp.Error)
	require.Equal(t, -32602, resp.Error.Code)

	resp = rpcCall(t, ts, ts.Token, "record_use", map[string]any{"identifier": 99})
	require.NotNil(t, resp.Error)
	require.Equal(t, "DESCRIPTOR_NOT_FOUND", resp.Error.Data["code"])

	resp = rpcCall(t, ts, ts.Token, "create_project", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)
}

func TestFunctional_TenantIsolation(t *testing.T) {
	ts := testserver.New(t, "tenant1")
	otherToken := ts.AddAPIKey(t, "tenant2")

	call(t, ts, "register_descriptor", map[string]any{"identifier": 1, "name": "mine"}, nil)

	resp := rpcCall(t, ts, otherToken, "get_descriptor", map[string]any{"identifier": 1})
	require.NotNil(t, resp.Error)
	require.Equal(t, "DESCRIPTOR_NOT_FOUND", resp.Error.Data["code"])

	resp = rpcCall(t, ts, otherToken, "register_descriptor", map[string]any{"identifier": 1, "name": "theirs"})
	require.Nil(t, resp.Error, "identifiers are scoped per tenant")

	var got descriptorResult
	call(t, ts, "get_descriptor", map[string]any{"identifier": 1}, &got)
	require.Equal(t, "mine", got.Name)
}
