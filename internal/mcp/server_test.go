package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/synchrokit/internal/domain/activity"
	"github.com/rpggio/synchrokit/internal/domain/descriptor"
	"github.com/rpggio/synchrokit/internal/mcp"
	"github.com/rpggio/synchrokit/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, now time.Time) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	activityRepo := sqlite.NewActivityRepository(db)
	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Descriptors: descriptor.NewService(sqlite.NewDescriptorRepository(db), activityRepo, nil,
				descriptor.WithClock(func() time.Time { return now })),
			Activity: activity.NewService(activityRepo, nil),
		},
	})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return session
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) *sdkmcp.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	if out != nil && !result.IsError {
		text, ok := result.Content[0].(*sdkmcp.TextContent)
		require.True(t, ok, "expected text content")
		require.NoError(t, json.Unmarshal([]byte(text.Text), out))
	}
	return result
}

func TestServer_ListsTools(t *testing.T) {
	session := connect(t, time.Now())

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, name := range []string{
		"register_descriptor",
		"get_descriptor",
		"list_descriptors",
		"update_descriptor",
		"record_use",
		"delete_descriptor",
		"get_recent_activity",
	} {
		require.True(t, names[name], "missing tool %s", name)
	}

	initResult := session.InitializeResult()
	require.NotNil(t, initResult)
	require.Equal(t, "synchrokit", initResult.ServerInfo.Name)
}

func TestServer_DescriptorLifecycle(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	session := connect(t, now)

	var desc mcp.DescriptorResponse
	callTool(t, session, "register_descriptor", map[string]any{
		"identifier":     7,
		"name":           "Camera",
		"last_used_date": "2024-01-01T00:00:00Z",
		"used_count":     3,
	}, &desc)
	require.Equal(t, mcp.DescriptorResponse{
		Identifier:   7,
		Name:         "Camera",
		LastUsedDate: "2024-01-01T00:00:00Z",
		UsedCount:    3,
	}, desc)

	callTool(t, session, "record_use", map[string]any{"identifier": 7}, &desc)
	require.Equal(t, 4, desc.UsedCount)
	require.Equal(t, "2024-06-01T12:00:00Z", desc.LastUsedDate)

	callTool(t, session, "update_descriptor", map[string]any{"identifier": 7, "used_count": -1}, &desc)
	require.Equal(t, -1, desc.UsedCount)
	require.Equal(t, "Camera", desc.Name)

	var list mcp.ListDescriptorsResponse
	callTool(t, session, "list_descriptors", map[string]any{"order_by": "last_used"}, &list)
	require.Len(t, list.Descriptors, 1)

	var activities mcp.ActivityListResponse
	callTool(t, session, "get_recent_activity", map[string]any{"identifier": 7}, &activities)
	require.Len(t, activities.Entries, 3)

	var deleted mcp.DeleteDescriptorResponse
	callTool(t, session, "delete_descriptor", map[string]any{"identifier": 7}, &deleted)
	require.True(t, deleted.Deleted)

	result := callTool(t, session, "get_descriptor", map[string]any{"identifier": 7}, nil)
	require.True(t, result.IsError)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	require.Contains(t, text.Text, "DESCRIPTOR_NOT_FOUND")
}

func TestServer_DuplicateRegistration(t *testing.T) {
	session := connect(t, time.Now())

	callTool(t, session, "register_descriptor", map[string]any{"identifier": 1}, nil)
	result := callTool(t, session, "register_descriptor", map[string]any{"identifier": 1}, nil)
	require.True(t, result.IsError)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	require.Contains(t, text.Text, "DESCRIPTOR_EXISTS")
}

func TestServer_DocResources(t *testing.T) {
	session := connect(t, time.Now())
	ctx := context.Background()

	require.Contains(t, session.InitializeResult().Instructions, "synchrokit://docs/index")

	resources, err := session.ListResources(ctx, nil)
	require.NoError(t, err)

	uris := make(map[string]*sdkmcp.Resource, len(resources.Resources))
	for _, r := range resources.Resources {
		uris[r.URI] = r
	}
	for _, uri := range []string{"synchrokit://docs/index", "synchrokit://docs/descriptors"} {
		r, ok := uris[uri]
		require.True(t, ok, "missing doc resource %s", uri)
		require.Equal(t, "text/markdown", r.MIMEType)
		require.Greater(t, r.Size, int64(0))
	}

	read, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "synchrokit://docs/descriptors"})
	require.NoError(t, err)
	require.Len(t, read.Contents, 1)
	require.Contains(t, read.Contents[0].Text, "record_use")
}

func TestServer_RecentActivitySince(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	session := connect(t, now)

	callTool(t, session, "register_descriptor", map[string]any{"identifier": 1}, nil)

	var resp mcp.ActivityListResponse
	callTool(t, session, "get_recent_activity", map[string]any{"since": "2024-06-01T12:00:00Z"}, &resp)
	require.Len(t, resp.Entries, 1)

	callTool(t, session, "get_recent_activity", map[string]any{"since": "2024-06-01T12:00:01Z"}, &resp)
	require.Empty(t, resp.Entries)

	result := callTool(t, session, "get_recent_activity", map[string]any{"since": "noon"}, nil)
	require.True(t, result.IsError)
}
