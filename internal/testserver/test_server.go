// Package testserver runs the HTTP JSON-RPC stack against an in-memory
// database for end-to-end tests.
package testserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rpggio/synchrokit/internal/domain/activity"
	"github.com/rpggio/synchrokit/internal/domain/descriptor"
	"github.com/rpggio/synchrokit/internal/mcp"
	"github.com/rpggio/synchrokit/internal/sqlite"
	"github.com/rpggio/synchrokit/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Keys     *sqlite.APIKeyRepository
	Token    string
	TenantID string
}

// Option adjusts the services built by New.
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock fixes the time stamped by record_use.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// New starts a server with bearer auth enabled and one API key issued to tenantID.
func New(t *testing.T, tenantID string, opts ...Option) *TestServer {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// A named shared-cache DSN keeps one database across the pool's connections.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	var descOpts []descriptor.Option
	if o.clock != nil {
		descOpts = append(descOpts, descriptor.WithClock(o.clock))
	}

	handler := mcp.NewHandler(mcp.Services{
		Descriptors: descriptor.NewService(sqlite.NewDescriptorRepository(db), activitySvc, nil, descOpts...),
		Activity:    activitySvc,
	})

	keys := sqlite.NewAPIKeyRepository(db)
	server := httptest.NewServer(transport.NewServer(handler, transport.AuthMiddleware(keys), nil))

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Keys:     keys,
		TenantID: tenantID,
	}
	ts.Token = ts.AddAPIKey(t, tenantID)

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// AddAPIKey issues another token, possibly for a different tenant.
func (ts *TestServer) AddAPIKey(t *testing.T, tenantID string) string {
	t.Helper()
	token, err := ts.Keys.Create(context.Background(), tenantID, "test")
	require.NoError(t, err)
	return token
}
