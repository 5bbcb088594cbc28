package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQdrantURL(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		host    string
		port    int
		tls     bool
		wantErr bool
	}{
		{
			name:   "https cloud URL with REST port",
			rawURL: "https://xyz.cloud.qdrant.io:6333",
			host:   "xyz.cloud.qdrant.io",
			port:   6334, // REST 6333 → gRPC 6334
			tls:    true,
		},
		{
			name:   "https cloud URL with gRPC port",
			rawURL: "https://xyz.cloud.qdrant.io:6334",
			host:   "xyz.cloud.qdrant.io",
			port:   6334,
			tls:    true,
		},
		{
			name:   "http local URL",
			rawURL: "http://localhost:6333",
			host:   "localhost",
			port:   6334,
			tls:    false,
		},
		{
			name:   "http no port defaults to 6334",
			rawURL: "http://qdrant.internal",
			host:   "qdrant.internal",
			port:   6334,
			tls:    false,
		},
		{
			name:   "custom port preserved",
			rawURL: "https://qdrant.example.com:9334",
			host:   "qdrant.example.com",
			port:   9334,
			tls:    true,
		},
		{
			name:    "empty URL",
			rawURL:  "",
			wantErr: true,
		},
		{
			name:    "no scheme no host",
			rawURL:  "not-a-url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, tls, err := parseQdrantURL(tt.rawURL)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
			assert.Equal(t, tt.tls, tls)
		})
	}
}

// newTestQdrantIndex creates a QdrantIndex connected to a local address.
// The connection may succeed (gRPC lazy connects) even if no server is running,
// but actual RPCs will fail. This is sufficient for testing early-return paths,
// error handling, and caching logic.
func newTestQdrantIndex(t *testing.T) *QdrantIndex {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(nil, nil))
	idx, err := NewQdrantIndex(QdrantConfig{
		URL:        "http://localhost:16334", // Non-standard port, no server running.
		Collection: "test_collection",
		Dims:       1024,
	}, logger)
	require.NoError(t, err, "NewQdrantIndex should succeed (gRPC is lazy-connect)")
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestNewQdrantIndex_Valid(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(nil, nil))

	idx, err := NewQdrantIndex(QdrantConfig{
		URL:        "http://localhost:6333",
		Collection: "ticketassign_tickets",
		Dims:       1024,
	}, logger)

	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Equal(t, "ticketassign_tickets", idx.collection)
	assert.Equal(t, uint64(1024), idx.dims)
	assert.NotNil(t, idx.client)

	_ = idx.Close()
}

func TestNewQdrantIndex_InvalidURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(nil, nil))

	_, err := NewQdrantIndex(QdrantConfig{
		URL:        "",
		Collection: "ticketassign_tickets",
		Dims:       1024,
	}, logger)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid qdrant URL")
}

func TestNewQdrantIndex_HTTPSConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(nil, nil))

	idx, err := NewQdrantIndex(QdrantConfig{
		URL:        "https://qdrant.example.com:6333",
		APIKey:     "test-api-key",
		Collection: "my_collection",
		Dims:       768,
	}, logger)

	// This may fail if the qdrant client does TLS handshake eagerly,
	// but typically gRPC connects lazily.
	if err != nil {
		assert.Contains(t, err.Error(), "connect to qdrant")
		return
	}

	require.NotNil(t, idx)
	assert.Equal(t, "my_collection", idx.collection)
	assert.Equal(t, uint64(768), idx.dims)

	_ = idx.Close()
}

func TestQdrantUpsert_EmptyPoints(t *testing.T) {
	idx := newTestQdrantIndex(t)

	err := idx.Upsert(context.Background(), nil)
	assert.NoError(t, err)

	err = idx.Upsert(context.Background(), []Point{})
	assert.NoError(t, err)
}

func TestQdrantDeleteByIDs_EmptyIDs(t *testing.T) {
	idx := newTestQdrantIndex(t)

	err := idx.DeleteByIDs(context.Background(), nil)
	assert.NoError(t, err)

	err = idx.DeleteByIDs(context.Background(), []string{})
	assert.NoError(t, err)
}

func TestQdrantHealthy_CachesResultForFiveSeconds(t *testing.T) {
	idx := newTestQdrantIndex(t)

	idx.lastErr = nil
	idx.lastCheck = time.Now()

	// Cache is fresh, so Healthy should return the cached nil without a real
	// gRPC call (which would otherwise fail since no server is running).
	err := idx.Healthy(context.Background())
	assert.NoError(t, err, "cached healthy result should be returned from the fast path")
}

func TestQdrantHealthy_ExpiredCacheHitsServer(t *testing.T) {
	idx := newTestQdrantIndex(t)

	idx.lastErr = nil
	idx.lastCheck = time.Now().Add(-10 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := idx.Healthy(ctx)
	require.Error(t, err, "expired cache should trigger a real health check, which fails without a server")
	assert.Contains(t, err.Error(), "qdrant unhealthy")
}

func TestQdrantClose(t *testing.T) {
	idx := newTestQdrantIndex(t)

	err := idx.Close()
	assert.NoError(t, err)
}

func TestQdrantSearch_FailsWithoutServer(t *testing.T) {
	idx := newTestQdrantIndex(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	embedding := make([]float32, 1024)
	results, err := idx.Search(ctx, embedding, Filters{}, 10)

	require.Error(t, err, "search should fail without a running Qdrant server")
	assert.Contains(t, err.Error(), "qdrant query")
	assert.Nil(t, results)
}

func TestQdrantUpsert_FailsWithoutServer(t *testing.T) {
	idx := newTestQdrantIndex(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	points := []Point{{
		TicketID:      "ticket-1",
		Category:      "billing",
		AssigneeEmail: "ravi@example.com",
		ResolvedAt:    time.Now(),
		Embedding:     make([]float32, 1024),
	}}

	err := idx.Upsert(ctx, points)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qdrant upsert")
}

func TestQdrantEnsureCollection_FailsWithoutServer(t *testing.T) {
	idx := newTestQdrantIndex(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := idx.EnsureCollection(ctx)
	require.Error(t, err)
}
