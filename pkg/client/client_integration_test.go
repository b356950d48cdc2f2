//go:build integration

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"dnogen/pkg/cache"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestIntegration_PageCacheFlow(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	requestsMade := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestsMade++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"npa": "201", "nxx": "555", "block_id": "0", "status": "assigned"}], "total_unique": 1}`))
	}))
	defer server.Close()

	pages := cache.NewManager(redisClient, time.Hour)
	client, err := New(Config{
		APIToken: "integration-token",
		BaseURL:  server.URL,
		Retry:    fastRetry(),
		Pages:    pages,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	var first testEnvelope
	if err := client.GetJSON(ctx, "npa,nxx,block_id/npa=201", nil, &first); err != nil {
		t.Fatalf("First request failed: %v", err)
	}
	if requestsMade != 1 {
		t.Errorf("After request 1: requestsMade = %d, want 1", requestsMade)
	}

	// The page is now in Redis.
	entry, err := pages.Get(ctx, "npa,nxx,block_id/npa=201")
	if err != nil {
		t.Fatalf("Cache lookup failed: %v", err)
	}
	if len(entry.Body) == 0 {
		t.Error("Cached entry has empty body")
	}

	var second testEnvelope
	if err := client.GetJSON(ctx, "npa,nxx,block_id/npa=201", nil, &second); err != nil {
		t.Fatalf("Second request failed: %v", err)
	}
	if requestsMade != 1 {
		t.Errorf("After request 2: requestsMade = %d, want 1 (served from cache)", requestsMade)
	}
	if len(second.Data) != 1 {
		t.Errorf("Cached decode returned %d rows, want 1", len(second.Data))
	}
}

func TestIntegration_PageCacheExpiry(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	requestsMade := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestsMade++
		w.Write([]byte(`{"data": [], "total_unique": 0}`))
	}))
	defer server.Close()

	client, err := New(Config{
		APIToken: "integration-token",
		BaseURL:  server.URL,
		Retry:    fastRetry(),
		Pages:    cache.NewManager(redisClient, 1*time.Second),
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	var env testEnvelope

	if err := client.GetJSON(ctx, "npa,nxx/npa=212", nil, &env); err != nil {
		t.Fatalf("First request failed: %v", err)
	}

	// Let the Redis TTL lapse so the next call goes back to the feed.
	time.Sleep(2 * time.Second)

	if err := client.GetJSON(ctx, "npa,nxx/npa=212", nil, &env); err != nil {
		t.Fatalf("Second request failed: %v", err)
	}
	if requestsMade != 2 {
		t.Errorf("requestsMade = %d, want 2 (expired entry refetched)", requestsMade)
	}
}
