package vectorstore

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"picsema/internal/logger"
	"picsema/internal/model"
)

// qdrantContainer represents a Qdrant container for testing
type qdrantContainer struct {
	testcontainers.Container
	Host string
	Port string
}

// setupQdrantContainer sets up a Qdrant container for testing
func setupQdrantContainer(ctx context.Context) (*qdrantContainer, error) {
	// Get a random free port
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portStr := fmt.Sprintf("%d", port)
	portBindings := nat.PortMap{
		"6334/tcp": []nat.PortBinding{{HostPort: portStr}},
	}

	req := testcontainers.ContainerRequest{
		Image: "qdrant/qdrant:v1.11.0",
		Env: map[string]string{
			"QDRANT__SERVICE__GRPC_PORT": "6334",
		},
		ExposedPorts: []string{"6334/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForListeningPort("6334/tcp").WithStartupTimeout(60 * time.Second),
	}

	instance, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start qdrant container: %w", err)
	}

	host, err := instance.Host(ctx)
	if err != nil {
		_ = instance.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	mappedPort, err := instance.MappedPort(ctx, "6334")
	if err != nil {
		_ = instance.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}
	portStr = mappedPort.Port()

	if err := waitForQdrantReady(host, portStr, 30*time.Second); err != nil {
		_ = instance.Terminate(ctx)
		return nil, fmt.Errorf("qdrant container not ready: %w", err)
	}

	return &qdrantContainer{
		Container: instance,
		Host:      host,
		Port:      portStr,
	}, nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	addr, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func(addr net.Listener) {
		_ = addr.Close()
	}(addr)

	return addr.Addr().(*net.TCPAddr).Port, nil
}

// waitForQdrantReady attempts to connect to Qdrant until it's ready or times out
func waitForQdrantReady(host, port string, timeout time.Duration) error {
	startTime := time.Now()
	for {
		if time.Since(startTime) > timeout {
			return fmt.Errorf("timed out waiting for Qdrant to be ready after %s", timeout)
		}

		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), 2*time.Second)
		if err == nil {
			_ = conn.Close()
			// Additional wait to ensure the service is fully ready
			time.Sleep(2 * time.Second)
			return nil
		}

		time.Sleep(500 * time.Millisecond)
	}
}

func TestStoreAgainstQdrant(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	instance, err := setupQdrantContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := instance.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	t.Logf("Using Qdrant on %s:%s", instance.Host, instance.Port)

	portNum, err := strconv.Atoi(instance.Port)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Host = instance.Host
	cfg.Port = portNum
	cfg.Dim = 4
	cfg.BaseCollection = "it_images"

	log := &logger.Logger{Zap: zap.NewNop()}
	client, err := NewQdrantClient(cfg, log)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	store := NewStore(client, cfg, log)
	require.NoError(t, store.EnsureCollections(ctx, 4))

	// Idempotent on a second pass.
	require.NoError(t, store.EnsureCollections(ctx, 4))

	record := testRecord()
	record.GPS = &model.GPSCoordinates{Latitude: 48.1371, Longitude: 11.5754}
	record.LocationName = "munich, bavaria, germany"
	require.NoError(t, store.Upsert(ctx, record))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 4)
	for _, stat := range stats {
		assert.True(t, stat.Exists)
		assert.Equal(t, uint64(1), stat.Points, "collection %s", stat.Collection)
	}

	resp, err := store.Search(ctx, record.Embedding, model.AllMetrics(), 3)
	require.NoError(t, err)
	require.Empty(t, resp.Degraded)
	require.Len(t, resp.ByMetric, 4)
	for metric, results := range resp.ByMetric {
		require.Len(t, results, 1, "metric %s", metric)
		got := results[0].Record
		assert.Equal(t, record.ImageID, got.ImageID)
		assert.Equal(t, record.FileName, got.FileName)
		assert.Equal(t, record.AITags, got.AITags)
		require.NotNil(t, got.GPS)
		assert.InDelta(t, record.GPS.Latitude, got.GPS.Latitude, 1e-6)
	}

	require.NoError(t, store.Delete(ctx, record.ImageID))

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	for _, stat := range stats {
		assert.Equal(t, uint64(0), stat.Points, "collection %s", stat.Collection)
	}
}
