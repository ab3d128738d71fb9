package blob_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolayk812/storefront/internal/blob"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestFileStore(t *testing.T) {
	dir := t.TempDir()

	store, err := blob.NewFileStore(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	testStore(t, store)

	entries, err := os.ReadDir(filepath.Join(dir, "blobs"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "image", entries[0].Name())
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	store, err := blob.NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", ".", "..", "a/b", `a\b`} {
		t.Run(fmt.Sprintf("key[%s]", key), func(t *testing.T) {
			err := store.Put(t.Context(), key, []byte("x"))
			assert.Error(t, err)

			_, err = store.Get(t.Context(), key)
			assert.Error(t, err)
			assert.NotErrorIs(t, err, blob.ErrNotFound)
		})
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, blob.NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	ctx := t.Context()

	addr, err := startRedis(ctx, t)
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		assert.NoError(t, client.Close())
	})

	testStore(t, blob.NewRedisStore(client, "storefront:"))

	keys, err := client.Keys(ctx, "storefront:*").Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"storefront:image"}, keys)
}

func testStore(t *testing.T, store blob.Store) {
	t.Helper()
	ctx := t.Context()

	_, err := store.Get(ctx, "image")
	require.ErrorIs(t, err, blob.ErrNotFound)

	require.NoError(t, store.Put(ctx, "image", []byte("first")))
	require.NoError(t, store.Put(ctx, "image", []byte("second")))

	got, err := store.Get(ctx, "image")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func startRedis(ctx context.Context, t *testing.T) (string, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.4-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("testcontainers.GenericContainer: %w", err)
	}
	testcontainers.CleanupContainer(t, container)

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		return "", fmt.Errorf("container.Endpoint: %w", err)
	}

	return endpoint, nil
}
