package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()

	store, err := NewLocalStorage(Config{
		BasePath: t.TempDir(),
		BaseURL:  "/api/v1/files",
	})
	require.NoError(t, err)
	return store
}

func TestLocalStorageSaveAndGet(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	err := store.Save(ctx, "chat/order-1/user-1/1.jpg", strings.NewReader("image-bytes"), "image/jpeg")
	require.NoError(t, err)

	exists, err := store.Exists(ctx, "chat/order-1/user-1/1.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	reader, err := store.Get(ctx, "chat/order-1/user-1/1.jpg")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestLocalStorageDelete(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a/b.png", strings.NewReader("x"), "image/png"))
	require.NoError(t, store.Delete(ctx, "a/b.png"))

	exists, err := store.Exists(ctx, "a/b.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorageGetMissingFile(t *testing.T) {
	store := newTestLocalStorage(t)

	_, err := store.Get(context.Background(), "nope.jpg")
	assert.Error(t, err)
}

func TestLocalStorageURLs(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	url, err := store.GetURL(ctx, "chat/order-1/pic.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/files/chat/order-1/pic.jpg", url)

	// Local files are public; the signed URL is just the plain URL.
	signed, err := store.GetSignedURL(ctx, "chat/order-1/pic.jpg", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, url, signed)
}
