package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalProvider(t *testing.T) *LocalProvider {
	t.Helper()
	provider, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)
	return provider
}

func TestLocalProviderPutAndOpen(t *testing.T) {
	provider := newTestLocalProvider(t)
	ctx := context.Background()

	n, err := provider.Put(ctx, "key1", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("payload")), n)

	body, err := provider.Open(ctx, "key1")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestLocalProviderExists(t *testing.T) {
	provider := newTestLocalProvider(t)
	ctx := context.Background()

	exists, err := provider.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = provider.Put(ctx, "present", strings.NewReader("x"))
	require.NoError(t, err)

	exists, err = provider.Exists(ctx, "present")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalProviderDeleteIsIdempotent(t *testing.T) {
	provider := newTestLocalProvider(t)
	ctx := context.Background()

	_, err := provider.Put(ctx, "key1", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, provider.Delete(ctx, "key1"))
	require.NoError(t, provider.Delete(ctx, "key1"))

	exists, err := provider.Exists(ctx, "key1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalProviderList(t *testing.T) {
	provider := newTestLocalProvider(t)
	ctx := context.Background()

	keys, err := provider.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, key := range []string{"a", "b", "c"} {
		_, err := provider.Put(ctx, key, strings.NewReader(key))
		require.NoError(t, err)
	}

	keys, err = provider.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)
}

func TestLocalProviderResistsTraversal(t *testing.T) {
	provider := newTestLocalProvider(t)
	ctx := context.Background()

	_, err := provider.Put(ctx, "../escape", strings.NewReader("x"))
	require.NoError(t, err)

	// The key collapses to its base name inside the payload directory.
	exists, err := provider.Exists(ctx, "escape")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNewProviderUnsupported(t *testing.T) {
	_, err := NewProvider(Config{Provider: "tape"})
	assert.Error(t, err)
}
