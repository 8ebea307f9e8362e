package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutGet(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "result_pfail0.1.json", strings.NewReader(`{"ok":true}`)))

	rc, err := store.Get(ctx, "result_pfail0.1.json")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestLocalStore_PutOverwrites(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.json", strings.NewReader("one")))
	require.NoError(t, store.Put(ctx, "a.json", strings.NewReader("two")))

	rc, err := store.Get(ctx, "a.json")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "two", string(data))
}

func TestLocalStore_GetMissing(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Get(context.Background(), "nope.json")
	assert.Error(t, err)
}

func TestLocalStore_ListSortedAndFiltered(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "b.json", strings.NewReader("{}")))
	require.NoError(t, store.Put(ctx, "a.json", strings.NewReader("{}")))
	require.NoError(t, store.Put(ctx, "notes.txt", strings.NewReader("skip me")))

	keys, err := store.List(ctx, ".json")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json"}, keys)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(t.TempDir() + "/does-not-exist")
	keys, err := store.List(context.Background(), ".json")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
