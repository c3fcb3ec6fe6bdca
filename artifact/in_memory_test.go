package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/entitydesk/core"
)

var _ core.ArtifactStore = (*InMemoryStore)(nil)

func TestInMemoryStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Save(ctx, "+49123", "tok-1", "report.pdf", []byte("pdf-bytes")))

	a, err := store.Get(ctx, "+49123", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", a.Token)
	assert.Equal(t, "report.pdf", a.Name)
	assert.Equal(t, []byte("pdf-bytes"), a.Data)
	assert.False(t, a.StagedAt.IsZero())

	_, err = store.Get(ctx, "+49123", "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = store.Get(ctx, "+49999", "tok-1")
	assert.ErrorIs(t, err, core.ErrNotFound, "tokens are scoped per identity")
}

func TestInMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	data := []byte("original")
	require.NoError(t, store.Save(ctx, "+49123", "tok-1", "a.bin", data))
	data[0] = 'X'

	a, err := store.Get(ctx, "+49123", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), a.Data, "save copies the input buffer")

	a.Data[0] = 'Y'
	again, err := store.Get(ctx, "+49123", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again.Data, "get returns a copy")
}

func TestInMemoryStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Save(ctx, "+49123", "tok-1", "a.bin", []byte("a")))
	require.NoError(t, store.Save(ctx, "+49123", "tok-2", "b.bin", []byte("b")))

	tokens, err := store.List(ctx, "+49123")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tok-1", "tok-2"}, tokens)

	require.NoError(t, store.Delete(ctx, "+49123", "tok-1"))
	_, err = store.Get(ctx, "+49123", "tok-1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "+49123", "missing"), "deleting absent token is not an error")
}

func TestInMemoryStoreEvictsOldest(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(func(o *Options) { o.MaxPerIdentity = 2 })

	require.NoError(t, store.Save(ctx, "+49123", "tok-1", "a.bin", []byte("a")))
	require.NoError(t, store.Save(ctx, "+49123", "tok-2", "b.bin", []byte("b")))
	require.NoError(t, store.Save(ctx, "+49123", "tok-3", "c.bin", []byte("c")))

	tokens, err := store.List(ctx, "+49123")
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
	assert.NotContains(t, tokens, "tok-1", "oldest artifact is evicted first")
}
