package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/entitydesk/core"
	"github.com/hupe1980/entitydesk/internal/testutil"
)

// brokenStore simulates an unavailable tier: every operation fails.
type brokenStore struct{ calls int }

var errDown = errors.New("connection refused")

func (b *brokenStore) Load(context.Context, string, string) (*core.Session, error) {
	b.calls++
	return nil, errDown
}

func (b *brokenStore) Save(context.Context, *core.Session) error {
	b.calls++
	return errDown
}

func (b *brokenStore) Delete(context.Context, string, string) error {
	b.calls++
	return errDown
}

func TestFailoverServesFromFallback(t *testing.T) {
	ctx := context.Background()
	fallback := NewInMemoryStore()
	defer fallback.Close()
	store := NewFailoverStore(&brokenStore{}, fallback)

	sess := testutil.NewSessionBuilder("ag-1", "+49123").
		Focused("ent-1", "SC1", "Summer Campaign").
		Build()
	require.NoError(t, store.Save(ctx, sess), "primary failure is invisible to the caller")

	loaded, err := store.Load(ctx, "ag-1", "+49123")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, sess.State, loaded.State)
	assert.Equal(t, sess.Focus, loaded.Focus)
	assert.Equal(t, sess.Identity, loaded.Identity)
}

func TestFailoverHealthyPrimarySkipsFallback(t *testing.T) {
	ctx := context.Background()
	primary := NewInMemoryStore()
	defer primary.Close()
	fallback := NewInMemoryStore()
	defer fallback.Close()
	store := NewFailoverStore(primary, fallback)

	sess := testutil.NewSessionBuilder("ag-1", "+49123").Build()
	require.NoError(t, store.Save(ctx, sess))

	assert.Equal(t, 1, primary.Len())
	assert.Equal(t, 0, fallback.Len())
}

func TestFailoverPrimaryMissIsNotFailure(t *testing.T) {
	ctx := context.Background()
	primary := NewInMemoryStore()
	defer primary.Close()
	fallback := NewInMemoryStore()
	defer fallback.Close()
	// The fallback holding a stale copy must not shadow a primary miss.
	require.NoError(t, fallback.Save(ctx, testutil.NewSessionBuilder("ag-1", "+49123").Build()))

	store := NewFailoverStore(primary, fallback)
	loaded, err := store.Load(ctx, "ag-1", "+49123")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFailoverBothTiersDown(t *testing.T) {
	ctx := context.Background()
	store := NewFailoverStore(&brokenStore{}, &brokenStore{})

	_, err := store.Load(ctx, "ag-1", "+49123")
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)

	err = store.Save(ctx, testutil.NewSessionBuilder("ag-1", "+49123").Build())
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)

	err = store.Delete(ctx, "ag-1", "+49123")
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}

func TestFailoverDeleteClearsBothTiers(t *testing.T) {
	ctx := context.Background()
	primary := NewInMemoryStore()
	defer primary.Close()
	fallback := NewInMemoryStore()
	defer fallback.Close()

	sess := testutil.NewSessionBuilder("ag-1", "+49123").Build()
	require.NoError(t, primary.Save(ctx, sess))
	require.NoError(t, fallback.Save(ctx, sess))

	store := NewFailoverStore(primary, fallback)
	require.NoError(t, store.Delete(ctx, "ag-1", "+49123"))

	assert.Equal(t, 0, primary.Len())
	assert.Equal(t, 0, fallback.Len())
}
