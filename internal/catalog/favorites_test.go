package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/internal/catalog"
	"github.com/pageza/drinkbook/backend/internal/local"
	"github.com/pageza/drinkbook/backend/internal/remote"
)

func newFavorites(t *testing.T, store local.Store) *catalog.Favorites {
	t.Helper()
	favs := catalog.NewFavorites(local.NewSerialized(store), zap.NewNop())
	favs.Load(context.Background())
	return favs
}

func persistedFavorites(t *testing.T, store local.Store) []string {
	t.Helper()
	raw, ok, err := store.GetString(context.Background(), local.FavoritesKey)
	require.NoError(t, err)
	require.True(t, ok)
	ids, err := catalog.DecodeFavorites(raw)
	require.NoError(t, err)
	return ids
}

func TestToggleTwiceRestoresEmptySet(t *testing.T) {
	defer goleak.VerifyNone(t)
	store := local.NewMemoryStore()
	favs := newFavorites(t, store)
	ctx := context.Background()

	assert.True(t, favs.Toggle(ctx, "abc"))
	favs.Wait()
	assert.Equal(t, []string{"abc"}, persistedFavorites(t, store))

	assert.False(t, favs.Toggle(ctx, "abc"))
	favs.Wait()

	assert.Equal(t, 0, favs.Len())
	assert.False(t, favs.Has("abc"))
	assert.Equal(t, []string{}, persistedFavorites(t, store))

	raw, _, err := store.GetString(ctx, local.FavoritesKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestRapidTogglesPersistLastState(t *testing.T) {
	defer goleak.VerifyNone(t)
	store := local.NewMemoryStore()
	favs := newFavorites(t, store)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		favs.Toggle(ctx, "abc")
		favs.Toggle(ctx, "def")
	}
	favs.Toggle(ctx, "ghi")
	favs.Wait()

	assert.Equal(t, []string{"ghi"}, favs.IDs())
	assert.Equal(t, []string{"ghi"}, persistedFavorites(t, store))
}

func TestConcurrentTogglesAreConsistent(t *testing.T) {
	defer goleak.VerifyNone(t)
	store := local.NewMemoryStore()
	favs := newFavorites(t, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			favs.Toggle(ctx, id)
		}(id)
	}
	wg.Wait()
	favs.Wait()

	assert.Equal(t, favs.IDs(), persistedFavorites(t, store))
	assert.Equal(t, 6, favs.Len())
}

func TestLoadFavorites(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		favs := newFavorites(t, local.NewMemoryStore())
		assert.False(t, favs.Loading())
		assert.Equal(t, 0, favs.Len())
	})

	t.Run("stored", func(t *testing.T) {
		store := local.NewMemoryStore()
		require.NoError(t, store.SetString(ctx, local.FavoritesKey, `["r2","r1"]`))
		favs := newFavorites(t, store)
		assert.Equal(t, []string{"r1", "r2"}, favs.IDs())
		assert.True(t, favs.Has("r2"))
	})

	t.Run("malformed", func(t *testing.T) {
		store := local.NewMemoryStore()
		require.NoError(t, store.SetString(ctx, local.FavoritesKey, `{not json`))
		favs := newFavorites(t, store)
		assert.False(t, favs.Loading())
		assert.Equal(t, 0, favs.Len())
	})

	t.Run("only once", func(t *testing.T) {
		store := local.NewMemoryStore()
		require.NoError(t, store.SetString(ctx, local.FavoritesKey, `["r1"]`))
		favs := newFavorites(t, store)
		require.NoError(t, store.SetString(ctx, local.FavoritesKey, `["r1","r2"]`))
		favs.Load(ctx)
		assert.Equal(t, []string{"r1"}, favs.IDs())
	})
}

func TestToggleBeforeLoadMergesWithStoredSet(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	store := local.NewMemoryStore()
	require.NoError(t, store.SetString(ctx, local.FavoritesKey, `["a","b","d"]`))

	favs := catalog.NewFavorites(local.NewSerialized(store), zap.NewNop())
	assert.True(t, favs.Toggle(ctx, "c"))
	assert.True(t, favs.Toggle(ctx, "d"))
	favs.Wait()
	assert.Equal(t, []string{"a", "b", "d"}, persistedFavorites(t, store), "nothing saved before load")

	favs.Load(ctx)
	favs.Wait()
	assert.Equal(t, []string{"a", "b", "c", "d"}, favs.IDs())
	assert.Equal(t, []string{"a", "b", "c", "d"}, persistedFavorites(t, store))

	assert.False(t, favs.Toggle(ctx, "a"))
	favs.Wait()
	assert.Equal(t, []string{"b", "c", "d"}, persistedFavorites(t, store))
}

func TestCancelledLoadCanBeRetried(t *testing.T) {
	ctx := context.Background()
	store := local.NewMemoryStore()
	require.NoError(t, store.SetString(ctx, local.FavoritesKey, `["a"]`))
	favs := catalog.NewFavorites(local.NewSerialized(store), zap.NewNop())
	favs.Toggle(ctx, "b")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	favs.Load(cancelled)
	assert.True(t, favs.Loading())

	favs.Load(ctx)
	favs.Wait()
	assert.False(t, favs.Loading())
	assert.Equal(t, []string{"a", "b"}, favs.IDs())
	assert.Equal(t, []string{"a", "b"}, persistedFavorites(t, store))
}

func TestLoadingUntilLoaded(t *testing.T) {
	favs := catalog.NewFavorites(local.NewSerialized(local.NewMemoryStore()), zap.NewNop())
	assert.True(t, favs.Loading())
	favs.Load(context.Background())
	assert.False(t, favs.Loading())
}

type failingStore struct{}

func (failingStore) GetString(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk unavailable")
}

func (failingStore) SetString(context.Context, string, string) error {
	return errors.New("disk unavailable")
}

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	defer goleak.VerifyNone(t)
	favs := newFavorites(t, failingStore{})

	assert.True(t, favs.Toggle(context.Background(), "abc"))
	favs.Wait()
	assert.True(t, favs.Has("abc"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ids := []string{"c", "a", "b"}
	decoded, err := catalog.DecodeFavorites(catalog.EncodeFavorites(ids))
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, decoded)

	decoded, err = catalog.DecodeFavorites(catalog.EncodeFavorites(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{}, decoded)

	decoded, err = catalog.DecodeFavorites("null")
	require.NoError(t, err)
	assert.Equal(t, []string{}, decoded)

	_, err = catalog.DecodeFavorites("[1,2]")
	assert.Error(t, err)
}

func TestFavoriteRecipesByPopularity(t *testing.T) {
	store := newStore(t)
	list := catalog.NewRecipeList(store, zap.NewNop())
	favs := newFavorites(t, local.NewMemoryStore())
	ctx := context.Background()

	empty, err := catalog.FavoriteRecipes(ctx, store, favs)
	require.NoError(t, err)
	assert.Empty(t, empty)

	mojito, err := list.Add(ctx, drink("Mojito", "Cocktail"))
	require.NoError(t, err)
	negroni, err := list.Add(ctx, drink("Negroni", "Cocktail"))
	require.NoError(t, err)
	_, err = list.Add(ctx, drink("Daiquiri", "Cocktail"))
	require.NoError(t, err)

	favs.Toggle(ctx, mojito.ID)
	favs.Toggle(ctx, negroni.ID)
	favs.Wait()

	_, err = list.IncrementPopularity(ctx, negroni.ID)
	require.NoError(t, err)

	recipes, err := catalog.FavoriteRecipes(ctx, store, favs)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, []string{negroni.ID, mojito.ID}, []string{recipes[0].ID, recipes[1].ID})

	_, err = catalog.FavoriteRecipes(ctx, remote.Unavailable{}, favs)
	assert.ErrorIs(t, err, remote.ErrNotConnected)
}
