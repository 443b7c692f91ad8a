package catalog

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/internal/local"
	"github.com/pageza/drinkbook/backend/internal/model"
	"github.com/pageza/drinkbook/backend/internal/remote"
)

// EncodeFavorites renders ids as the persisted JSON array, sorted.
func EncodeFavorites(ids []string) string {
	sorted := append([]string{}, ids...)
	sort.Strings(sorted)
	b, _ := json.Marshal(sorted)
	return string(b)
}

// DecodeFavorites parses a persisted favorites blob.
func DecodeFavorites(raw string) ([]string, error) {
	ids := []string{}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Favorites is the local set of favorited recipe IDs. Membership changes
// are visible immediately; persistence runs in the background.
type Favorites struct {
	store  *local.Serialized
	logger *zap.Logger

	mu      sync.RWMutex
	ids     map[string]struct{}
	loading bool
	loaded  bool
	// pending holds the membership set by toggles made before Load finished.
	pending map[string]bool
}

// NewFavorites creates an unloaded set backed by store.
func NewFavorites(store *local.Serialized, logger *zap.Logger) *Favorites {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Favorites{
		store:   store,
		logger:  logger,
		ids:     map[string]struct{}{},
		pending: map[string]bool{},
		loading: true,
	}
}

// Load reads the persisted set. Only the first successful call reads; an
// absent or malformed blob leaves the set empty. Toggles made before Load
// finishes are applied on top of the stored set, which is then saved. If ctx
// is done before the read completes, the result is dropped and Load may be
// called again.
func (f *Favorites) Load(ctx context.Context) {
	f.mu.Lock()
	if f.loaded {
		f.mu.Unlock()
		return
	}
	f.loaded = true
	f.mu.Unlock()

	raw, ok, err := f.store.GetString(ctx, local.FavoritesKey)
	var ids []string
	switch {
	case err != nil:
		f.logger.Warn("failed to load favorites", zap.Error(err))
	case ok:
		ids, err = DecodeFavorites(raw)
		if err != nil {
			f.logger.Warn("stored favorites are malformed", zap.Error(err))
			ids = nil
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() != nil {
		f.loaded = false
		return
	}
	f.loading = false

	merged := make(map[string]struct{}, len(ids)+len(f.pending))
	for _, id := range ids {
		merged[id] = struct{}{}
	}
	for id, member := range f.pending {
		if member {
			merged[id] = struct{}{}
		} else {
			delete(merged, id)
		}
	}
	f.ids = merged
	if len(f.pending) > 0 {
		f.pending = map[string]bool{}
		f.persistLocked(context.WithoutCancel(ctx), "")
	}
}

// Toggle flips id's membership and returns the new membership.
func (f *Favorites) Toggle(ctx context.Context, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, had := f.ids[id]
	if had {
		delete(f.ids, id)
	} else {
		f.ids[id] = struct{}{}
	}

	if f.loading {
		f.pending[id] = !had
		return !had
	}
	f.persistLocked(ctx, id)
	return !had
}

// persistLocked saves the current set in the background. Reserving under
// f.mu keeps write order equal to toggle order.
func (f *Favorites) persistLocked(ctx context.Context, id string) {
	blob := EncodeFavorites(f.idsLocked())
	f.store.Go(context.WithoutCancel(ctx), local.FavoritesKey, blob, func(applied bool, err error) {
		if err != nil {
			f.logger.Warn("failed to save favorites", zap.String("recipe_id", id), zap.Error(err))
			return
		}
		if !applied {
			f.logger.Debug("superseded favorites write dropped", zap.String("recipe_id", id))
		}
	})
}

// Wait blocks until every write started by Toggle has finished.
func (f *Favorites) Wait() {
	f.store.Wait()
}

func (f *Favorites) Has(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ids[id]
	return ok
}

// IDs returns the members, sorted.
func (f *Favorites) IDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := f.idsLocked()
	sort.Strings(ids)
	return ids
}

func (f *Favorites) idsLocked() []string {
	ids := make([]string, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	return ids
}

func (f *Favorites) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// Loading is true until Load completes.
func (f *Favorites) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

// FavoriteRecipes loads the favorited records, most popular first.
func FavoriteRecipes(ctx context.Context, store remote.Store, favs *Favorites) ([]model.Recipe, error) {
	ids := favs.IDs()
	if len(ids) == 0 {
		return []model.Recipe{}, nil
	}
	recipes, err := store.QueryRecipes(ctx, remote.ByIDs(ids))
	if err != nil {
		return nil, err
	}
	SortByPopularity(recipes)
	return recipes, nil
}
