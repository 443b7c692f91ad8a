package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/drinkbook/backend/internal/local"
	"github.com/pageza/drinkbook/backend/internal/model"
	"github.com/pageza/drinkbook/backend/internal/remote"
)

// Deps are the capabilities an App is built from.
type Deps struct {
	Remote remote.Store
	Local  local.Store
	// OSScheme seeds the theme when nothing is stored.
	OSScheme ColorScheme
	Logger   *zap.Logger
}

// App is the context handed to every screen.
type App struct {
	Remote    remote.Store
	Recipes   *RecipeList
	Favorites *Favorites
	Theme     *Theme

	mu         sync.RWMutex
	categories []model.Category
}

// New builds an App and loads the local state (favorites and theme).
func New(ctx context.Context, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := deps.Remote
	if store == nil {
		store = remote.Unavailable{}
	}
	persisted := local.NewSerialized(deps.Local)

	app := &App{
		Remote:    store,
		Recipes:   NewRecipeList(store, logger.Named("recipes")),
		Favorites: NewFavorites(persisted, logger.Named("favorites")),
		Theme:     LoadTheme(ctx, persisted, deps.OSScheme, logger.Named("theme")),
	}
	app.Favorites.Load(ctx)
	return app
}

// Home loads the recipe list and the categories concurrently. The recipe
// list records its own failure; the first error is returned. One failing
// load does not cancel the other.
func (a *App) Home(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return a.Recipes.Fetch(ctx, a.Recipes.Category())
	})
	g.Go(func() error {
		cats, err := a.Remote.ListCategories(ctx)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.mu.Lock()
		a.categories = cats
		a.mu.Unlock()
		return nil
	})
	return g.Wait()
}

// Categories returns the loaded categories with counts from the current
// recipe list.
func (a *App) Categories() []model.Category {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return CategoryCounts(a.categories, a.Recipes.Recipes())
}

// Close waits for pending local writes.
func (a *App) Close() {
	a.Favorites.Wait()
}
