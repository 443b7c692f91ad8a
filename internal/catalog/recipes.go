// Package catalog holds the client-side state the drink screens read from:
// the recipe list, the favorite set and the theme.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/internal/model"
	"github.com/pageza/drinkbook/backend/internal/remote"
)

// popularityIncrementer is implemented by stores that can bump popularity
// atomically.
type popularityIncrementer interface {
	IncrementPopularity(ctx context.Context, id string) (*model.Recipe, error)
}

// RecipeList mirrors the remote recipe collection, optionally scoped by
// category. It is safe for concurrent use.
type RecipeList struct {
	store  remote.Store
	logger *zap.Logger

	mu       sync.RWMutex
	recipes  []model.Recipe
	category string
	err      error
	inflight int
	fetchSeq uint64
}

func NewRecipeList(store remote.Store, logger *zap.Logger) *RecipeList {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeList{
		store:    store,
		logger:   logger,
		recipes:  []model.Recipe{},
		category: model.CategoryAll,
	}
}

// Fetch replaces the list with the newest-first query for category. An
// empty category means model.CategoryAll. On failure the previous list is
// kept and the error is recorded for Err.
func (l *RecipeList) Fetch(ctx context.Context, category string) error {
	if category == "" {
		category = model.CategoryAll
	}

	l.mu.Lock()
	l.inflight++
	l.fetchSeq++
	seq := l.fetchSeq
	l.mu.Unlock()

	recipes, err := l.store.QueryRecipes(ctx, remote.ByCategory(category))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inflight--

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if seq != l.fetchSeq {
		// A newer fetch owns the list.
		return err
	}
	l.category = category
	if err != nil {
		l.err = err
		l.logger.Warn("recipe fetch failed", zap.String("category", category), zap.Error(err))
		return err
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	l.recipes = recipes
	l.err = nil
	return nil
}

// Add inserts draft and refetches with the last used category. The stored
// record is returned even when the refetch fails.
func (l *RecipeList) Add(ctx context.Context, draft model.RecipeDraft) (*model.Recipe, error) {
	created, err := l.store.InsertRecipe(ctx, draft.Clean())
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add recipe: %w", err)
	}

	if err := l.Fetch(ctx, l.Category()); err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return created, nil
}

// Update writes patch and replaces the matching entry in place.
func (l *RecipeList) Update(ctx context.Context, id string, patch model.RecipePatch) (*model.Recipe, error) {
	updated, err := l.store.UpdateRecipe(ctx, id, patch.Clean())
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	l.replace(*updated)
	return updated, nil
}

// Delete removes the record remotely, then from the list.
func (l *RecipeList) Delete(ctx context.Context, id string) error {
	err := l.store.DeleteRecipe(ctx, id)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	kept := make([]model.Recipe, 0, len(l.recipes))
	for _, r := range l.recipes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	l.recipes = kept
	return nil
}

// Get loads one record without touching the list.
func (l *RecipeList) Get(ctx context.Context, id string) (*model.Recipe, error) {
	recipe, err := l.store.GetRecipe(ctx, id)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// IncrementPopularity adds one to a recipe's popularity and updates the
// matching entry.
func (l *RecipeList) IncrementPopularity(ctx context.Context, id string) (*model.Recipe, error) {
	var (
		updated *model.Recipe
		err     error
	)
	if inc, ok := l.store.(popularityIncrementer); ok {
		updated, err = inc.IncrementPopularity(ctx, id)
	} else {
		updated, err = l.readIncrement(ctx, id)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update popularity: %w", err)
	}

	l.replace(*updated)
	return updated, nil
}

func (l *RecipeList) readIncrement(ctx context.Context, id string) (*model.Recipe, error) {
	current, err := l.store.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	next := current.Popularity + 1
	return l.store.UpdateRecipe(ctx, id, model.RecipePatch{Popularity: &next})
}

func (l *RecipeList) replace(recipe model.Recipe) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.recipes {
		if l.recipes[i].ID == recipe.ID {
			l.recipes[i] = recipe
			return
		}
	}
}

// Recipes returns a copy of the current list.
func (l *RecipeList) Recipes() []model.Recipe {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Recipe{}, l.recipes...)
}

// Loading reports whether a fetch is in flight.
func (l *RecipeList) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.inflight > 0
}

// Err is the last fetch failure, or nil after a successful fetch.
func (l *RecipeList) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// ErrMessage is Err as a screen shows it.
func (l *RecipeList) ErrMessage() string {
	return remote.Describe(l.Err())
}

// Category is the filter of the last fetch.
func (l *RecipeList) Category() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.category
}
