package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/internal/catalog"
	"github.com/pageza/drinkbook/backend/internal/mocks"
	"github.com/pageza/drinkbook/backend/internal/model"
	"github.com/pageza/drinkbook/backend/internal/remote"
	"github.com/pageza/drinkbook/backend/internal/service"
	"github.com/pageza/drinkbook/backend/internal/testhelpers"
)

func stepClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newStore(t *testing.T) *service.RecipeService {
	return service.NewRecipeService(testhelpers.SetupSQLite(t)).WithClock(stepClock())
}

func drink(name, category string) model.RecipeDraft {
	return model.RecipeDraft{
		Name:         name,
		Category:     category,
		Difficulty:   model.DifficultyMedium,
		Ingredients:  []string{"Ice"},
		Instructions: []string{"Stir"},
	}
}

func TestAddMojitoStripsBlankIngredient(t *testing.T) {
	list := catalog.NewRecipeList(newStore(t), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, list.Fetch(ctx, model.CategoryAll))
	before := len(list.Recipes())

	created, err := list.Add(ctx, model.RecipeDraft{
		Name:         "Mojito",
		Category:     "Cocktail",
		Difficulty:   model.DifficultyEasy,
		Ingredients:  []string{"Rum", ""},
		Instructions: []string{"Mix"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	recipes := list.Recipes()
	require.Len(t, recipes, before+1)
	assert.Equal(t, created.ID, recipes[0].ID)
	assert.Equal(t, model.JSONBStringArray{"Rum"}, recipes[0].Ingredients)
	assert.Equal(t, model.JSONBStringArray{"Mix"}, recipes[0].Instructions)
	assert.Equal(t, "Mojito", recipes[0].Name)
}

func TestFetchByCategory(t *testing.T) {
	store := newStore(t)
	list := catalog.NewRecipeList(store, zap.NewNop())
	ctx := context.Background()

	for _, d := range []model.RecipeDraft{
		drink("Mojito", "Cocktail"),
		drink("Negroni", "Cocktail"),
		drink("Margarita", "Cocktail"),
		drink("Virgin Colada", "Mocktail"),
		drink("Shirley Temple", "Mocktail"),
	} {
		_, err := store.InsertRecipe(ctx, d)
		require.NoError(t, err)
	}

	require.NoError(t, list.Fetch(ctx, "Mocktail"))
	recipes := list.Recipes()
	require.Len(t, recipes, 2)
	for _, r := range recipes {
		assert.Equal(t, "Mocktail", r.Category)
	}
	assert.Equal(t, "Shirley Temple", recipes[0].Name)
	assert.Equal(t, "Mocktail", list.Category())

	require.NoError(t, list.Fetch(ctx, model.CategoryAll))
	assert.Len(t, list.Recipes(), 5)
}

func TestAddRefetchesWithLastCategory(t *testing.T) {
	list := catalog.NewRecipeList(newStore(t), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, list.Fetch(ctx, "Beer"))
	_, err := list.Add(ctx, drink("Mojito", "Cocktail"))
	require.NoError(t, err)
	assert.Empty(t, list.Recipes())

	_, err = list.Add(ctx, drink("Shandy", "Beer"))
	require.NoError(t, err)
	require.Len(t, list.Recipes(), 1)
	assert.Equal(t, "Shandy", list.Recipes()[0].Name)
}

func TestUpdateChangesOnlyPatchedFields(t *testing.T) {
	list := catalog.NewRecipeList(newStore(t), zap.NewNop())
	ctx := context.Background()

	created, err := list.Add(ctx, drink("Negroni", "Cocktail"))
	require.NoError(t, err)

	desc := "Bitter and bright"
	updated, err := list.Update(ctx, created.ID, model.RecipePatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.Ingredients, updated.Ingredients)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	recipes := list.Recipes()
	require.Len(t, recipes, 1)
	assert.Equal(t, desc, recipes[0].Description)
}

func TestDeleteRemovesFromList(t *testing.T) {
	list := catalog.NewRecipeList(newStore(t), zap.NewNop())
	ctx := context.Background()

	keep, err := list.Add(ctx, drink("Negroni", "Cocktail"))
	require.NoError(t, err)
	gone, err := list.Add(ctx, drink("Mojito", "Cocktail"))
	require.NoError(t, err)

	require.NoError(t, list.Delete(ctx, gone.ID))
	require.NoError(t, list.Fetch(ctx, model.CategoryAll))
	recipes := list.Recipes()
	require.Len(t, recipes, 1)
	assert.Equal(t, keep.ID, recipes[0].ID)
}

func TestGetMissingRecipe(t *testing.T) {
	list := catalog.NewRecipeList(newStore(t), zap.NewNop())

	_, err := list.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, remote.ErrNotFound)
	assert.Equal(t, "Recipe not found", remote.Describe(err))
}

func TestIncrementPopularityUsesStore(t *testing.T) {
	list := catalog.NewRecipeList(newStore(t), zap.NewNop())
	ctx := context.Background()

	created, err := list.Add(ctx, drink("Negroni", "Cocktail"))
	require.NoError(t, err)

	updated, err := list.IncrementPopularity(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Popularity)
	assert.Equal(t, 1, list.Recipes()[0].Popularity)
}

func TestIncrementPopularityFallsBackToUpdate(t *testing.T) {
	store := &mocks.MockStore{}
	list := catalog.NewRecipeList(store, zap.NewNop())
	ctx := context.Background()

	next := 3
	store.On("GetRecipe", mock.Anything, "r1").Return(&model.Recipe{ID: "r1", Popularity: 2}, nil)
	store.On("UpdateRecipe", mock.Anything, "r1", model.RecipePatch{Popularity: &next}).
		Return(&model.Recipe{ID: "r1", Popularity: 3}, nil)

	updated, err := list.IncrementPopularity(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Popularity)
	store.AssertExpectations(t)
}

func TestFetchFailureKeepsPreviousList(t *testing.T) {
	store := &mocks.MockStore{}
	list := catalog.NewRecipeList(store, zap.NewNop())
	ctx := context.Background()

	previous := []model.Recipe{{ID: "r1", Name: "Mojito"}}
	store.On("QueryRecipes", mock.Anything, remote.ByCategory(model.CategoryAll)).Return(previous, nil).Once()
	require.NoError(t, list.Fetch(ctx, model.CategoryAll))

	store.On("QueryRecipes", mock.Anything, remote.ByCategory(model.CategoryAll)).Return(nil, remote.ErrNotConnected).Once()
	err := list.Fetch(ctx, model.CategoryAll)
	assert.ErrorIs(t, err, remote.ErrNotConnected)
	assert.Equal(t, previous, list.Recipes())
	assert.False(t, list.Loading())
	assert.Equal(t, "Not connected to the recipe database", list.ErrMessage())

	store.On("QueryRecipes", mock.Anything, remote.ByCategory("Cocktail")).
		Return(nil, errors.New("create index idx_recipes_category_created_at: "+remote.ErrMissingIndex.Error())).Once()
	require.Error(t, list.Fetch(ctx, "Cocktail"))
	assert.Equal(t, previous, list.Recipes())
	store.AssertExpectations(t)
}

func TestMissingIndexMessageIsDistinct(t *testing.T) {
	store := &mocks.MockStore{}
	list := catalog.NewRecipeList(store, zap.NewNop())

	store.On("QueryRecipes", mock.Anything, mock.Anything).
		Return(nil, errors.Join(remote.ErrMissingIndex, errors.New("create index idx_recipes_category_created_at")))
	err := list.Fetch(context.Background(), "Cocktail")
	assert.ErrorIs(t, err, remote.ErrMissingIndex)
	assert.Contains(t, list.ErrMessage(), "missing an index")
	assert.NotEqual(t, remote.Describe(remote.ErrNotConnected), list.ErrMessage())
}

func TestWriteFailuresLeaveListUnchanged(t *testing.T) {
	store := &mocks.MockStore{}
	list := catalog.NewRecipeList(store, zap.NewNop())
	ctx := context.Background()

	previous := []model.Recipe{{ID: "r1", Name: "Mojito"}}
	store.On("QueryRecipes", mock.Anything, mock.Anything).Return(previous, nil).Once()
	require.NoError(t, list.Fetch(ctx, model.CategoryAll))

	boom := errors.New("write rejected")
	store.On("DeleteRecipe", mock.Anything, "r1").Return(boom)
	store.On("InsertRecipe", mock.Anything, mock.Anything).Return(nil, boom)
	store.On("UpdateRecipe", mock.Anything, "r1", mock.Anything).Return(nil, boom)

	assert.ErrorIs(t, list.Delete(ctx, "r1"), boom)
	_, err := list.Add(ctx, drink("Negroni", "Cocktail"))
	assert.ErrorIs(t, err, boom)
	name := "Renamed"
	_, err = list.Update(ctx, "r1", model.RecipePatch{Name: &name})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, previous, list.Recipes())
	store.AssertExpectations(t)
}

func TestCancelledFetchIsDiscarded(t *testing.T) {
	store := &mocks.MockStore{}
	list := catalog.NewRecipeList(store, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	store.On("QueryRecipes", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return([]model.Recipe{{ID: "late"}}, nil)

	err := list.Fetch(ctx, model.CategoryAll)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, list.Recipes())
	assert.NoError(t, list.Err())
	assert.False(t, list.Loading())
}

func TestCancelledDeleteKeepsEntry(t *testing.T) {
	store := &mocks.MockStore{}
	list := catalog.NewRecipeList(store, zap.NewNop())

	previous := []model.Recipe{{ID: "r1"}}
	store.On("QueryRecipes", mock.Anything, mock.Anything).Return(previous, nil)
	require.NoError(t, list.Fetch(context.Background(), model.CategoryAll))

	ctx, cancel := context.WithCancel(context.Background())
	store.On("DeleteRecipe", mock.Anything, "r1").Run(func(mock.Arguments) { cancel() }).Return(nil)

	assert.ErrorIs(t, list.Delete(ctx, "r1"), context.Canceled)
	assert.Equal(t, previous, list.Recipes())
}

func TestUnavailableStore(t *testing.T) {
	list := catalog.NewRecipeList(remote.Unavailable{}, zap.NewNop())

	err := list.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, remote.ErrNotConnected)
	assert.Equal(t, model.CategoryAll, list.Category())
	assert.Equal(t, "Not connected to the recipe database", list.ErrMessage())
}
