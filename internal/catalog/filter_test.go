package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/internal/catalog"
	"github.com/pageza/drinkbook/backend/internal/local"
	"github.com/pageza/drinkbook/backend/internal/model"
	"github.com/pageza/drinkbook/backend/internal/remote"
)

func sample() []model.Recipe {
	return []model.Recipe{
		{ID: "1", Name: "Mojito", Category: "Cocktail", Popularity: 4, Featured: true, Ingredients: model.JSONBStringArray{"White rum", "Mint"}},
		{ID: "2", Name: "Espresso Martini", Category: "Coffee Cocktail", Popularity: 9, Ingredients: model.JSONBStringArray{"Vodka", "Espresso"}},
		{ID: "3", Name: "Shirley Temple", Category: "Mocktail", Popularity: 4, Ingredients: model.JSONBStringArray{"Ginger ale", "Grenadine"}},
		{ID: "4", Name: "Daiquiri", Category: "Cocktail", Popularity: 4, Featured: true, Ingredients: model.JSONBStringArray{"Rum", "Lime"}},
	}
}

func ids(recipes []model.Recipe) []string {
	out := []string{}
	for _, r := range recipes {
		out = append(out, r.ID)
	}
	return out
}

func TestSearch(t *testing.T) {
	tests := []struct {
		q    string
		want []string
	}{
		{"", []string{"1", "2", "3", "4"}},
		{"RUM", []string{"1", "4"}},
		{"martini", []string{"2"}},
		{"  mint ", []string{"1"}},
		{"tequila", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(catalog.Search(sample(), tt.q)))
		})
	}
}

func TestFilterCategory(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(catalog.FilterCategory(sample(), model.CategoryAll)))
	assert.Equal(t, []string{"1", "4"}, ids(catalog.FilterCategory(sample(), "Cocktail")))
	assert.Equal(t, []string{}, ids(catalog.FilterCategory(sample(), "Beer")))
}

func TestSortByPopularityBreaksTiesByName(t *testing.T) {
	recipes := sample()
	catalog.SortByPopularity(recipes)
	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(recipes))

	twins := []model.Recipe{{ID: "b", Name: "Mojito"}, {ID: "a", Name: "Mojito"}}
	catalog.SortByPopularity(twins)
	assert.Equal(t, []string{"a", "b"}, ids(twins))
}

func TestCategoryCounts(t *testing.T) {
	cats := catalog.CategoryCounts(model.DefaultCategories(), sample())
	counts := map[string]int{}
	for _, c := range cats {
		counts[c.Name] = c.Count
	}
	assert.Equal(t, 2, counts["Cocktail"])
	assert.Equal(t, 1, counts["Mocktail"])
	assert.Equal(t, 1, counts["Coffee Cocktail"])
	assert.Equal(t, 0, counts["Beer"])
}

func TestFeatured(t *testing.T) {
	assert.Equal(t, []string{"1", "4"}, ids(catalog.Featured(sample())))
}

func TestAppHome(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	for _, d := range []model.RecipeDraft{drink("Mojito", "Cocktail"), drink("Shandy", "Beer")} {
		_, err := store.InsertRecipe(ctx, d)
		require.NoError(t, err)
	}

	app := catalog.New(ctx, catalog.Deps{
		Remote:   store,
		Local:    local.NewMemoryStore(),
		OSScheme: catalog.SchemeDark,
		Logger:   zap.NewNop(),
	})
	defer app.Close()

	require.NoError(t, app.Home(ctx))
	assert.Len(t, app.Recipes.Recipes(), 2)
	assert.True(t, app.Theme.IsDark())
	assert.False(t, app.Favorites.Loading())

	counts := map[string]int{}
	for _, c := range app.Categories() {
		counts[c.Name] = c.Count
	}
	assert.Len(t, counts, len(model.DefaultCategories()))
	assert.Equal(t, 1, counts["Cocktail"])
	assert.Equal(t, 1, counts["Beer"])
}

func TestAppWithoutRemote(t *testing.T) {
	ctx := context.Background()
	app := catalog.New(ctx, catalog.Deps{Local: local.NewMemoryStore()})
	defer app.Close()

	err := app.Home(ctx)
	assert.ErrorIs(t, err, remote.ErrNotConnected)
	assert.Equal(t, "Not connected to the recipe database", app.Recipes.ErrMessage())
	assert.Empty(t, app.Categories())
}
