package catalog

import (
	"sort"
	"strings"

	"github.com/pageza/drinkbook/backend/internal/model"
)

// Search keeps recipes whose name or any ingredient contains q, ignoring
// case. An empty q keeps everything.
func Search(recipes []model.Recipe, q string) []model.Recipe {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []model.Recipe{}
	for _, r := range recipes {
		if q == "" || matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r model.Recipe, q string) bool {
	if strings.Contains(strings.ToLower(r.Name), q) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing), q) {
			return true
		}
	}
	return false
}

// FilterCategory keeps recipes in category; model.CategoryAll keeps all.
func FilterCategory(recipes []model.Recipe, category string) []model.Recipe {
	out := []model.Recipe{}
	for _, r := range recipes {
		if category == "" || category == model.CategoryAll || r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// SortByPopularity orders recipes most popular first, then by name, then ID.
func SortByPopularity(recipes []model.Recipe) {
	sort.SliceStable(recipes, func(i, j int) bool {
		a, b := recipes[i], recipes[j]
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// CategoryCounts returns categories with Count set from recipes.
func CategoryCounts(categories []model.Category, recipes []model.Recipe) []model.Category {
	counts := map[string]int{}
	for _, r := range recipes {
		counts[r.Category]++
	}
	out := make([]model.Category, len(categories))
	for i, c := range categories {
		c.Count = counts[c.Name]
		out[i] = c
	}
	return out
}

// Featured keeps the recipes flagged for the home screen.
func Featured(recipes []model.Recipe) []model.Recipe {
	out := []model.Recipe{}
	for _, r := range recipes {
		if r.Featured {
			out = append(out, r)
		}
	}
	return out
}
