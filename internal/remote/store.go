// Package remote defines the recipe store the clients read from and write to.
package remote

import (
	"context"
	"errors"

	"github.com/pageza/drinkbook/backend/internal/model"
)

var (
	// ErrNotConnected is returned when no backend is reachable or configured.
	ErrNotConnected = errors.New("remote store not connected")
	// ErrMissingIndex is returned when the backend rejects a compound query
	// because no index supports it.
	ErrMissingIndex = errors.New("query requires an index")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
)

// Order fields accepted by QueryRecipes.
const (
	OrderCreatedAt  = "created_at"
	OrderUpdatedAt  = "updated_at"
	OrderPopularity = "popularity"
	OrderName       = "name"
)

// Filter is an equality constraint on one field.
type Filter struct {
	Field string
	Value string
}

// InFilter is a membership constraint on one field.
type InFilter struct {
	Field  string
	Values []string
}

// Query describes a recipe collection read.
type Query struct {
	Equal      []Filter
	In         *InFilter
	OrderBy    string
	Descending bool
}

// ByCategory is the list query: newest first, optionally scoped by category.
func ByCategory(category string) Query {
	q := Query{OrderBy: OrderCreatedAt, Descending: true}
	if category != "" && category != model.CategoryAll {
		q.Equal = []Filter{{Field: "category", Value: category}}
	}
	return q
}

// ByIDs selects records whose id is in ids.
func ByIDs(ids []string) Query {
	return Query{
		In:         &InFilter{Field: "id", Values: ids},
		OrderBy:    OrderPopularity,
		Descending: true,
	}
}

// Store is the capability set the client library needs from the backend.
type Store interface {
	QueryRecipes(ctx context.Context, q Query) ([]model.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	InsertRecipe(ctx context.Context, draft model.RecipeDraft) (*model.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, patch model.RecipePatch) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// Unavailable is a Store for a misconfigured client. Every call fails with
// ErrNotConnected.
type Unavailable struct{}

func (Unavailable) QueryRecipes(context.Context, Query) ([]model.Recipe, error) {
	return nil, ErrNotConnected
}

func (Unavailable) GetRecipe(context.Context, string) (*model.Recipe, error) {
	return nil, ErrNotConnected
}

func (Unavailable) InsertRecipe(context.Context, model.RecipeDraft) (*model.Recipe, error) {
	return nil, ErrNotConnected
}

func (Unavailable) UpdateRecipe(context.Context, string, model.RecipePatch) (*model.Recipe, error) {
	return nil, ErrNotConnected
}

func (Unavailable) DeleteRecipe(context.Context, string) error {
	return ErrNotConnected
}

func (Unavailable) ListCategories(context.Context) ([]model.Category, error) {
	return nil, ErrNotConnected
}

// Describe turns a store error into the message a screen shows.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConnected):
		return "Not connected to the recipe database"
	case errors.Is(err, ErrMissingIndex):
		return "The recipe database is missing an index for this query: " + err.Error()
	case errors.Is(err, ErrNotFound):
		return "Recipe not found"
	default:
		return err.Error()
	}
}
