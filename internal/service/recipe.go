package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/pageza/drinkbook/backend/internal/model"
	"github.com/pageza/drinkbook/backend/internal/remote"
	"gorm.io/gorm"
)

// Fields a query may filter on, mapped to their columns.
var (
	equalFields = map[string]string{
		"category":   "category",
		"difficulty": "difficulty",
		"name":       "name",
	}
	inFields = map[string]string{
		"id":       "id",
		"category": "category",
	}
	orderFields = map[string]string{
		remote.OrderCreatedAt:  "created_at",
		remote.OrderUpdatedAt:  "updated_at",
		remote.OrderPopularity: "popularity",
		remote.OrderName:       "name",
	}
)

// RecipeService is the gorm-backed recipe store.
type RecipeService struct {
	db      *gorm.DB
	indexes IndexSet
	now     func() time.Time
}

var _ remote.Store = (*RecipeService)(nil)

// NewRecipeService creates a RecipeService that knows the default indexes.
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{
		db:      db,
		indexes: DefaultIndexes(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithIndexes replaces the declared index set.
func (s *RecipeService) WithIndexes(set IndexSet) *RecipeService {
	s.indexes = set
	return s
}

// WithClock replaces the timestamp source.
func (s *RecipeService) WithClock(now func() time.Time) *RecipeService {
	s.now = now
	return s
}

// QueryRecipes runs q against the recipes table.
func (s *RecipeService) QueryRecipes(ctx context.Context, q remote.Query) ([]model.Recipe, error) {
	if err := s.indexes.Check(q); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Model(&model.Recipe{})
	for _, f := range q.Equal {
		col, ok := equalFields[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: cannot filter on %q", model.ErrInvalid, f.Field)
		}
		tx = tx.Where(col+" = ?", f.Value)
	}
	if q.In != nil {
		col, ok := inFields[q.In.Field]
		if !ok {
			return nil, fmt.Errorf("%w: cannot filter on %q", model.ErrInvalid, q.In.Field)
		}
		if len(q.In.Values) == 0 {
			return []model.Recipe{}, nil
		}
		tx = tx.Where(col+" IN ?", q.In.Values)
	}
	if q.OrderBy != "" {
		col, ok := orderFields[q.OrderBy]
		if !ok {
			return nil, fmt.Errorf("%w: cannot order by %q", model.ErrInvalid, q.OrderBy)
		}
		if q.Descending {
			col += " DESC"
		}
		tx = tx.Order(col).Order("id")
	}

	recipes := []model.Recipe{}
	if err := tx.Find(&recipes).Error; err != nil {
		return nil, storeError(ctx, err)
	}
	return recipes, nil
}

// GetRecipe loads one recipe.
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, storeError(ctx, err)
	}
	return &recipe, nil
}

// InsertRecipe stores a cleaned and validated draft with server timestamps.
func (s *RecipeService) InsertRecipe(ctx context.Context, draft model.RecipeDraft) (*model.Recipe, error) {
	draft = draft.Clean()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	recipe := draft.Recipe()
	now := s.now()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
		return nil, storeError(ctx, err)
	}
	return &recipe, nil
}

// UpdateRecipe writes only the patched columns and stamps updated_at.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, patch model.RecipePatch) (*model.Recipe, error) {
	patch = patch.Clean()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var recipe model.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
			return err
		}

		cols := patch.Columns()
		now := s.now()
		if now.Before(recipe.UpdatedAt) {
			now = recipe.UpdatedAt
		}
		cols["updated_at"] = now
		if err := tx.Model(&model.Recipe{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return err
		}

		patch.Apply(&recipe)
		recipe.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeError(ctx, err)
	}
	return &recipe, nil
}

// DeleteRecipe removes a recipe; a missing id is ErrNotFound.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id)
	if res.Error != nil {
		return storeError(ctx, res.Error)
	}
	if res.RowsAffected == 0 {
		return remote.ErrNotFound
	}
	return nil
}

// IncrementPopularity adds one to a recipe's popularity in SQL and stamps
// updated_at, never earlier than the stored value.
func (s *RecipeService) IncrementPopularity(ctx context.Context, id string) (*model.Recipe, error) {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev model.Recipe
		if err := tx.Select("updated_at").First(&prev, "id = ?", id).Error; err != nil {
			return err
		}
		now := s.now()
		if now.Before(prev.UpdatedAt) {
			now = prev.UpdatedAt
		}
		err := tx.Model(&model.Recipe{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"popularity": gorm.Expr("popularity + 1"),
				"updated_at": now,
			}).Error
		if err != nil {
			return err
		}
		return tx.First(&recipe, "id = ?", id).Error
	})
	if err != nil {
		return nil, storeError(ctx, err)
	}
	return &recipe, nil
}

// Ping reports whether the database answers.
func (s *RecipeService) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", remote.ErrNotConnected, err)
	}
	return nil
}

// storeError maps driver and gorm failures onto the remote taxonomy.
func storeError(ctx context.Context, err error) error {
	var netErr net.Error
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, gorm.ErrRecordNotFound):
		return remote.ErrNotFound
	case errors.Is(err, driver.ErrBadConn), errors.As(err, &netErr):
		return fmt.Errorf("%w: %v", remote.ErrNotConnected, err)
	default:
		return err
	}
}
