package service

import (
	"context"

	"github.com/pageza/drinkbook/backend/internal/model"
	"gorm.io/gorm/clause"
)

// ListCategories returns every category ordered by name. Counts are left for
// the client to derive.
func (s *RecipeService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, storeError(ctx, err)
	}
	return categories, nil
}

// EnsureCategories inserts any of cats that are missing by name.
func (s *RecipeService) EnsureCategories(ctx context.Context, cats []model.Category) error {
	if len(cats) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&cats).Error
	return storeError(ctx, err)
}
