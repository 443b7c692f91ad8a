package service

import (
	"context"

	"github.com/pageza/drinkbook/backend/internal/middleware"
	"github.com/pageza/drinkbook/backend/internal/model"
	"github.com/pageza/drinkbook/backend/internal/remote"
)

// IRecipeService is what the API needs from the recipe store.
type IRecipeService interface {
	remote.Store
	IncrementPopularity(ctx context.Context, id string) (*model.Recipe, error)
	Ping(ctx context.Context) error
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(token string) (*middleware.TokenClaims, error)
}

// IImageService stores recipe photos.
type IImageService interface {
	UploadRecipeImage(ctx context.Context, recipeID string, data []byte) (*model.Recipe, error)
}

var (
	_ IRecipeService = (*RecipeService)(nil)
	_ IAuthService   = (*AuthService)(nil)
	_ IImageService  = (*ImageService)(nil)
)
