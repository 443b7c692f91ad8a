package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/internal/service"
)

// CategoryHandler serves the category list.
type CategoryHandler struct {
	recipes service.IRecipeService
}

func NewCategoryHandler(recipes service.IRecipeService) *CategoryHandler {
	return &CategoryHandler{recipes: recipes}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/categories", h.ListCategories)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.recipes.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Deps is everything the API routes need. Images, Events, CreateLimit and
// Socket are optional.
type Deps struct {
	Recipes     service.IRecipeService
	Auth        service.IAuthService
	Images      service.IImageService
	Events      Publisher
	CreateLimit gin.HandlerFunc
	Socket      gin.HandlerFunc
	Logger      *zap.Logger
}

// SetupAPI registers every route under /api/v1, plus /healthz.
func SetupAPI(router *gin.Engine, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router.GET("/healthz", func(c *gin.Context) {
		if err := deps.Recipes.Ping(c.Request.Context()); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		NewAuthHandler(deps.Auth, logger).RegisterRoutes(v1)
		NewCategoryHandler(deps.Recipes).RegisterRoutes(v1)
		NewRecipeHandler(deps.Recipes, deps.Auth, deps.Images, deps.Events, deps.CreateLimit, logger).RegisterRoutes(v1)
		if deps.Socket != nil {
			v1.GET("/ws", deps.Socket)
		}
	}
}
