package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/internal/middleware"
	"github.com/pageza/drinkbook/backend/internal/model"
	"github.com/pageza/drinkbook/backend/internal/remote"
	"github.com/pageza/drinkbook/backend/internal/service"
	"github.com/pageza/drinkbook/backend/internal/websocket"
)

// Publisher receives catalog change events.
type Publisher interface {
	Publish(eventType string, recipeID string, recipe *model.Recipe)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, *model.Recipe) {}

// equality query parameters accepted by ListRecipes, in filter order
var equalParams = []string{"category", "difficulty", "name"}

type RecipeHandler struct {
	recipes     service.IRecipeService
	authService service.IAuthService
	images      service.IImageService
	events      Publisher
	createLimit gin.HandlerFunc
	logger      *zap.Logger
}

// NewRecipeHandler wires the recipe routes. images, events and createLimit
// may be nil.
func NewRecipeHandler(recipes service.IRecipeService, authService service.IAuthService, images service.IImageService,
	events Publisher, createLimit gin.HandlerFunc, logger *zap.Logger) *RecipeHandler {
	if events == nil {
		events = nopPublisher{}
	}
	if createLimit == nil {
		createLimit = func(c *gin.Context) { c.Next() }
	}
	return &RecipeHandler{
		recipes:     recipes,
		authService: authService,
		images:      images,
		events:      events,
		createLimit: createLimit,
		logger:      logger,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("/:id/popularity", h.IncrementPopularity)
		recipes.POST("", auth, h.createLimit, h.CreateRecipe)
		recipes.PUT("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		if h.images != nil {
			recipes.POST("/:id/image", auth, h.UploadImage)
		}
	}
}

// parseQuery reads the query string written by remote.QueryValues.
func parseQuery(c *gin.Context) remote.Query {
	var q remote.Query
	for _, field := range equalParams {
		if v, ok := c.GetQuery(field); ok && v != "" {
			if field == "category" && v == model.CategoryAll {
				continue
			}
			q.Equal = append(q.Equal, remote.Filter{Field: field, Value: v})
		}
	}
	if ids, ok := c.GetQuery("ids"); ok {
		values := []string{}
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				values = append(values, id)
			}
		}
		q.In = &remote.InFilter{Field: "id", Values: values}
	}

	defaultOrder := remote.OrderCreatedAt
	if q.In != nil {
		defaultOrder = remote.OrderPopularity
	}
	q.OrderBy = c.DefaultQuery("order", defaultOrder)
	q.Descending = c.DefaultQuery("dir", "desc") != "asc"
	return q
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.QueryRecipes(c.Request.Context(), parseQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var draft model.RecipeDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	recipe, err := h.recipes.InsertRecipe(c.Request.Context(), draft)
	if err != nil {
		writeError(c, err)
		return
	}

	h.logger.Info("recipe created",
		zap.String("recipe_id", recipe.ID),
		zap.Any("user_id", c.Value(middleware.ContextUserID)))
	h.events.Publish(websocket.EventRecipeCreated, recipe.ID, recipe)

	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var patch model.RecipePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}

	h.events.Publish(websocket.EventRecipeUpdated, recipe.ID, recipe)
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id := c.Param("id")
	if err := h.recipes.DeleteRecipe(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	h.logger.Info("recipe deleted", zap.String("recipe_id", id))
	h.events.Publish(websocket.EventRecipeDeleted, id, nil)
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) IncrementPopularity(c *gin.Context) {
	recipe, err := h.recipes.IncrementPopularity(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	h.events.Publish(websocket.EventRecipeUpdated, recipe.ID, recipe)
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "multipart field \"image\" is required")
		return
	}
	if file.Size > service.MaxImageBytes {
		badRequest(c, "image is too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxImageBytes+1))
	if err != nil {
		writeError(c, err)
		return
	}

	recipe, err := h.images.UploadRecipeImage(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		writeError(c, err)
		return
	}

	h.events.Publish(websocket.EventRecipeUpdated, recipe.ID, recipe)
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}
