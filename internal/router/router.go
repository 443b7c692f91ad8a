package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/internal/api"
	"github.com/pageza/drinkbook/backend/internal/middleware"
)

// SetupRouter configures the middleware chain and the application routes.
func SetupRouter(deps api.Deps, corsOrigins []string, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(corsOrigins))

	deps.Logger = logger
	api.SetupAPI(router, deps)

	return router
}
