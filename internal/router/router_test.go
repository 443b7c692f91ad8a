package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/internal/api"
	"github.com/pageza/drinkbook/backend/internal/router"
	"github.com/pageza/drinkbook/backend/internal/service"
	"github.com/pageza/drinkbook/backend/internal/testhelpers"
)

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLite(t)

	r := router.SetupRouter(api.Deps{
		Recipes: service.NewRecipeService(db),
		Auth:    service.NewAuthService(db, "test-secret"),
		Socket:  func(c *gin.Context) { c.Status(http.StatusTeapot) },
	}, []string{"http://localhost:8081"}, zap.NewNop())

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", http.StatusOK},
		{"list recipes", http.MethodGet, "/api/v1/recipes", http.StatusOK},
		{"categories", http.MethodGet, "/api/v1/categories", http.StatusOK},
		{"create needs auth", http.MethodPost, "/api/v1/recipes", http.StatusUnauthorized},
		{"websocket route", http.MethodGet, "/api/v1/ws", http.StatusTeapot},
		{"unknown route", http.MethodGet, "/api/v1/profile", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSetupRouterCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLite(t)

	r := router.SetupRouter(api.Deps{
		Recipes: service.NewRecipeService(db),
		Auth:    service.NewAuthService(db, "test-secret"),
	}, []string{"http://localhost:8081"}, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:8081", w.Header().Get("Access-Control-Allow-Origin"))
}
