package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type registrarFunc func(rg *gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func ok(c *gin.Context) { c.String(http.StatusOK, c.GetString("tag")) }

func tag(value string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("tag", value)
		c.Next()
	}
}

func TestRouter_Setup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	r := NewRouter(engine).
		Register(registrarFunc(func(rg *gin.RouterGroup) { rg.GET("/captures", ok) }), tag("limited")).
		Register(registrarFunc(func(rg *gin.RouterGroup) { rg.GET("/invoices/:id", ok) })).
		RegisterRoot(registrarFunc(func(rg *gin.RouterGroup) { rg.GET("/health", ok) }))
	r.Setup()

	assert.Equal(t, []string{
		"GET /api/v1/captures",
		"GET /api/v1/invoices/:id",
		"GET /health",
	}, r.Routes())

	t.Run("group middleware is scoped", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/captures", nil))
		assert.Equal(t, "limited", w.Body.String())

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices/INV-1", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestRouter_APIVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	r := NewRouter(engine, WithAPIVersion("v2"))
	r.Register(registrarFunc(func(rg *gin.RouterGroup) { rg.GET("/ping", ok) }))
	r.Setup()

	assert.Equal(t, []string{"GET /api/v2/ping"}, r.Routes())
}
