package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestMount(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("test", "/test").
		GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	api := Mount(engine, "v2", group)
	assert.Equal(t, "/api/v2", api.BasePath())

	w := serve(engine, http.MethodGet, "/api/v2/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/test/ping").Code)
}

func TestMount_DefaultVersion(t *testing.T) {
	api := Mount(gin.New(), "")
	assert.Equal(t, "/api/"+DefaultAPIVersion, api.BasePath())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("cart", "/cart")
		assert.Equal(t, "cart", g.Name())
		assert.Equal(t, "/cart", g.Prefix())
	})

	t.Run("methods", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		g := NewDomainGroup("test", "/test").
			GET("/items", ok).
			POST("/items", ok).
			PUT("/items/:id", ok).
			DELETE("/items/:id", ok).
			Handle(http.MethodPatch, "/items/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		for _, tt := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/test/items"},
			{http.MethodPost, "/api/v1/test/items"},
			{http.MethodPut, "/api/v1/test/items/1"},
			{http.MethodDelete, "/api/v1/test/items/1"},
			{http.MethodPatch, "/api/v1/test/items/1"},
		} {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code, tt.method+" "+tt.path)
			assert.Equal(t, tt.method, w.Body.String())
		}
		assert.Len(t, g.Routes(), 5)
	})

	t.Run("middleware order and nil entries", func(t *testing.T) {
		engine := gin.New()
		var order []string
		mark := func(name string) gin.HandlerFunc {
			return func(c *gin.Context) {
				order = append(order, name)
				c.Next()
			}
		}

		NewDomainGroup("test", "/test").
			Use(mark("group"), nil).
			GET("/items", nil, mark("route"), func(c *gin.Context) { c.Status(http.StatusOK) }).
			RegisterRoutes(engine.Group(""))

		w := serve(engine, http.MethodGet, "/test/items")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"group", "route"}, order)
	})

	t.Run("empty prefix", func(t *testing.T) {
		engine := gin.New()
		NewDomainGroup("root", "").
			POST("/orders", func(c *gin.Context) { c.Status(http.StatusCreated) }).
			RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, http.StatusCreated, serve(engine, http.MethodPost, "/api/v1/orders").Code)
	})

	t.Run("shared prefix with separate chains", func(t *testing.T) {
		engine := gin.New()
		deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }

		strict := NewDomainGroup("strict", "/admin").Use(deny).GET("/orders", ok)
		open := NewDomainGroup("open", "/admin").GET("/feed", ok)
		Mount(engine, "v1", strict, open)

		assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/admin/orders").Code)
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/admin/feed").Code)
	})
}
