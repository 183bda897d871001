package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/dentalshop/backend/internal/application/cart"
	"github.com/dentalshop/backend/internal/application/stockalert"
	"github.com/dentalshop/backend/internal/infrastructure/auth"
	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/dentalshop/backend/internal/interfaces/http/handler"
	"github.com/dentalshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackRunner struct{}

func (ackRunner) Run(_ context.Context, emit stockalert.Emitter) error {
	return emit(stockalert.ConnectionAck())
}

type emptyCarts struct{}

func (emptyCarts) View(_ context.Context, sessionID string) (*cart.Response, error) {
	return &cart.Response{SessionID: sessionID}, nil
}

func (emptyCarts) Add(context.Context, string, cart.AddItemRequest) (*cart.Response, error) {
	return &cart.Response{}, nil
}

func (emptyCarts) Update(context.Context, string, uuid.UUID, int) (*cart.Response, error) {
	return &cart.Response{}, nil
}

func (emptyCarts) Remove(context.Context, string, uuid.UUID) (*cart.Response, error) {
	return &cart.Response{}, nil
}

func (emptyCarts) Clear(context.Context, string) error { return nil }

func storefrontEngine(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "dentalshop-test",
	})
	jwtCfg := middleware.JWTMiddlewareConfig{JWTService: jwtService}
	streamCfg := jwtCfg
	streamCfg.AllowQueryToken = true

	h := Handlers{
		System:           handler.NewSystemHandler("dentalshop", "test", nil),
		Catalog:          handler.NewCatalogHandler(nil, nil),
		Cart:             handler.NewCartHandler(emptyCarts{}),
		Checkout:         handler.NewCheckoutHandler(nil),
		Auth:             handler.NewAuthHandler(nil),
		Content:          handler.NewContentHandler(nil, nil),
		AdminProducts:    handler.NewAdminProductHandler(nil),
		AdminOrders:      handler.NewAdminOrderHandler(nil, nil),
		AdminArticles:    handler.NewAdminArticleHandler(nil, 0),
		AdminCaseStudies: handler.NewAdminCaseStudyHandler(nil),
		StockAlerts:      handler.NewStockAlertHandler(ackRunner{}),
	}
	g := Guards{
		Auth:         middleware.JWTAuth(jwtCfg),
		StreamAuth:   middleware.JWTAuth(streamCfg),
		OptionalAuth: middleware.OptionalJWT(jwtCfg),
		Admin:        middleware.RequireAdmin(middleware.PermissionConfig{}),
		CartSession:  middleware.CartSession(middleware.DefaultCartSessionConfig()),
	}

	engine := gin.New()
	Mount(engine, DefaultAPIVersion, Storefront(h, g)...)
	return engine, jwtService
}

func accessToken(t *testing.T, svc *auth.JWTService, role string) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Username: "dr.test", Role: role})
	require.NoError(t, err)
	return pair.AccessToken
}

func TestStorefrontRouteTable(t *testing.T) {
	engine, _ := storefrontEngine(t)

	var got []string
	for _, ri := range engine.Routes() {
		got = append(got, ri.Method+" "+ri.Path)
	}
	sort.Strings(got)

	for _, want := range []string{
		"GET /api/v1/products",
		"GET /api/v1/products/categories",
		"GET /api/v1/products/:id",
		"POST /api/v1/products/:id/reviews",
		"GET /api/v1/cart",
		"POST /api/v1/cart/add",
		"PUT /api/v1/cart/update",
		"DELETE /api/v1/cart/remove/:product_id",
		"DELETE /api/v1/cart/clear",
		"POST /api/v1/checkout/whatsapp",
		"POST /api/v1/orders",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/refresh",
		"GET /api/v1/auth/me",
		"POST /api/v1/auth/logout",
		"GET /api/v1/articles/:slug",
		"GET /api/v1/case-studies/:slug",
		"GET /api/v1/admin/orders/export_csv",
		"PUT /api/v1/admin/orders/:id/status",
		"GET /api/v1/admin/orders/:id/slip.pdf",
		"POST /api/v1/admin/articles",
		"DELETE /api/v1/admin/case-studies/:id",
		"GET /api/v1/admin/stock_alerts",
	} {
		assert.Contains(t, got, want)
	}
}

func TestStorefrontAdminGuards(t *testing.T) {
	engine, jwtService := storefrontEngine(t)
	admin := accessToken(t, jwtService, auth.RoleAdmin)
	client := accessToken(t, jwtService, auth.RoleClient)

	do := func(path, bearer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	t.Run("admin routes need a token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("/api/v1/admin/orders", "").Code)
	})

	t.Run("clients are forbidden", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do("/api/v1/admin/products", client).Code)
	})

	t.Run("query token only works on the stream", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("/api/v1/admin/orders?jwt_token="+admin, "").Code)

		w := do("/api/v1/admin/stock_alerts?jwt_token="+admin, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), `"type":"connection_ack"`)
	})

	t.Run("stream rejects client tokens", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do("/api/v1/admin/stock_alerts?jwt_token="+client, "").Code)
	})
}

func TestStorefrontCartIssuesSession(t *testing.T) {
	engine, _ := storefrontEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.SessionHeader))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "cart_session=")
}
