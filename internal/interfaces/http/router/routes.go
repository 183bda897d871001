package router

import (
	"github.com/dentalshop/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers holds every API handler mounted by Storefront
type Handlers struct {
	System           *handler.SystemHandler
	Catalog          *handler.CatalogHandler
	Cart             *handler.CartHandler
	Checkout         *handler.CheckoutHandler
	Auth             *handler.AuthHandler
	Content          *handler.ContentHandler
	AdminProducts    *handler.AdminProductHandler
	AdminOrders      *handler.AdminOrderHandler
	AdminArticles    *handler.AdminArticleHandler
	AdminCaseStudies *handler.AdminCaseStudyHandler
	StockAlerts      *handler.StockAlertHandler
}

// Guards holds the per-route middleware. Nil entries are skipped.
type Guards struct {
	// Auth requires a bearer access token
	Auth gin.HandlerFunc
	// StreamAuth is Auth that also accepts ?jwt_token=, for EventSource clients
	StreamAuth gin.HandlerFunc
	// OptionalAuth links the caller when a valid token is present
	OptionalAuth gin.HandlerFunc
	// Admin rejects callers without the admin role
	Admin gin.HandlerFunc
	// CartSession resolves the cart session id
	CartSession gin.HandlerFunc
	// AuthRateLimit throttles credential endpoints
	AuthRateLimit gin.HandlerFunc
}

// Storefront returns the route groups of the storefront API
func Storefront(h Handlers, g Guards) []RouteRegistrar {
	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.Info)

	products := NewDomainGroup("catalog", "/products").
		GET("", h.Catalog.ListProducts).
		GET("/categories", h.Catalog.Categories).
		GET("/:id", h.Catalog.GetProduct).
		POST("/:id/reviews", h.Catalog.AddReview)

	cart := NewDomainGroup("cart", "/cart").
		Use(g.CartSession).
		GET("", h.Cart.View).
		POST("/add", h.Cart.Add).
		PUT("/update", h.Cart.Update).
		DELETE("/remove/:product_id", h.Cart.Remove).
		DELETE("/clear", h.Cart.Clear)

	checkout := NewDomainGroup("checkout", "").
		Use(g.OptionalAuth).
		POST("/checkout/whatsapp", g.CartSession, h.Checkout.WhatsApp).
		POST("/orders", h.Checkout.CreateOrder)

	auth := NewDomainGroup("auth", "/auth").
		POST("/register", g.AuthRateLimit, h.Auth.Register).
		POST("/login", g.AuthRateLimit, h.Auth.Login).
		POST("/refresh", g.AuthRateLimit, h.Auth.Refresh).
		GET("/me", g.Auth, h.Auth.Me).
		POST("/logout", g.Auth, h.Auth.Logout).
		PUT("/password", g.Auth, h.Auth.ChangePassword)

	content := NewDomainGroup("content", "").
		GET("/articles", h.Content.ListArticles).
		GET("/articles/:slug", h.Content.GetArticle).
		GET("/case-studies", h.Content.ListCaseStudies).
		GET("/case-studies/:slug", h.Content.GetCaseStudy)

	admin := NewDomainGroup("admin", "/admin").
		Use(g.Auth, g.Admin).
		GET("/products", h.AdminProducts.List).
		GET("/products/:id", h.AdminProducts.Get).
		POST("/products", h.AdminProducts.Create).
		PUT("/products/:id", h.AdminProducts.Update).
		DELETE("/products/:id", h.AdminProducts.Delete).
		GET("/orders", h.AdminOrders.List).
		GET("/orders/export_csv", h.AdminOrders.ExportCSV).
		GET("/orders/:id", h.AdminOrders.Get).
		GET("/orders/:id/slip.pdf", h.AdminOrders.Slip).
		PUT("/orders/:id/status", h.AdminOrders.UpdateStatus).
		GET("/articles", h.AdminArticles.List).
		GET("/articles/:id", h.AdminArticles.Get).
		POST("/articles", h.AdminArticles.Create).
		PUT("/articles/:id", h.AdminArticles.Update).
		DELETE("/articles/:id", h.AdminArticles.Delete).
		GET("/case-studies", h.AdminCaseStudies.List).
		GET("/case-studies/:id", h.AdminCaseStudies.Get).
		POST("/case-studies", h.AdminCaseStudies.Create).
		PUT("/case-studies/:id", h.AdminCaseStudies.Update).
		DELETE("/case-studies/:id", h.AdminCaseStudies.Delete)

	// same prefix, separate chain: only the stream takes the query token
	stream := NewDomainGroup("admin-stream", "/admin").
		Use(g.StreamAuth, g.Admin).
		GET("/stock_alerts", h.StockAlerts.Stream)

	return []RouteRegistrar{system, products, cart, checkout, auth, content, admin, stream}
}
