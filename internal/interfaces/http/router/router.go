package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultAPIVersion is the prefix segment the storefront is served under
const DefaultAPIVersion = "v1"

// RouteRegistrar mounts its routes on the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Mount registers every registrar under /api/<version> and returns that group
func Mount(engine *gin.Engine, version string, registrars ...RouteRegistrar) *gin.RouterGroup {
	if version == "" {
		version = DefaultAPIVersion
	}
	api := engine.Group("/api/" + version)
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}
	return api
}

// Route is one endpoint of a DomainGroup
type Route struct {
	Method   string
	Path     string
	handlers []gin.HandlerFunc
}

// DomainGroup is one area of the API (cart, admin...) with its own prefix
// and middleware chain. Two groups may share a prefix with different chains.
type DomainGroup struct {
	name   string
	prefix string
	chain  []gin.HandlerFunc
	routes []Route
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (dg *DomainGroup) Name() string    { return dg.name }
func (dg *DomainGroup) Prefix() string  { return dg.prefix }
func (dg *DomainGroup) Routes() []Route { return dg.routes }

// Use appends group middleware. Nil guards are dropped, so optional
// middleware can be passed as is.
func (dg *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	dg.chain = appendNonNil(dg.chain, mw)
	return dg
}

func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, Route{Method: method, Path: path, handlers: appendNonNil(nil, handlers)})
	return dg
}

func (dg *DomainGroup) GET(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, h...)
}

func (dg *DomainGroup) POST(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, h...)
}

func (dg *DomainGroup) PUT(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, path, h...)
}

func (dg *DomainGroup) DELETE(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, path, h...)
}

func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.chain...)
	for _, r := range dg.routes {
		group.Handle(r.Method, r.Path, r.handlers...)
	}
}

func appendNonNil(dst, handlers []gin.HandlerFunc) []gin.HandlerFunc {
	for _, h := range handlers {
		if h != nil {
			dst = append(dst, h)
		}
	}
	return dst
}
