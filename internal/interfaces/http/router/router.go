package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// apiPrefix is where every versioned route group is mounted
const apiPrefix = "/api/v1"

// RouteGroup is a declarative list of routes sharing a path prefix and a
// middleware chain. Nothing touches the engine until Mount.
type RouteGroup struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewRouteGroup starts a group under prefix guarded by middleware
func NewRouteGroup(prefix string, middleware ...gin.HandlerFunc) *RouteGroup {
	return &RouteGroup{prefix: prefix, middleware: middleware}
}

func (g *RouteGroup) GET(path string, handlers ...gin.HandlerFunc) *RouteGroup {
	return g.handle(http.MethodGet, path, handlers)
}

func (g *RouteGroup) POST(path string, handlers ...gin.HandlerFunc) *RouteGroup {
	return g.handle(http.MethodPost, path, handlers)
}

func (g *RouteGroup) handle(method, path string, handlers []gin.HandlerFunc) *RouteGroup {
	g.routes = append(g.routes, route{method: method, path: path, handlers: handlers})
	return g
}

// Mount registers the group's routes below parent
func (g *RouteGroup) Mount(parent *gin.RouterGroup) {
	group := parent.Group(g.prefix, g.middleware...)
	for _, r := range g.routes {
		group.Handle(r.method, r.path, r.handlers...)
	}
}

// Paths lists "METHOD path" for each route, relative to the parent
func (g *RouteGroup) Paths() []string {
	out := make([]string, len(g.routes))
	for i, r := range g.routes {
		out[i] = r.method + " " + g.prefix + r.path
	}
	return out
}

// mountAPI mounts groups below the versioned API prefix
func mountAPI(engine *gin.Engine, groups ...*RouteGroup) {
	api := engine.Group(apiPrefix)
	for _, g := range groups {
		g.Mount(api)
	}
}
