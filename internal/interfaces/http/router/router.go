// Package router mounts the HTTP handlers on a gin engine.
package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by handlers that own a set of routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

type mount struct {
	registrar  RouteRegistrar
	middleware []gin.HandlerFunc
}

// Router collects registrars and mounts them under /api/<version>. System
// endpoints such as /health are mounted at the engine root.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	api        []mount
	root       []RouteRegistrar
}

// Option configures a Router
type Option func(*Router)

// WithAPIVersion sets the API version prefix, "v1" by default
func WithAPIVersion(version string) Option {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a router for engine
func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register mounts registrar under the versioned API group. middleware only
// applies to the registrar's own routes.
func (r *Router) Register(registrar RouteRegistrar, middleware ...gin.HandlerFunc) *Router {
	r.api = append(r.api, mount{registrar: registrar, middleware: middleware})
	return r
}

// RegisterRoot mounts registrar at the engine root
func (r *Router) RegisterRoot(registrar RouteRegistrar) *Router {
	r.root = append(r.root, registrar)
	return r
}

// Setup registers every collected route with the engine
func (r *Router) Setup() {
	for _, registrar := range r.root {
		registrar.RegisterRoutes(&r.engine.RouterGroup)
	}

	prefix := "/api/" + r.apiVersion
	for _, m := range r.api {
		group := r.engine.Group(prefix, m.middleware...)
		m.registrar.RegisterRoutes(group)
	}
}

// Routes returns "METHOD path" for every registered route, sorted
func (r *Router) Routes() []string {
	routes := r.engine.Routes()
	out := make([]string, len(routes))
	for i, route := range routes {
		out[i] = route.Method + " " + route.Path
	}
	sort.Strings(out)
	return out
}
