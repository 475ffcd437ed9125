package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contract-console/internal/services/health"
	"contract-console/internal/shared/config"
	"contract-console/internal/shared/metrics"
	"contract-console/internal/shared/server/middleware"
	"contract-console/internal/shared/server/respond"
	"contract-console/internal/shared/server/views"
)

// RouteRegistrar is implemented by every view handler.
type RouteRegistrar interface {
	RegisterRoutes(rg gin.IRoutes)
}

// RouterDeps carries the handlers mounted on the router.
type RouterDeps struct {
	Config        config.Config
	Health        *health.Service
	Upload        RouteRegistrar
	Loading       RouteRegistrar
	Visualization RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsDevLike() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
	)
	views.Install(r)

	r.GET("/healthz", func(c *gin.Context) {
		payload := map[string]any{"ok": true}
		if deps.Health != nil {
			payload = deps.Health.Status()
		}
		respond.JSON(c, http.StatusOK, payload)
	})
	r.GET("/metrics", metrics.Handler())

	for _, h := range []RouteRegistrar{deps.Upload, deps.Loading, deps.Visualization} {
		if h != nil {
			h.RegisterRoutes(r)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Page(c, http.StatusNotFound, "not_found", "Page not found", gin.H{"AppName": deps.Config.AppName})
	})

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
