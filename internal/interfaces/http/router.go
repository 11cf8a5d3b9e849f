// Package http exposes archived tickets, health and metrics over gin.
package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/orris-inc/archy/internal/infrastructure/auth"
	"github.com/orris-inc/archy/internal/interfaces/http/handlers/search"
	"github.com/orris-inc/archy/internal/interfaces/http/handlers/ticket"
	"github.com/orris-inc/archy/internal/interfaces/http/middleware"
	"github.com/orris-inc/archy/internal/shared/logger"

	_ "github.com/orris-inc/archy/docs"
)

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

type RouterDependencies struct {
	TicketHandler  *ticket.TicketHandler
	SearchHandler  *search.SearchHandler
	AuthMiddleware *middleware.AuthMiddleware
	// Metrics serves the Prometheus exposition; nil disables /metrics.
	Metrics      http.Handler
	HealthChecks map[string]HealthCheck
}

type Router struct {
	engine *gin.Engine
	deps   RouterDependencies
	logger logger.Interface
}

func NewRouter(deps RouterDependencies, log logger.Interface) *Router {
	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.CustomLogger(log))
	engine.Use(middleware.SecurityHeaders())

	return &Router{
		engine: engine,
		deps:   deps,
		logger: log,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", r.health)
	if r.deps.Metrics != nil {
		r.engine.GET("/metrics", gin.WrapH(r.deps.Metrics))
	}
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.engine.Group("/api/v1")
	v1.Use(r.deps.AuthMiddleware.RequireScope(auth.ScopeRead))
	{
		tickets := v1.Group("/tickets")
		tickets.GET("/:channel_id", r.deps.TicketHandler.GetTicket)
		tickets.GET("/:channel_id/messages", r.deps.TicketHandler.ListMessages)
		tickets.GET("/:channel_id/transcript", r.deps.TicketHandler.GetTranscript)

		v1.GET("/search", r.deps.SearchHandler.Search)
	}
}

// health godoc
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (r *Router) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(r.deps.HealthChecks))
	for name := range r.deps.HealthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(gin.H, len(names))
	for _, name := range names {
		if err := r.deps.HealthChecks[name](ctx); err != nil {
			r.logger.Warnw("health check failed", "check", name, "error", err)
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "checks": checks})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
