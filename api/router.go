package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/crawlduel/api/handler"
	"github.com/use-agent/crawlduel/api/middleware"
	"github.com/use-agent/crawlduel/cache"
	"github.com/use-agent/crawlduel/config"
	"github.com/use-agent/crawlduel/crawler"
	"github.com/use-agent/crawlduel/race"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
//
// strategies is the ordered registry raced by the handlers; browser may be
// nil when the browser strategy is disabled (health then reports empty pool
// stats).
func NewRouter(orch *race.Orchestrator, strategies []crawler.Crawler, browser *crawler.Browser, cfg *config.Config, cc *cache.Cache, wm *race.WinnerMemory, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(browser, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Race — blocking aggregate and live SSE variants.
	protected.POST("/race", handler.Race(orch, strategies, cfg, cc, wm))
	protected.POST("/race/stream", handler.Stream(orch, strategies, cfg, wm))

	return r
}
