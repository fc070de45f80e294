package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/crawlduel/crawler"
	"github.com/use-agent/crawlduel/models"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports browser pool utilisation and degrades status when > 80% of pages
// are active. browser is nil when the browser strategy is disabled; pool
// stats are then zero-valued and never degrade the status.
func Health(browser *crawler.Browser, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats models.PoolStats
		if browser != nil {
			stats = models.PoolStats{
				MaxPages:    browser.MaxPages(),
				ActivePages: browser.ActivePages(),
			}
		}

		status := "healthy"
		if stats.MaxPages > 0 && stats.ActivePages > int(float64(stats.MaxPages)*0.8) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Version:   "0.1.0",
		})
	}
}
