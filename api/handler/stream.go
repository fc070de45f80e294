package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/crawlduel/benchmark"
	"github.com/use-agent/crawlduel/config"
	"github.com/use-agent/crawlduel/crawler"
	"github.com/use-agent/crawlduel/models"
	"github.com/use-agent/crawlduel/race"
)

// Stream returns a handler for POST /api/v1/race/stream.
//
// The response is Server-Sent Events: one "result" event per strategy as it
// finishes, then a terminal "report" event with the same aggregate POST
// /api/v1/race would return. Streamed races bypass the report cache.
func Stream(orch *race.Orchestrator, strategies []crawler.Crawler, cfg *config.Config, wm *race.WinnerMemory) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.RaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.RaceReport{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		entries, err := buildEntries(strategies, &req)
		if err != nil {
			respondError(c, err)
			return
		}

		events, err := orch.Race(c.Request.Context(), req.URL, entries)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		engine := benchmark.NewEngine()

		c.Stream(func(w io.Writer) bool {
			ev, ok := <-events
			if !ok {
				report, repErr := buildReport(engine, req.URL, cfg.Costs.Weights(), wm, totalStart)
				if repErr != nil {
					raceErr, isRace := repErr.(*models.RaceError)
					if !isRace {
						raceErr = models.NewRaceError(models.ErrCodeInternal, repErr.Error(), repErr)
					}
					report = &models.RaceReport{
						Success: false,
						Target:  req.URL,
						Error:   raceErr.ToDetail(),
					}
				}
				c.SSEvent("message", models.StreamEvent{Kind: "report", Report: report})
				return false
			}

			// Duplicate names were rejected before launch, so this cannot fail.
			_ = engine.AddResult(ev.Result)

			row := rowFromResult(ev.Result)
			c.SSEvent("message", models.StreamEvent{
				Kind:      "result",
				Completed: ev.Completed,
				Total:     ev.Total,
				Row:       &row,
			})
			return true
		})
	}
}
