package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/crawlduel/benchmark"
	"github.com/use-agent/crawlduel/cache"
	"github.com/use-agent/crawlduel/config"
	"github.com/use-agent/crawlduel/crawler"
	"github.com/use-agent/crawlduel/models"
	"github.com/use-agent/crawlduel/race"
	"github.com/use-agent/crawlduel/webhook"
)

// Race returns a handler for POST /api/v1/race.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Cache lookup (when max_age > 0).
//  3. Orchestrator.Run → one Result per strategy, completion order.
//  4. Benchmark engine → comparison, winner, cost-benefit, stats.
//  5. Record the winner, fire the webhook, return 200.
func Race(orch *race.Orchestrator, strategies []crawler.Crawler, cfg *config.Config, cc *cache.Cache, wm *race.WinnerMemory) gin.HandlerFunc {
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

		var cacheKey string
		if cc != nil && req.MaxAge > 0 {
			cacheKey = cache.Key(req.URL, req.Strategies, req.CSSSelector)
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				cached.TotalMs = time.Since(totalStart).Milliseconds()
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		results, err := orch.Run(c.Request.Context(), req.URL, entries)
		if err != nil {
			respondError(c, err)
			return
		}

		engine := benchmark.NewEngine()
		for _, r := range results {
			if addErr := engine.AddResult(r); addErr != nil {
				respondError(c, addErr)
				return
			}
		}

		report, err := buildReport(engine, req.URL, cfg.Costs.Weights(), wm, totalStart)
		if err != nil {
			respondError(c, err)
			return
		}

		if cc != nil && req.MaxAge > 0 {
			cc.Set(cacheKey, report)
			report.CacheStatus = "miss"
		}

		if cfg.Webhook.URL != "" {
			webhook.DeliverAsync(cfg.Webhook.URL, cfg.Webhook.Secret, &webhook.Event{
				Type:      "race.completed",
				Target:    req.URL,
				Timestamp: time.Now().Unix(),
				Data:      report,
			})
		}

		c.JSON(http.StatusOK, report)
	}
}

// buildEntries resolves the requested strategy names against the registered
// strategies, preserving registration order. An empty request selects all of
// them; an unknown name is a validation error.
func buildEntries(strategies []crawler.Crawler, req *models.RaceRequest) ([]race.Entry, error) {
	registered := make(map[string]struct{}, len(strategies))
	for _, s := range strategies {
		registered[s.Name()] = struct{}{}
	}
	for _, name := range req.Strategies {
		if _, ok := registered[name]; !ok {
			return nil, models.NewRaceError(models.ErrCodeInvalidInput,
				fmt.Sprintf("unknown strategy %q", name), nil)
		}
	}

	wanted := func(name string) bool {
		if len(req.Strategies) == 0 {
			return true
		}
		for _, n := range req.Strategies {
			if n == name {
				return true
			}
		}
		return false
	}

	entries := make([]race.Entry, 0, len(strategies))
	for _, s := range strategies {
		if !wanted(s.Name()) {
			continue
		}
		entries = append(entries, race.Entry{
			Name:    s.Name(),
			Crawler: s,
			Options: crawler.Options{
				Timeout:     time.Duration(req.Timeout) * time.Second,
				CSSSelector: req.CSSSelector,
				Stealth:     req.Stealth,
			},
		})
	}
	if len(entries) == 0 {
		return nil, models.NewRaceError(models.ErrCodeEmptyRun, "no strategies selected", nil)
	}
	return entries, nil
}

// rowFromResult derives one comparison row, carrying the crawl error message
// alongside the scored fields.
func rowFromResult(r *crawler.Result) models.ComparisonRow {
	integ := benchmark.EvaluateIntegrity(r)
	return models.ComparisonRow{
		StrategyName:    r.StrategyName,
		Succeeded:       r.Succeeded,
		ElapsedMs:       r.Elapsed.Milliseconds(),
		StatusCode:      r.StatusCode,
		SizeBytes:       r.SizeBytes,
		IntegrityOK:     integ.OK,
		IntegrityReason: integ.Reason,
		QualityScore:    benchmark.QualityScore(r),
		ErrorMessage:    r.ErrorMessage,
	}
}

// buildReport derives the full race report from a populated engine.
// The winner is remembered per domain only when its content passed integrity;
// a best-of-the-blocked verdict is reported but not worth repeating.
func buildReport(engine *benchmark.Engine, target string, costs map[string]float64, wm *race.WinnerMemory, totalStart time.Time) (*models.RaceReport, error) {
	verdict, err := engine.Winner()
	if err != nil {
		return nil, err
	}

	costRows, err := engine.CostBenefit(costs)
	if err != nil {
		return nil, err
	}

	comparison := make([]models.ComparisonRow, 0, engine.Len())
	for _, r := range engine.Results() {
		comparison = append(comparison, rowFromResult(r))
	}

	costBenefit := make([]models.CostBenefitEntry, 0, len(costRows))
	for _, row := range costRows {
		costBenefit = append(costBenefit, models.CostBenefitEntry{
			StrategyName:   row.StrategyName,
			Cost:           row.Cost,
			QualityScore:   row.QualityScore,
			Ratio:          row.Ratio,
			Recommendation: row.Recommendation,
		})
	}

	stats := engine.SummaryStats()

	var previous string
	if wm != nil {
		previous = wm.Get(target)
		if verdict.IntegrityOK {
			wm.Set(target, verdict.StrategyName)
		}
	}

	return &models.RaceReport{
		Success:    true,
		Target:     target,
		Comparison: comparison,
		Winner: &models.WinnerInfo{
			StrategyName: verdict.StrategyName,
			QualityScore: verdict.QualityScore,
			IntegrityOK:  verdict.IntegrityOK,
			ElapsedMs:    verdict.ElapsedMs,
			Reason:       verdict.Reason,
			Scores:       verdict.Scores,
		},
		CostBenefit: costBenefit,
		Stats: models.Summary{
			Total:         stats.Total,
			Succeeded:     stats.Succeeded,
			MeanElapsedMs: stats.MeanElapsedMs,
		},
		PreviousWinner: previous,
		TotalMs:        time.Since(totalStart).Milliseconds(),
	}, nil
}

// respondError maps a RaceError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	raceErr, ok := err.(*models.RaceError)
	if !ok {
		raceErr = models.NewRaceError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(raceErr), models.RaceReport{
		Success: false,
		Error:   raceErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.RaceError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput, models.ErrCodeEmptyRun:
		return http.StatusBadRequest // 400
	case models.ErrCodeRaceTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
