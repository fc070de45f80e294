package models

// RaceRequest is the payload for POST /api/v1/race and /api/v1/race/stream.
type RaceRequest struct {
	// URL is the target to race against. Required.
	URL string `json:"url" binding:"required,url"`

	// Strategies selects which registered strategies participate.
	// Empty means all of them.
	Strategies []string `json:"strategies,omitempty"`

	// Timeout is the per-strategy deadline in seconds.
	// Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// Stealth enables anti-bot-detection evasions on strategies that
	// support them.
	Stealth bool `json:"stealth,omitempty"`

	// CSSSelector optionally narrows extraction to matching elements.
	CSSSelector string `json:"css_selector,omitempty"`

	// MaxAge serves a cached report younger than this many milliseconds
	// instead of racing again. 0 disables the cache.
	MaxAge int `json:"max_age,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *RaceRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 30
	}
}

// ComparisonRow is one line of the comparison table, in completion order.
type ComparisonRow struct {
	StrategyName    string  `json:"strategy_name"`
	Succeeded       bool    `json:"succeeded"`
	ElapsedMs       int64   `json:"elapsed_ms"`
	StatusCode      int     `json:"status_code,omitempty"`
	SizeBytes       int     `json:"size_bytes"`
	IntegrityOK     bool    `json:"integrity_ok"`
	IntegrityReason string  `json:"integrity_reason,omitempty"`
	QualityScore    float64 `json:"quality_score"`
	ErrorMessage    string  `json:"error_message,omitempty"`
}

// WinnerInfo announces the race winner.
type WinnerInfo struct {
	StrategyName string             `json:"strategy_name"`
	QualityScore float64            `json:"quality_score"`
	IntegrityOK  bool               `json:"integrity_ok"`
	ElapsedMs    int64              `json:"elapsed_ms"`
	Reason       string             `json:"reason"`
	Scores       map[string]float64 `json:"scores"`
}

// CostBenefitEntry relates one strategy's quality to its declared cost.
type CostBenefitEntry struct {
	StrategyName   string  `json:"strategy_name"`
	Cost           float64 `json:"cost"`
	QualityScore   float64 `json:"quality_score"`
	Ratio          float64 `json:"ratio"`
	Recommendation string  `json:"recommendation"`
}

// Summary aggregates the run.
type Summary struct {
	Total         int   `json:"total"`
	Succeeded     int   `json:"succeeded"`
	MeanElapsedMs int64 `json:"mean_elapsed_ms,omitempty"`
}

// RaceReport is the response for POST /api/v1/race and the terminal event
// of the stream variant.
type RaceReport struct {
	// Success indicates whether the race ran (individual strategies may
	// still have failed; see the comparison rows).
	Success bool `json:"success"`

	// Target is the raced URL.
	Target string `json:"target"`

	// Comparison lists one row per strategy in completion order.
	Comparison []ComparisonRow `json:"comparison"`

	// Winner is absent only on validation failures.
	Winner *WinnerInfo `json:"winner,omitempty"`

	// CostBenefit relates quality to the configured cost weights.
	CostBenefit []CostBenefitEntry `json:"cost_benefit"`

	// Stats summarizes the run.
	Stats Summary `json:"stats"`

	// PreviousWinner is the strategy that won the last race against this
	// domain, when remembered.
	PreviousWinner string `json:"previous_winner,omitempty"`

	// TotalMs is the end-to-end race duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// CacheStatus indicates whether the report was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// StreamEvent is one SSE message on /api/v1/race/stream. Kind is "result"
// while strategies finish and "report" for the terminal aggregate.
type StreamEvent struct {
	Kind      string         `json:"kind"`
	Completed int            `json:"completed,omitempty"`
	Total     int            `json:"total,omitempty"`
	Row       *ComparisonRow `json:"row,omitempty"`
	Report    *RaceReport    `json:"report,omitempty"`
}

// LLMUsage reports token consumption of the AI strategy's digest step.
type LLMUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool. Zero-valued when
// the browser strategy is disabled.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}
