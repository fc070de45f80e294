package benchmark

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/use-agent/crawlduel/crawler"
)

// Validation errors surfaced by Engine operations. They are fatal to the
// offending call only, never to the race or the process.
var (
	ErrEmptyRun          = errors.New("benchmark: no results in run")
	ErrDuplicateStrategy = errors.New("benchmark: duplicate strategy name")
	ErrInvalidCost       = errors.New("benchmark: cost weight must be positive")
)

// defaultCostWeight is used for strategies without a declared cost weight.
const defaultCostWeight = 5.0

// Recommendation tier thresholds for the benefit-to-cost ratio.
const (
	ratioExcellent = 40.0
	ratioGood      = 15.0
	ratioFair      = 5.0
)

// Engine owns the result set of one race and derives all comparison views
// from it. Results are kept in completion order. Integrity and quality are
// recomputed on every query rather than cached, so views always reflect the
// current scoring rules.
//
// Safe for concurrent use: the orchestrator's collection path appends while
// live-progress consumers may already be querying.
type Engine struct {
	mu      sync.RWMutex
	results []*crawler.Result
}

// NewEngine creates an empty benchmark engine.
func NewEngine() *Engine {
	return &Engine{}
}

// AddResult appends a Result to the current run. Registration order is
// completion order by contract. Duplicate strategy names are rejected.
func (e *Engine) AddResult(r *crawler.Result) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.results {
		if existing.StrategyName == r.StrategyName {
			return fmt.Errorf("%w: %q", ErrDuplicateStrategy, r.StrategyName)
		}
	}
	e.results = append(e.results, r)
	return nil
}

// Clear empties the run so the engine can be reused for the next race.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results = nil
}

// Len reports how many results are registered.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.results)
}

// Results returns a snapshot of the registered results in completion order.
func (e *Engine) Results() []*crawler.Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*crawler.Result, len(e.results))
	copy(out, e.results)
	return out
}

// Row is one line of the comparison view.
type Row struct {
	StrategyName string  `json:"strategy_name"`
	Succeeded    bool    `json:"succeeded"`
	ElapsedMs    int64   `json:"elapsed_ms"`
	StatusCode   int     `json:"status_code,omitempty"`
	SizeBytes    int     `json:"size_bytes"`
	IntegrityOK  bool    `json:"integrity_ok"`
	Reason       string  `json:"integrity_reason,omitempty"`
	QualityScore float64 `json:"quality_score"`
}

// Comparison derives one row per registered Result, in completion order.
// The view is deliberately not ranked; callers wanting a ranking use Winner.
func (e *Engine) Comparison() []Row {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rows := make([]Row, 0, len(e.results))
	for _, r := range e.results {
		integ := EvaluateIntegrity(r)
		rows = append(rows, Row{
			StrategyName: r.StrategyName,
			Succeeded:    r.Succeeded,
			ElapsedMs:    r.Elapsed.Milliseconds(),
			StatusCode:   r.StatusCode,
			SizeBytes:    r.SizeBytes,
			IntegrityOK:  integ.OK,
			Reason:       integ.Reason,
			QualityScore: QualityScore(r),
		})
	}
	return rows
}

// Verdict is the outcome of Winner.
type Verdict struct {
	StrategyName string             `json:"strategy_name"`
	QualityScore float64            `json:"quality_score"`
	IntegrityOK  bool               `json:"integrity_ok"`
	ElapsedMs    int64              `json:"elapsed_ms"`
	Reason       string             `json:"reason"`
	Scores       map[string]float64 `json:"scores"`
}

// scored pairs a Result with its derived metrics and insertion index.
type scored struct {
	result  *crawler.Result
	integOK bool
	quality float64
	index   int
}

// Winner ranks the run and returns the best Result with a human-readable
// reason naming the rule that decided the outcome.
//
// Ordering: integrity-OK results rank strictly above integrity-failed ones;
// within a group higher quality wins; quality ties go to the faster
// strategy; remaining ties go to the first registered. The within-group
// rules also apply when every result failed integrity, so an all-blocked
// run still yields a best-of-the-blocked winner.
func (e *Engine) Winner() (*Verdict, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.results) == 0 {
		return nil, ErrEmptyRun
	}

	ranked := make([]scored, 0, len(e.results))
	scores := make(map[string]float64, len(e.results))
	anyIntact := false
	for i, r := range e.results {
		s := scored{
			result:  r,
			integOK: EvaluateIntegrity(r).OK,
			quality: QualityScore(r),
			index:   i,
		}
		if s.integOK {
			anyIntact = true
		}
		scores[r.StrategyName] = s.quality
		ranked = append(ranked, s)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.integOK != b.integOK {
			return a.integOK
		}
		if a.quality != b.quality {
			return a.quality > b.quality
		}
		if a.result.Elapsed != b.result.Elapsed {
			return a.result.Elapsed < b.result.Elapsed
		}
		return a.index < b.index
	})

	top := ranked[0]
	reason := decidingReason(ranked, anyIntact)

	return &Verdict{
		StrategyName: top.result.StrategyName,
		QualityScore: top.quality,
		IntegrityOK:  top.integOK,
		ElapsedMs:    top.result.Elapsed.Milliseconds(),
		Reason:       reason,
		Scores:       scores,
	}, nil
}

// decidingReason explains which ranking rule separated the winner from the
// runner-up.
func decidingReason(ranked []scored, anyIntact bool) string {
	top := ranked[0]
	name := top.result.StrategyName

	prefix := ""
	if !anyIntact {
		prefix = "all strategies failed integrity checks; "
	}

	if len(ranked) == 1 {
		return fmt.Sprintf("%s%s is the only strategy in the run (quality %.1f/100)",
			prefix, name, top.quality)
	}

	next := ranked[1]
	switch {
	case top.integOK && !next.integOK:
		return fmt.Sprintf("%s won: intact content where %s was rejected (%s), quality %.1f/100",
			name, next.result.StrategyName, EvaluateIntegrity(next.result).Reason, top.quality)
	case top.quality != next.quality:
		return fmt.Sprintf("%s%s won on structural quality: %.1f vs %.1f/100",
			prefix, name, top.quality, next.quality)
	case top.result.Elapsed != next.result.Elapsed:
		return fmt.Sprintf("%s%s won on speed at equal quality (%.1f/100): %s vs %s",
			prefix, name, top.quality,
			top.result.Elapsed.Round(time.Millisecond), next.result.Elapsed.Round(time.Millisecond))
	default:
		return fmt.Sprintf("%s%s won by finishing first at equal quality and speed (%.1f/100)",
			prefix, name, top.quality)
	}
}

// CostBenefitRow relates a strategy's quality score to its declared
// resource cost weight.
type CostBenefitRow struct {
	StrategyName   string  `json:"strategy_name"`
	Cost           float64 `json:"cost"`
	QualityScore   float64 `json:"quality_score"`
	Ratio          float64 `json:"ratio"`
	Recommendation string  `json:"recommendation"`
}

// CostBenefit combines each Result's quality score with its strategy's
// declared cost weight (external configuration; strategies without an entry
// get a middle-of-the-road default). A non-positive cost is a configuration
// error.
func (e *Engine) CostBenefit(costs map[string]float64) ([]CostBenefitRow, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rows := make([]CostBenefitRow, 0, len(e.results))
	for _, r := range e.results {
		cost, ok := costs[r.StrategyName]
		if !ok {
			cost = defaultCostWeight
		}
		if cost <= 0 {
			return nil, fmt.Errorf("%w: %q has cost %v", ErrInvalidCost, r.StrategyName, cost)
		}

		quality := QualityScore(r)
		ratio := quality / cost

		rows = append(rows, CostBenefitRow{
			StrategyName:   r.StrategyName,
			Cost:           cost,
			QualityScore:   quality,
			Ratio:          ratio,
			Recommendation: recommendationTier(ratio),
		})
	}
	return rows, nil
}

// recommendationTier maps a benefit-to-cost ratio to a qualitative tier.
func recommendationTier(ratio float64) string {
	switch {
	case ratio >= ratioExcellent:
		return "excellent"
	case ratio >= ratioGood:
		return "good"
	case ratio >= ratioFair:
		return "fair"
	default:
		return "poor"
	}
}

// Stats summarizes the run.
type Stats struct {
	Total         int   `json:"total"`
	Succeeded     int   `json:"succeeded"`
	MeanElapsedMs int64 `json:"mean_elapsed_ms,omitempty"`
}

// SummaryStats reports counts and the mean elapsed time over succeeded
// results. MeanElapsedMs is zero (omitted in JSON) when nothing succeeded.
func (e *Engine) SummaryStats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := Stats{Total: len(e.results)}
	var sum time.Duration
	for _, r := range e.results {
		if r.Succeeded {
			stats.Succeeded++
			sum += r.Elapsed
		}
	}
	if stats.Succeeded > 0 {
		stats.MeanElapsedMs = (sum / time.Duration(stats.Succeeded)).Milliseconds()
	}
	return stats
}
