package crawler

import "time"

// Result is the normalized outcome record for one strategy's participation
// in one race. It is immutable after construction.
//
// Succeeded and ErrorMessage are not mutually exclusive with a bad status
// code: a strategy may succeed transport-wise yet return a 403. Blocking
// detection is the integrity evaluator's job, not the strategy's. The one
// hard invariant: when Succeeded is false, Content is empty.
type Result struct {
	// Target is the URL being evaluated, shared by all Results in a race.
	Target string `json:"target"`

	// StrategyName identifies the strategy that produced this Result.
	// Unique within one race.
	StrategyName string `json:"strategy_name"`

	// Succeeded is false when the strategy hit an unrecoverable error.
	Succeeded bool `json:"succeeded"`

	// Elapsed is the wall-clock time the strategy took to finish,
	// including any internally-caught failure.
	Elapsed time.Duration `json:"elapsed"`

	// StatusCode is the transport status code, 0 when the strategy's
	// transport yields none.
	StatusCode int `json:"status_code,omitempty"`

	// Content is the extracted payload. Empty when Succeeded is false or
	// the strategy intentionally returned no body.
	Content string `json:"content,omitempty"`

	// SizeBytes is the byte length of Content.
	SizeBytes int `json:"size_bytes"`

	// ErrorMessage is set only when Succeeded is false.
	ErrorMessage string `json:"error_message,omitempty"`

	// Meta carries strategy-specific metadata consumed by the quality
	// scorer via its well-known fields.
	Meta Metadata `json:"meta"`
}

// Metadata is the open per-strategy metadata bag. The three boolean flags
// are the well-known keys read by the quality scorer; everything else is
// display-only.
type Metadata struct {
	HasJSON     bool `json:"has_json"`
	HasMarkdown bool `json:"has_markdown"`
	CleanText   bool `json:"clean_text"`

	// Title is the page title, when the strategy could determine one.
	Title string `json:"title,omitempty"`

	// FinalURL is the URL after redirects, when known.
	FinalURL string `json:"final_url,omitempty"`

	// Extra holds free-form display-only values (e.g. token estimates).
	// The core never interprets it structurally.
	Extra map[string]string `json:"extra,omitempty"`
}

// NewResult builds a successful Result, filling Elapsed from start and
// SizeBytes from content.
func NewResult(target, strategy string, start time.Time, statusCode int, content string, meta Metadata) *Result {
	return &Result{
		Target:       target,
		StrategyName: strategy,
		Succeeded:    true,
		Elapsed:      time.Since(start),
		StatusCode:   statusCode,
		Content:      content,
		SizeBytes:    len(content),
		Meta:         meta,
	}
}

// FailedResult builds a failure Result. Content is always empty on failure.
func FailedResult(target, strategy string, start time.Time, statusCode int, errMsg string) *Result {
	return &Result{
		Target:       target,
		StrategyName: strategy,
		Succeeded:    false,
		Elapsed:      time.Since(start),
		StatusCode:   statusCode,
		ErrorMessage: errMsg,
	}
}
