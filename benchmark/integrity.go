package benchmark

import (
	"fmt"
	"strings"

	"github.com/use-agent/crawlduel/crawler"
)

// MinContentLength is the minimum content length (in bytes) for a Result to
// pass the integrity check.
const MinContentLength = 50

// blockedStatusCodes are transport statuses that indicate the target refused
// or throttled the strategy, regardless of the strategy reporting success.
var blockedStatusCodes = map[int]struct{}{
	403: {},
	429: {},
	503: {},
}

// blockingKeywords are content markers that indicate an anti-bot wall even
// behind a 200 status. Matched case-insensitively.
var blockingKeywords = []string{
	"blocked",
	"captcha",
	"access denied",
}

// Integrity is the verdict of the integrity evaluator.
type Integrity struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// EvaluateIntegrity decides whether a Result's content is usable. It is
// pure and total: it always terminates with a verdict and never errors.
//
// Rules are applied in fixed order; the first failing rule supplies the
// reported reason:
//
//  1. the strategy failed outright
//  2. blocked transport status (403, 429, 503)
//  3. missing or too-short content
//  4. blocking keyword in the content
func EvaluateIntegrity(r *crawler.Result) Integrity {
	if !r.Succeeded {
		reason := r.ErrorMessage
		if reason == "" {
			reason = "strategy failed"
		}
		return Integrity{OK: false, Reason: reason}
	}

	if _, blocked := blockedStatusCodes[r.StatusCode]; blocked {
		return Integrity{OK: false, Reason: fmt.Sprintf("blocked: HTTP %d", r.StatusCode)}
	}

	if len(strings.TrimSpace(r.Content)) < MinContentLength {
		return Integrity{OK: false, Reason: "empty or too-short content"}
	}

	lower := strings.ToLower(r.Content)
	for _, kw := range blockingKeywords {
		if strings.Contains(lower, kw) {
			return Integrity{OK: false, Reason: "blocking keyword detected"}
		}
	}

	return Integrity{OK: true}
}
