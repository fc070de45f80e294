package benchmark

import (
	"strings"

	"github.com/use-agent/crawlduel/crawler"
)

// Quality scoring weights. The score measures structural richness of the
// output, not whether it is usable; usability is the integrity evaluator's job.
const (
	qualityBase       = 50.0
	bonusJSON         = 20.0
	bonusMarkdown     = 15.0
	bonusCleanText    = 15.0
	penaltyRawHTML    = 10.0
	markupSniffWindow = 100
)

// QualityScore computes a 0-100 structural quality score from a Result's
// metadata flags and content shape. It is pure and never consults integrity
// state: a blocked strategy still gets a structural score for whatever it
// returned, and empty content simply yields the base adjustments.
func QualityScore(r *crawler.Result) float64 {
	score := qualityBase

	if r.Meta.HasJSON {
		score += bonusJSON
	}
	if r.Meta.HasMarkdown {
		score += bonusMarkdown
	}
	if r.Meta.CleanText {
		score += bonusCleanText
	}

	// Raw, untransformed HTML gets a penalty: no structure flags set and
	// the content opens with markup.
	if !r.Meta.HasJSON && !r.Meta.HasMarkdown && !r.Meta.CleanText && looksLikeMarkup(r.Content) {
		score -= penaltyRawHTML
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// looksLikeMarkup sniffs the head of the content for an <html> tag.
func looksLikeMarkup(content string) bool {
	head := content
	if len(head) > markupSniffWindow {
		head = head[:markupSniffWindow]
	}
	return strings.Contains(strings.ToLower(head), "<html")
}
