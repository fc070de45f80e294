package benchmark

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/use-agent/crawlduel/crawler"
)

// goodContent is comfortably above the length threshold and keyword-free.
var goodContent = strings.Repeat("real article text ", 10)

func TestEvaluateIntegrity_FailedStrategy(t *testing.T) {
	r := &crawler.Result{Succeeded: false, ErrorMessage: "connection refused"}

	integ := EvaluateIntegrity(r)
	assert.False(t, integ.OK)
	assert.Equal(t, "connection refused", integ.Reason)
}

func TestEvaluateIntegrity_FailedWithoutMessage(t *testing.T) {
	r := &crawler.Result{Succeeded: false}

	integ := EvaluateIntegrity(r)
	assert.False(t, integ.OK)
	assert.Equal(t, "strategy failed", integ.Reason)
}

func TestEvaluateIntegrity_FailureRuleBeatsStatusRule(t *testing.T) {
	// A failed strategy with a blocked status reports its own error, not
	// the blocking status.
	r := &crawler.Result{Succeeded: false, StatusCode: 403, ErrorMessage: "timeout"}

	integ := EvaluateIntegrity(r)
	assert.False(t, integ.OK)
	assert.Equal(t, "timeout", integ.Reason)
}

func TestEvaluateIntegrity_BlockedStatusCodes(t *testing.T) {
	for _, code := range []int{403, 429, 503} {
		r := &crawler.Result{Succeeded: true, StatusCode: code, Content: goodContent}

		integ := EvaluateIntegrity(r)
		assert.False(t, integ.OK, "status %d should fail integrity", code)
		assert.Contains(t, integ.Reason, "blocked: HTTP")
	}
}

func TestEvaluateIntegrity_NonBlockedErrorStatusPasses(t *testing.T) {
	// 404 and 500 are not in the blocked set; with real content they pass.
	for _, code := range []int{404, 500} {
		r := &crawler.Result{Succeeded: true, StatusCode: code, Content: goodContent}
		assert.True(t, EvaluateIntegrity(r).OK, "status %d should pass", code)
	}
}

func TestEvaluateIntegrity_ShortContent(t *testing.T) {
	r := &crawler.Result{Succeeded: true, StatusCode: 200, Content: "tiny"}

	integ := EvaluateIntegrity(r)
	assert.False(t, integ.OK)
	assert.Equal(t, "empty or too-short content", integ.Reason)
}

func TestEvaluateIntegrity_BlockingKeyword(t *testing.T) {
	for _, kw := range []string{"blocked", "CAPTCHA", "Access Denied"} {
		content := goodContent + " please solve: " + kw
		r := &crawler.Result{Succeeded: true, StatusCode: 200, Content: content}

		integ := EvaluateIntegrity(r)
		assert.False(t, integ.OK, "keyword %q should fail integrity", kw)
		assert.Equal(t, "blocking keyword detected", integ.Reason)
	}
}

func TestEvaluateIntegrity_KeywordBehindOK200(t *testing.T) {
	// A 200 with a captcha wall is the classic soft block.
	r := &crawler.Result{
		Succeeded:  true,
		StatusCode: 200,
		Content:    strings.Repeat("x", 60) + " captcha challenge",
	}
	assert.False(t, EvaluateIntegrity(r).OK)
}

func TestEvaluateIntegrity_IntactContent(t *testing.T) {
	r := &crawler.Result{Succeeded: true, StatusCode: 200, Content: goodContent}

	integ := EvaluateIntegrity(r)
	assert.True(t, integ.OK)
	assert.Empty(t, integ.Reason)
}

func TestQualityScore_PlainTextBase(t *testing.T) {
	r := &crawler.Result{Succeeded: true, Content: goodContent}
	assert.Equal(t, 50.0, QualityScore(r))
}

func TestQualityScore_RawHTMLPenalty(t *testing.T) {
	r := &crawler.Result{
		Succeeded: true,
		Content:   "<html><body>" + goodContent + "</body></html>",
	}
	assert.Equal(t, 40.0, QualityScore(r))
}

func TestQualityScore_MarkupBeyondSniffWindow(t *testing.T) {
	// The penalty only applies when the content opens with markup.
	r := &crawler.Result{
		Succeeded: true,
		Content:   strings.Repeat("a", 150) + "<html>",
	}
	assert.Equal(t, 50.0, QualityScore(r))
}

func TestQualityScore_Bonuses(t *testing.T) {
	tests := []struct {
		name string
		meta crawler.Metadata
		want float64
	}{
		{"json only", crawler.Metadata{HasJSON: true}, 70},
		{"markdown only", crawler.Metadata{HasMarkdown: true}, 65},
		{"clean text only", crawler.Metadata{CleanText: true}, 65},
		{"markdown and clean text", crawler.Metadata{HasMarkdown: true, CleanText: true}, 80},
		{"all three", crawler.Metadata{HasJSON: true, HasMarkdown: true, CleanText: true}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &crawler.Result{Succeeded: true, Content: goodContent, Meta: tt.meta}
			assert.Equal(t, tt.want, QualityScore(r))
		})
	}
}

func TestQualityScore_StructureFlagsSuppressPenalty(t *testing.T) {
	// Markup content with any structure flag set is not "raw" output.
	r := &crawler.Result{
		Succeeded: true,
		Content:   "<html><body>converted anyway</body></html>",
		Meta:      crawler.Metadata{HasMarkdown: true},
	}
	assert.Equal(t, 65.0, QualityScore(r))
}

func TestQualityScore_IgnoresIntegrityState(t *testing.T) {
	// Scoring is pure: a failed or blocked result still gets a structural
	// score for whatever it carries.
	failed := &crawler.Result{Succeeded: false, ErrorMessage: "timeout"}
	assert.Equal(t, 50.0, QualityScore(failed))

	blocked := &crawler.Result{Succeeded: true, StatusCode: 403, Content: goodContent}
	assert.Equal(t, 50.0, QualityScore(blocked))
}
