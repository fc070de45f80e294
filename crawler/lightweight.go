package crawler

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/crawlduel/cleaner"
)

// Lightweight is the cheapest strategy: a single HTTP GET with a Chrome TLS
// fingerprint, no JavaScript rendering. Its output is the raw page HTML, so
// it scores no structure bonuses; its edge is speed and cost.
type Lightweight struct{}

// NewLightweight creates the lightweight HTTP strategy.
func NewLightweight() *Lightweight {
	return &Lightweight{}
}

func (l *Lightweight) Name() string { return "lightweight" }

func (l *Lightweight) Crawl(ctx context.Context, target string, opts Options) *Result {
	start := time.Now()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	resp, err := fetchHTTP(ctx, target, opts)
	if err != nil {
		slog.Debug("lightweight crawl failed", "target", target, "error", err)
		return FailedResult(target, l.Name(), start, 0, err.Error())
	}

	content := string(resp.Body)
	if opts.CSSSelector != "" {
		if filtered, selErr := cleaner.ApplyCSSSelector(content, opts.CSSSelector); selErr == nil {
			content = filtered
		}
	}

	meta := Metadata{
		Title:    extractTitle(resp.Body),
		FinalURL: resp.FinalURL,
		Extra: map[string]string{
			"visible_text_bytes": strconv.Itoa(len(visibleText(content))),
		},
	}

	return NewResult(target, l.Name(), start, resp.StatusCode, content, meta)
}

// visibleText strips tags, scripts and styles from an HTML fragment and
// returns the remaining text. Used for display-only metadata.
func visibleText(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return strings.TrimSpace(doc.Text())
}
