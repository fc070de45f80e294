package crawler

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/use-agent/crawlduel/cleaner"
	"github.com/use-agent/crawlduel/config"
	"github.com/use-agent/crawlduel/llm"
)

// AI is the extraction-heavy strategy: it fetches the page over HTTP, runs
// readability to isolate the main content, converts it to Markdown, and,
// when an LLM key is configured, asks an OpenAI-compatible model for a
// structured JSON digest. Slowest and most expensive, but its output is the
// most structured.
type AI struct {
	converter *converter.Converter
	llmClient *llm.Client
	llmCfg    config.LLMConfig
}

// NewAI creates the AI strategy. llmClient may be nil (or the configured
// APIKey empty) to skip the digest step; the strategy then produces clean
// Markdown only.
func NewAI(llmClient *llm.Client, llmCfg config.LLMConfig) *AI {
	return &AI{
		converter: cleaner.NewMarkdownConverter(),
		llmClient: llmClient,
		llmCfg:    llmCfg,
	}
}

func (a *AI) Name() string { return "ai" }

func (a *AI) Crawl(ctx context.Context, target string, opts Options) *Result {
	start := time.Now()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	resp, err := fetchHTTP(ctx, target, opts)
	if err != nil {
		slog.Debug("ai crawl fetch failed", "target", target, "error", err)
		return FailedResult(target, a.Name(), start, 0, err.Error())
	}

	rawHTML := string(resp.Body)
	if opts.CSSSelector != "" {
		if filtered, selErr := cleaner.ApplyCSSSelector(rawHTML, opts.CSSSelector); selErr == nil {
			rawHTML = filtered
		}
	}

	article, extracted := cleaner.ExtractContent(rawHTML, target)

	markdown, mdErr := cleaner.ToMarkdown(a.converter, article.Content, target)
	if mdErr != nil {
		return FailedResult(target, a.Name(), start, resp.StatusCode, "markdown conversion failed: "+mdErr.Error())
	}

	meta := Metadata{
		HasMarkdown: true,
		CleanText:   extracted,
		Title:       article.Title,
		FinalURL:    resp.FinalURL,
		Extra: map[string]string{
			"raw_tokens":     strconv.Itoa(cleaner.EstimateTokens(rawHTML)),
			"cleaned_tokens": strconv.Itoa(cleaner.EstimateTokens(markdown)),
		},
	}

	// Digest step: best-effort. A failed digest degrades the quality score
	// (no JSON bonus) but never fails the crawl.
	if a.llmClient != nil && a.llmCfg.APIKey != "" {
		digest, digestErr := a.llmClient.Digest(ctx, markdown, llm.DigestParams{
			APIKey:  a.llmCfg.APIKey,
			Model:   a.llmCfg.Model,
			BaseURL: a.llmCfg.BaseURL,
		})
		if digestErr != nil {
			slog.Warn("ai digest failed, returning markdown only", "target", target, "error", digestErr)
		} else {
			meta.HasJSON = true
			meta.Extra["digest"] = string(digest.Data)
			if digest.Usage != nil {
				meta.Extra["llm_tokens"] = strconv.Itoa(digest.Usage.TotalTokens)
			}
		}
	}

	return NewResult(target, a.Name(), start, resp.StatusCode, markdown, meta)
}
