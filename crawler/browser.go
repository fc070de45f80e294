package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/crawlduel/config"
)

// Browser is the high-fidelity strategy: a headless Chrome tab renders the
// page, so JavaScript-heavy sites produce real content. It is the most
// expensive strategy per crawl.
//
// One Browser instance owns the Chrome process and a reusable page pool;
// it is safe for concurrent use across races.
type Browser struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	cfg         config.BrowserConfig
	activePages atomic.Int32
}

// NewBrowser launches a headless Chrome and initialises the page pool.
func NewBrowser(cfg config.BrowserConfig) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	// Stealth flags
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch failed: %w", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect failed: %w", err)
	}

	pool := rod.NewPagePool(cfg.MaxPages)
	slog.Info("page pool created", "maxPages", cfg.MaxPages)

	return &Browser{
		browser:  browser,
		pagePool: pool,
		cfg:      cfg,
	}, nil
}

func (b *Browser) Name() string { return "browser" }

// ActivePages reports how many tabs are currently in use.
func (b *Browser) ActivePages() int { return int(b.activePages.Load()) }

// MaxPages reports the pool capacity.
func (b *Browser) MaxPages() int { return b.cfg.MaxPages }

// Crawl renders the target in a pooled Chrome tab.
//
// Order matters inside: stealth injection and the resource-blocking hijack
// router must be installed before Navigate, otherwise they only take effect
// for later navigations. The about:blank cleanup uses the original page
// reference (without the request context) so pool return succeeds even
// after the deadline expired.
func (b *Browser) Crawl(ctx context.Context, target string, opts Options) *Result {
	start := time.Now()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	b.activePages.Add(1)
	defer b.activePages.Add(-1)

	page, acquireErr := b.pagePool.Get(func() (*rod.Page, error) {
		return b.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return FailedResult(target, b.Name(), start, 0, "browser: page acquire failed: "+acquireErr.Error())
	}

	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		b.pagePool.Put(page)
	}()

	if opts.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	// Browser-like extra headers: user agent override + Google referer.
	extraHeaders := map[string]string{}
	if opts.UserAgent != "" {
		extraHeaders["User-Agent"] = opts.UserAgent
	}
	if u, parseErr := url.Parse(target); parseErr == nil {
		extraHeaders["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
	}
	if len(extraHeaders) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(extraHeaders),
		}.Call(page)
	}

	// Block heavy resources; the race only needs the DOM.
	router := setupHijack(page, b.cfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if navErr := p.Navigate(target); navErr != nil {
		return FailedResult(target, b.Name(), start, 0, "browser: navigation failed: "+navErr.Error())
	}

	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"target", target, "error", stableErr)
	}

	// Status code via the Performance API. CDP Network listeners would
	// conflict with the Fetch domain used by the hijack router.
	var statusCode int
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		statusCode = res.Value.Int()
	}

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return FailedResult(target, b.Name(), start, statusCode, "browser: HTML extraction failed: "+htmlErr.Error())
	}

	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = target
	}

	meta := Metadata{
		Title:    title,
		FinalURL: finalURL,
	}

	return NewResult(target, b.Name(), start, statusCode, rawHTML, meta)
}

// Close drains the page pool and kills the browser process. Call on
// graceful shutdown to prevent zombie Chrome processes.
func (b *Browser) Close() {
	slog.Info("browser shutting down: draining page pool")
	b.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	b.browser.MustClose()
	slog.Info("browser shutdown complete")
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
