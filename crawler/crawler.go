package crawler

import (
	"context"
	"time"
)

// Crawler is the interface every racing strategy implements.
//
// Isolation contract: Crawl never returns nil and never propagates an
// internal fault to the caller. Network errors, parse errors and external
// API errors are converted into a Result with Succeeded=false and a
// populated ErrorMessage. A Crawler must also respect its own
// Options.Timeout and never block past it; the orchestrator enforces an
// independent external deadline on top as a backstop.
type Crawler interface {
	// Name returns the strategy identifier (e.g. "lightweight", "browser", "ai").
	Name() string

	// Crawl fetches and extracts content from the target URL.
	Crawl(ctx context.Context, target string, opts Options) *Result
}

// Options is the per-race configuration bag passed to every strategy.
type Options struct {
	// Timeout is the strategy's internally-applied deadline.
	Timeout time.Duration

	// UserAgent overrides the strategy's default User-Agent when non-empty.
	UserAgent string

	// Proxy routes the strategy's traffic through a proxy when set.
	Proxy *ProxyConfig

	// CSSSelector optionally narrows the content to matching elements
	// before extraction. Strategies that cannot honour it ignore it.
	CSSSelector string

	// Stealth enables anti-bot-detection evasions on strategies that
	// support them (currently only the browser strategy).
	Stealth bool
}

// ProxyConfig identifies an upstream proxy.
type ProxyConfig struct {
	Host   string // "host:port"
	Scheme string // "http" or "socks5"
}

// URL renders the proxy as a URL string, e.g. "http://127.0.0.1:8080".
func (p *ProxyConfig) URL() string {
	if p == nil || p.Host == "" {
		return ""
	}
	scheme := p.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + p.Host
}
