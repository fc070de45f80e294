// Package antibot provides request decoration for the racing strategies:
// randomized user agents, proxy rotation and browser-like header sets.
// The race core treats it as a black box invoked once per strategy per race.
package antibot

import (
	"math/rand"
	"net/url"
	"sync"

	"github.com/use-agent/crawlduel/crawler"
)

// Curated user-agent pools. Kept current enough to pass naive UA filters;
// exact versions don't matter for the race itself.
var chromeUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
}

var firefoxUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
}

var safariUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
}

// Decorator hands out user agents and proxies for outgoing requests.
// Safe for concurrent use.
type Decorator struct {
	mu         sync.Mutex
	userAgents []string
	proxies    []crawler.ProxyConfig
	proxyIndex int
	rng        *rand.Rand
}

// New creates a Decorator. Empty proxies means direct connections; empty
// customUserAgents falls back to the built-in pools.
func New(proxies []string, customUserAgents []string, seed int64) *Decorator {
	uas := customUserAgents
	if len(uas) == 0 {
		uas = append(uas, chromeUserAgents...)
		uas = append(uas, firefoxUserAgents...)
		uas = append(uas, safariUserAgents...)
	}

	parsed := make([]crawler.ProxyConfig, 0, len(proxies))
	for _, p := range proxies {
		if cfg, ok := parseProxy(p); ok {
			parsed = append(parsed, cfg)
		}
	}

	return &Decorator{
		userAgents: uas,
		proxies:    parsed,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// UserAgent returns a random user agent string from the pool.
func (d *Decorator) UserAgent() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.userAgents[d.rng.Intn(len(d.userAgents))]
}

// NextProxy returns the next proxy in round-robin order, or nil when no
// proxies are configured.
func (d *Decorator) NextProxy() *crawler.ProxyConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.proxies) == 0 {
		return nil
	}
	p := d.proxies[d.proxyIndex]
	d.proxyIndex = (d.proxyIndex + 1) % len(d.proxies)
	return &p
}

// RandomProxy returns a random proxy, or nil when no proxies are configured.
func (d *Decorator) RandomProxy() *crawler.ProxyConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.proxies) == 0 {
		return nil
	}
	p := d.proxies[d.rng.Intn(len(d.proxies))]
	return &p
}

// Decorate fills the user agent and proxy on a strategy's options. Called
// exactly once per strategy per race.
func (d *Decorator) Decorate(opts *crawler.Options) {
	opts.UserAgent = d.UserAgent()
	opts.Proxy = d.NextProxy()
}

// parseProxy accepts "scheme://host:port" or bare "host:port" (http assumed).
func parseProxy(raw string) (crawler.ProxyConfig, bool) {
	if raw == "" {
		return crawler.ProxyConfig{}, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// Bare host:port form.
		return crawler.ProxyConfig{Host: raw, Scheme: "http"}, true
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return crawler.ProxyConfig{Host: u.Host, Scheme: scheme}, true
}
