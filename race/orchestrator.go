// Package race runs a set of crawl strategies concurrently against one
// target and streams their results as they finish.
package race

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/crawlduel/antibot"
	"github.com/use-agent/crawlduel/crawler"
)

// DefaultStrategyTimeout is the orchestration-level deadline applied to each
// strategy when none is configured.
const DefaultStrategyTimeout = 30 * time.Second

// Entry is one participant in a race.
type Entry struct {
	// Name identifies the strategy within the race. Unique per race.
	Name string

	// Crawler is the strategy implementation.
	Crawler crawler.Crawler

	// Options is the strategy's configuration bag. The orchestrator
	// decorates it (user agent, proxy) and fills a default timeout.
	Options crawler.Options
}

// Event reports one finished strategy. Events arrive in completion order;
// the channel closes once every entry has produced a Result.
type Event struct {
	Result    *crawler.Result
	Completed int
	Total     int
}

// Orchestrator executes races. Each strategy runs in its own goroutine with
// an independent external timeout; a slow or stuck strategy never delays or
// aborts its siblings, and a panicking one is caught at the boundary.
type Orchestrator struct {
	timeout   time.Duration
	decorator *antibot.Decorator
}

// NewOrchestrator creates an Orchestrator. timeout is the per-strategy
// orchestration-level deadline (DefaultStrategyTimeout when zero); decorator
// may be nil to skip request decoration.
func NewOrchestrator(timeout time.Duration, decorator *antibot.Decorator) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultStrategyTimeout
	}
	return &Orchestrator{timeout: timeout, decorator: decorator}
}

// Race launches every entry concurrently and returns the event stream.
// Exactly len(entries) events are delivered; a strategy that times out,
// panics, or is abandoned by caller cancellation yields a synthesized
// failure Result so the aggregate is always complete.
//
// Duplicate entry names are rejected before anything is launched.
func (o *Orchestrator) Race(ctx context.Context, target string, entries []Entry) (<-chan Event, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("race: no strategies to run")
	}
	seen := make(map[string]struct{}, len(entries))
	for _, ent := range entries {
		if _, dup := seen[ent.Name]; dup {
			return nil, fmt.Errorf("race: duplicate strategy name %q", ent.Name)
		}
		seen[ent.Name] = struct{}{}
	}

	results := make(chan *crawler.Result, len(entries))

	for _, ent := range entries {
		go o.runStrategy(ctx, target, ent, results)
	}

	// Single collector: the only writer to the event stream, so consumers
	// get a naturally ordered completion sequence without locking.
	events := make(chan Event, len(entries))
	go func() {
		defer close(events)
		for i := 1; i <= len(entries); i++ {
			res := <-results
			slog.Debug("strategy finished",
				"strategy", res.StrategyName,
				"target", target,
				"succeeded", res.Succeeded,
				"elapsed", res.Elapsed,
			)
			events <- Event{Result: res, Completed: i, Total: len(entries)}
		}
	}()

	return events, nil
}

// Run is the blocking convenience form of Race: it drains the event stream
// and returns the aggregated results in completion order.
func (o *Orchestrator) Run(ctx context.Context, target string, entries []Entry) ([]*crawler.Result, error) {
	events, err := o.Race(ctx, target, entries)
	if err != nil {
		return nil, err
	}
	out := make([]*crawler.Result, 0, len(entries))
	for ev := range events {
		out = append(out, ev.Result)
	}
	return out, nil
}

// runStrategy executes one entry with decoration, panic isolation and the
// external timeout. It always delivers exactly one Result.
func (o *Orchestrator) runStrategy(ctx context.Context, target string, ent Entry, results chan<- *crawler.Result) {
	opts := ent.Options
	if o.decorator != nil {
		o.decorator.Decorate(&opts)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = o.timeout
	}

	start := time.Now()
	done := make(chan *crawler.Result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				// The isolation contract says crawlers never panic, but a
				// misbehaving one must not take the race down with it.
				done <- crawler.FailedResult(target, ent.Name, start, 0, fmt.Sprintf("panic: %v", rec))
			}
		}()
		done <- ent.Crawler.Crawl(ctx, target, opts)
	}()

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res == nil {
			res = crawler.FailedResult(target, ent.Name, start, 0, "strategy returned no result")
		}
		// The entry name is authoritative within the race.
		res.StrategyName = ent.Name
		res.Target = target
		results <- res

	case <-timer.C:
		slog.Warn("strategy timed out", "strategy", ent.Name, "target", target, "timeout", o.timeout)
		results <- &crawler.Result{
			Target:       target,
			StrategyName: ent.Name,
			Succeeded:    false,
			Elapsed:      o.timeout,
			ErrorMessage: "timeout",
		}

	case <-ctx.Done():
		// Caller shutdown: abandon the in-flight crawl. The underlying
		// network or browser activity is not guaranteed to have stopped.
		slog.Warn("strategy abandoned by caller cancellation", "strategy", ent.Name, "target", target)
		results <- &crawler.Result{
			Target:       target,
			StrategyName: ent.Name,
			Succeeded:    false,
			Elapsed:      time.Since(start),
			ErrorMessage: "cancelled",
		}
	}
}
