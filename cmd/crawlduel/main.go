package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/use-agent/crawlduel/antibot"
	"github.com/use-agent/crawlduel/api"
	"github.com/use-agent/crawlduel/cache"
	"github.com/use-agent/crawlduel/config"
	"github.com/use-agent/crawlduel/crawler"
	"github.com/use-agent/crawlduel/llm"
	"github.com/use-agent/crawlduel/race"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("crawlduel starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browserEnabled", cfg.Browser.Enabled,
	)

	// ── 3. Register strategies ──────────────────────────────────────
	// Registration order is the insertion order used for winner tie-breaks.
	strategies := []crawler.Crawler{
		crawler.NewLightweight(),
	}

	var browser *crawler.Browser
	if cfg.Browser.Enabled {
		var err error
		browser, err = crawler.NewBrowser(cfg.Browser)
		if err != nil {
			slog.Error("failed to initialise browser strategy", "error", err)
			os.Exit(1)
		}
		defer browser.Close()
		strategies = append(strategies, browser)
	}

	strategies = append(strategies, crawler.NewAI(llm.NewClient(nil), cfg.LLM))

	// ── 4. Initialise race plumbing ─────────────────────────────────
	decorator := antibot.New(cfg.Antibot.Proxies, cfg.Antibot.UserAgents, time.Now().UnixNano())
	orch := race.NewOrchestrator(cfg.Race.StrategyTimeout, decorator)

	wm := race.NewWinnerMemory(cfg.Race.WinnerMemoryTTL)
	defer wm.Stop()

	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(orch, strategies, browser, cfg, cc, wm, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight races 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// browser.Close() runs via defer — drains page pool and kills Chrome.
	slog.Info("crawlduel stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
