package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// raceRequest mirrors the Crawlduel API request model.
type raceRequest struct {
	URL         string   `json:"url"`
	Strategies  []string `json:"strategies,omitempty"`
	Timeout     int      `json:"timeout,omitempty"`
	Stealth     bool     `json:"stealth,omitempty"`
	CSSSelector string   `json:"css_selector,omitempty"`
}

// raceReport mirrors the Crawlduel API response model.
type raceReport struct {
	Success    bool   `json:"success"`
	Target     string `json:"target"`
	Comparison []struct {
		StrategyName    string  `json:"strategy_name"`
		Succeeded       bool    `json:"succeeded"`
		ElapsedMs       int64   `json:"elapsed_ms"`
		StatusCode      int     `json:"status_code"`
		SizeBytes       int     `json:"size_bytes"`
		IntegrityOK     bool    `json:"integrity_ok"`
		IntegrityReason string  `json:"integrity_reason"`
		QualityScore    float64 `json:"quality_score"`
		ErrorMessage    string  `json:"error_message"`
	} `json:"comparison"`
	Winner *struct {
		StrategyName string  `json:"strategy_name"`
		QualityScore float64 `json:"quality_score"`
		IntegrityOK  bool    `json:"integrity_ok"`
		ElapsedMs    int64   `json:"elapsed_ms"`
		Reason       string  `json:"reason"`
	} `json:"winner"`
	CostBenefit []struct {
		StrategyName   string  `json:"strategy_name"`
		Cost           float64 `json:"cost"`
		QualityScore   float64 `json:"quality_score"`
		Ratio          float64 `json:"ratio"`
		Recommendation string  `json:"recommendation"`
	} `json:"cost_benefit"`
	Stats struct {
		Total         int   `json:"total"`
		Succeeded     int   `json:"succeeded"`
		MeanElapsedMs int64 `json:"mean_elapsed_ms"`
	} `json:"stats"`
	PreviousWinner string `json:"previous_winner"`
	TotalMs        int64  `json:"total_ms"`
	Error          *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("DUEL_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("DUEL_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "DUEL_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"crawlduel",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	raceURLTool := mcp.NewTool("race_url",
		mcp.WithDescription("Race multiple crawl strategies (plain HTTP, headless browser, AI extraction) against a URL and report which one wins on content quality, integrity and speed."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to race against"),
		),
		mcp.WithArray("strategies",
			mcp.Description("Strategies to include: any of 'lightweight', 'browser', 'ai'. Omit to race all of them."),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Per-strategy timeout in seconds (default: 30, max: 120)"),
		),
		mcp.WithBoolean("stealth",
			mcp.Description("Enable anti-bot-detection evasions on strategies that support them"),
		),
	)
	s.AddTool(raceURLTool, handleRaceURL(apiURL, apiKey))

	compareTool := mcp.NewTool("compare_strategies",
		mcp.WithDescription("Race all crawl strategies against a URL and return the cost-benefit comparison: which strategy delivers the best content quality per unit of resource cost."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to compare strategies on"),
		),
	)
	s.AddTool(compareTool, handleCompareStrategies(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the Crawlduel API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// runRace posts a race request and parses the report.
func runRace(ctx context.Context, client *http.Client, apiURL, apiKey string, reqBody raceRequest) (*raceReport, error) {
	respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/race", reqBody)
	if err != nil {
		return nil, err
	}

	var report raceReport
	if err := json.Unmarshal(respBody, &report); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &report, nil
}

func handleRaceURL(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := raceRequest{
			URL:     url,
			Timeout: int(request.GetFloat("timeout", 0)),
			Stealth: request.GetBool("stealth", false),
		}
		if strategies := request.GetStringSlice("strategies", nil); len(strategies) > 0 {
			reqBody.Strategies = strategies
		}

		report, err := runRace(ctx, client, apiURL, apiKey, reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("race request failed: %v", err)), nil
		}

		if !report.Success {
			errMsg := "race failed"
			if report.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", report.Error.Code, report.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Race: %s (%d strategies, %d succeeded, %dms total)\n\n",
			report.Target, report.Stats.Total, report.Stats.Succeeded, report.TotalMs))

		for _, row := range report.Comparison {
			status := "OK"
			if !row.IntegrityOK {
				status = "REJECTED: " + row.IntegrityReason
			}
			sb.WriteString(fmt.Sprintf("- %s: quality %.1f/100, %dms, HTTP %d, %d bytes — %s\n",
				row.StrategyName, row.QualityScore, row.ElapsedMs, row.StatusCode, row.SizeBytes, status))
		}

		if report.Winner != nil {
			sb.WriteString(fmt.Sprintf("\nWinner: %s\n%s\n", report.Winner.StrategyName, report.Winner.Reason))
		}
		if report.PreviousWinner != "" {
			sb.WriteString(fmt.Sprintf("Previous winner for this domain: %s\n", report.PreviousWinner))
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleCompareStrategies(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		report, err := runRace(ctx, client, apiURL, apiKey, raceRequest{URL: url})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("race request failed: %v", err)), nil
		}

		if !report.Success {
			errMsg := "comparison failed"
			if report.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", report.Error.Code, report.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Cost-benefit comparison for %s:\n\n", report.Target))
		for _, row := range report.CostBenefit {
			sb.WriteString(fmt.Sprintf("- %s: quality %.1f at cost %.1f → ratio %.1f (%s)\n",
				row.StrategyName, row.QualityScore, row.Cost, row.Ratio, row.Recommendation))
		}
		if report.Winner != nil {
			sb.WriteString(fmt.Sprintf("\nQuality winner: %s (%.1f/100)\n",
				report.Winner.StrategyName, report.Winner.QualityScore))
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
