package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/crawlduel/cache"
	"github.com/use-agent/crawlduel/config"
	"github.com/use-agent/crawlduel/crawler"
	"github.com/use-agent/crawlduel/models"
	"github.com/use-agent/crawlduel/race"
)

// stubCrawler returns a canned Result without touching the network.
type stubCrawler struct {
	name       string
	statusCode int
	meta       crawler.Metadata
}

func (s *stubCrawler) Name() string { return s.name }

func (s *stubCrawler) Crawl(ctx context.Context, target string, opts crawler.Options) *crawler.Result {
	return crawler.NewResult(target, s.name, time.Now(), s.statusCode,
		strings.Repeat("extracted page content ", 10), s.meta)
}

func testConfig() *config.Config {
	return &config.Config{
		Costs: config.CostConfig{Lightweight: 1, Browser: 5, AI: 10},
	}
}

func testStrategies() []crawler.Crawler {
	return []crawler.Crawler{
		&stubCrawler{name: "lightweight", statusCode: 200},
		&stubCrawler{name: "browser", statusCode: 403},
	}
}

func newRaceRouter(t *testing.T, cc *cache.Cache, wm *race.WinnerMemory) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orch := race.NewOrchestrator(time.Second, nil)
	r := gin.New()
	r.POST("/race", Race(orch, testStrategies(), testConfig(), cc, wm))
	return r
}

func postRace(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, *models.RaceReport) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/race", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var report models.RaceReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	return w, &report
}

func TestRaceHandler_FullReport(t *testing.T) {
	wm := race.NewWinnerMemory(time.Minute)
	defer wm.Stop()
	r := newRaceRouter(t, nil, wm)

	w, report := postRace(t, r, `{"url":"https://example.com"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, report.Success)
	assert.Equal(t, "https://example.com", report.Target)
	require.Len(t, report.Comparison, 2)

	// The 403 strategy loses on integrity even at equal quality.
	require.NotNil(t, report.Winner)
	assert.Equal(t, "lightweight", report.Winner.StrategyName)
	assert.True(t, report.Winner.IntegrityOK)

	require.Len(t, report.CostBenefit, 2)
	assert.Equal(t, 2, report.Stats.Total)
	assert.Empty(t, report.PreviousWinner)
}

func TestRaceHandler_PreviousWinnerRemembered(t *testing.T) {
	wm := race.NewWinnerMemory(time.Minute)
	defer wm.Stop()
	r := newRaceRouter(t, nil, wm)

	_, first := postRace(t, r, `{"url":"https://example.com"}`)
	require.True(t, first.Success)

	_, second := postRace(t, r, `{"url":"https://example.com/another-page"}`)
	assert.Equal(t, "lightweight", second.PreviousWinner)
}

func TestRaceHandler_StrategySubset(t *testing.T) {
	r := newRaceRouter(t, nil, nil)

	w, report := postRace(t, r, `{"url":"https://example.com","strategies":["browser"]}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, report.Comparison, 1)
	assert.Equal(t, "browser", report.Comparison[0].StrategyName)
}

func TestRaceHandler_UnknownStrategy(t *testing.T) {
	r := newRaceRouter(t, nil, nil)

	w, report := postRace(t, r, `{"url":"https://example.com","strategies":["teleport"]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, report.Success)
	require.NotNil(t, report.Error)
	assert.Equal(t, models.ErrCodeInvalidInput, report.Error.Code)
}

func TestRaceHandler_MissingURL(t *testing.T) {
	r := newRaceRouter(t, nil, nil)

	w, report := postRace(t, r, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, report.Error)
	assert.Equal(t, models.ErrCodeInvalidInput, report.Error.Code)
}

func TestRaceHandler_CacheHit(t *testing.T) {
	cc := cache.New(10)
	r := newRaceRouter(t, cc, nil)

	_, first := postRace(t, r, `{"url":"https://example.com","max_age":60000}`)
	assert.Equal(t, "miss", first.CacheStatus)

	_, second := postRace(t, r, `{"url":"https://example.com","max_age":60000}`)
	assert.Equal(t, "hit", second.CacheStatus)
}

func TestBuildEntries_PreservesRegistrationOrder(t *testing.T) {
	req := &models.RaceRequest{URL: "https://example.com", Timeout: 30}

	entries, err := buildEntries(testStrategies(), req)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "lightweight", entries[0].Name)
	assert.Equal(t, "browser", entries[1].Name)
	assert.Equal(t, 30*time.Second, entries[0].Options.Timeout)
}

func TestBuildEntries_EmptySelectionAfterFilter(t *testing.T) {
	req := &models.RaceRequest{URL: "https://example.com", Strategies: []string{}}
	entries, err := buildEntries(nil, req)
	require.Error(t, err)
	assert.Nil(t, entries)
}

func TestRowFromResult_CarriesErrorMessage(t *testing.T) {
	r := crawler.FailedResult("https://example.com", "browser", time.Now(), 0, "navigation failed")

	row := rowFromResult(r)
	assert.False(t, row.Succeeded)
	assert.False(t, row.IntegrityOK)
	assert.Equal(t, "navigation failed", row.ErrorMessage)
	assert.Equal(t, "navigation failed", row.IntegrityReason)
}

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeInvalidInput, http.StatusBadRequest},
		{models.ErrCodeEmptyRun, http.StatusBadRequest},
		{models.ErrCodeRaceTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeRateLimited, http.StatusTooManyRequests},
		{models.ErrCodeUnauthorized, http.StatusUnauthorized},
		{models.ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		e := models.NewRaceError(tt.code, "msg", nil)
		assert.Equal(t, tt.want, mapErrorToStatus(e), "code %s", tt.code)
	}
}
