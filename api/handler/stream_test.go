package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/crawlduel/race"
)

// closeNotifyRecorder adds http.CloseNotifier to httptest.ResponseRecorder,
// which gin's Context.Stream requires from the underlying ResponseWriter.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (c *closeNotifyRecorder) CloseNotify() <-chan bool { return c.closed }

func TestStreamHandler_EmitsResultsThenReport(t *testing.T) {
	gin.SetMode(gin.TestMode)

	orch := race.NewOrchestrator(time.Second, nil)
	r := gin.New()
	r.POST("/race/stream", Stream(orch, testStrategies(), testConfig(), nil))

	w := newCloseNotifyRecorder()
	req := httptest.NewRequest(http.MethodPost, "/race/stream", strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

	body := w.Body.String()

	// One per-strategy event per participant, then the terminal aggregate.
	assert.Equal(t, 2, strings.Count(body, `"kind":"result"`))
	assert.Equal(t, 1, strings.Count(body, `"kind":"report"`))
	assert.Contains(t, body, `"strategy_name":"lightweight"`)
	assert.Contains(t, body, `"strategy_name":"browser"`)

	// The terminal event carries the winner.
	assert.Contains(t, body, `"winner"`)
}

func TestStreamHandler_InvalidRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	orch := race.NewOrchestrator(time.Second, nil)
	r := gin.New()
	r.POST("/race/stream", Stream(orch, testStrategies(), testConfig(), nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/race/stream", strings.NewReader(`{"strategies":["lightweight"]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
