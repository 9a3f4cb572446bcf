package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(h gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestGreeting(t *testing.T) {
	w := serve(Greeting)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello, World!", w.Body.String())
}

func TestCheckHealthy(t *testing.T) {
	started := time.Now().Add(-90 * time.Second)
	w := serve(Check(pingFunc(func(context.Context) error { return nil }), started))

	require.Equal(t, http.StatusOK, w.Code)

	var rep Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, "OK", rep.Message)
	assert.GreaterOrEqual(t, rep.Uptime, 90.0)
	assert.GreaterOrEqual(t, rep.ResponseTime, 0.0)
	assert.InDelta(t, time.Now().UnixMilli(), rep.Timestamp, 5000)
}

func TestCheckPingHasDeadline(t *testing.T) {
	var hadDeadline bool
	serve(Check(pingFunc(func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}), time.Now()))

	assert.True(t, hadDeadline)
}

func TestCheckUnhealthy(t *testing.T) {
	w := serve(Check(pingFunc(func(context.Context) error { return errors.New("connection refused") }), time.Now()))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Body.String())
}
