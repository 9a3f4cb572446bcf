package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewJSONHandler(buf, nil))

	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery())
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func TestRequestIDGenerated(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
	assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestRequestIDPropagated(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRecoveryReturnsGeneric500(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.NotContains(t, w.Body.String(), "boom")
}
