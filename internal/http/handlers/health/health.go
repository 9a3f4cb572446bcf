// Package health serves the greeting and the liveness report.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aanand-mishra/students-api/internal/http/middleware"
	"github.com/aanand-mishra/students-api/internal/utils/response"
)

const pingTimeout = 2 * time.Second

// Pinger is anything whose reachability the health check reports on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Report is the GET /healthcheck body.
type Report struct {
	// Uptime is seconds since the process started.
	Uptime float64 `json:"uptime"`
	// ResponseTime is milliseconds spent building this report.
	ResponseTime float64 `json:"responseTime"`
	Message      string  `json:"message"`
	// Timestamp is Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Greeting handles GET /.
func Greeting(c *gin.Context) {
	c.String(http.StatusOK, response.MsgGreeting)
}

// Check handles GET /healthcheck. It answers 503 with an empty body when
// the database cannot be pinged.
func Check(db Pinger, startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			middleware.LoggerFrom(c).Error("healthcheck failed", slog.String("error", err.Error()))
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}

		now := time.Now()
		c.JSON(http.StatusOK, Report{
			Uptime:       now.Sub(startedAt).Seconds(),
			ResponseTime: float64(now.Sub(begin).Microseconds()) / 1000,
			Message:      response.MsgHealthy,
			Timestamp:    now.UnixMilli(),
		})
	}
}
