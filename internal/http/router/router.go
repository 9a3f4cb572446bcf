// Package router assembles the gin engine: middleware, the /api/v1
// group and its routes.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/http/handlers/health"
	"github.com/aanand-mishra/students-api/internal/http/handlers/student"
	"github.com/aanand-mishra/students-api/internal/http/middleware"
	"github.com/aanand-mishra/students-api/internal/storage"
)

// BasePath prefixes every route.
const BasePath = "/api/v1"

// Options carries what the router needs from main.
type Options struct {
	Env       string
	Store     storage.Storage
	Logger    *slog.Logger
	StartedAt time.Time
}

// New builds the HTTP handler.
//
// Route table (under /api/v1):
//
//	GET    /              greeting
//	GET    /healthcheck   liveness + database ping
//	GET    /students      list all students
//	POST   /student       create a student
//	GET    /student/:id   get one student
//	PATCH  /student/:id   partially update a student
//	DELETE /student/:id   delete a student
func New(opts Options) *gin.Engine {
	gin.SetMode(ginMode(opts.Env))

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	startedAt := opts.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery())
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	v1 := r.Group(BasePath)
	{
		v1.GET("/", health.Greeting)
		v1.GET("/healthcheck", health.Check(opts.Store, startedAt))

		v1.GET("/students", student.GetList(opts.Store))
		v1.POST("/student", student.New(opts.Store))
		v1.GET("/student/:id", student.GetByID(opts.Store))
		v1.PATCH("/student/:id", student.Update(opts.Store))
		v1.DELETE("/student/:id", student.Delete(opts.Store))
	}

	return r
}

func ginMode(env string) string {
	switch env {
	case config.EnvProduction:
		return gin.ReleaseMode
	case config.EnvTest:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
