// Package student contains the HTTP handlers for the Student resource.
//
// Each exported function is a factory: it receives the storage once at
// route registration and returns the gin.HandlerFunc that serves every
// request, closing over that storage.
//
//	v1.POST("/student", student.New(store))
package student

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/students-api/internal/http/middleware"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
	"github.com/aanand-mishra/students-api/internal/utils/response"
)

// New handles POST /student.
//
// Request body:
//
//	{ "name": "John Doe", "age": 22, "course": "Computer Science" }
//
// Responses:
//
//	201 { "message": "Created Successfully", "student": {...} }
//	400 malformed JSON, or any of name/age/course missing
//	500 database error
func New(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := middleware.LoggerFrom(c)

		var in types.NewStudent
		// An empty body decodes to the zero payload and fails validation
		// below with the missing-fields message.
		if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, response.GeneralError(err))
			return
		}

		student, err := store.CreateStudent(c.Request.Context(), in)
		if err != nil {
			var verrs validator.ValidationErrors
			switch {
			case errors.As(err, &verrs):
				c.JSON(http.StatusBadRequest, response.ValidationError(response.MsgMissingFields, verrs))
			case errors.Is(err, storage.ErrValidation):
				c.JSON(http.StatusBadRequest, response.Message(response.MsgMissingFields))
			default:
				internalError(c, log, "error creating student", err)
			}
			return
		}

		log.Info("student created", slog.Int64("id", student.ID))
		c.JSON(http.StatusCreated, response.WithStudent(response.MsgCreated, student))
	}
}

// GetByID handles GET /student/:id.
//
//	200 the student (no timestamps)
//	403 empty id
//	400 id is not an integer
//	404 { "message": "Student not found in the database" }
func GetByID(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := middleware.LoggerFrom(c)

		id, ok := pathID(c)
		if !ok {
			return
		}

		student, err := store.GetStudentByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				log.Info("student not found", slog.Int64("id", id))
				c.JSON(http.StatusNotFound, response.Message(response.MsgNotFoundInDB))
				return
			}
			internalError(c, log, "error getting student", err)
			return
		}

		c.JSON(http.StatusOK, student)
	}
}

// GetList handles GET /students. An empty table yields [] rather than null.
func GetList(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := middleware.LoggerFrom(c)

		students, err := store.GetStudents(c.Request.Context())
		if err != nil {
			internalError(c, log, "error getting students", err)
			return
		}

		log.Debug("listed students", slog.Int("count", len(students)))
		c.JSON(http.StatusOK, students)
	}
}

// Update handles PATCH /student/:id. Only the fields present in the body
// change; the rest keep their stored values.
//
//	200 { "message": "Updated successfully", "student": {...} }
//	400 no fields, invalid values, or malformed JSON
//	403 empty id
//	404 { "message": "Student not found in the database" }
func Update(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := middleware.LoggerFrom(c)

		id, ok := pathID(c)
		if !ok {
			return
		}

		var patch types.StudentPatch
		if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, response.GeneralError(err))
			return
		}

		_, updated, err := store.UpdateStudentByID(c.Request.Context(), id, patch)
		if err != nil {
			var verrs validator.ValidationErrors
			switch {
			case errors.Is(err, storage.ErrNoFields):
				c.JSON(http.StatusBadRequest, response.Message(response.MsgNoFields))
			case errors.As(err, &verrs):
				c.JSON(http.StatusBadRequest, response.ValidationError(response.MsgInvalidFields, verrs))
			case errors.Is(err, storage.ErrValidation):
				c.JSON(http.StatusBadRequest, response.Message(response.MsgInvalidFields))
			case errors.Is(err, storage.ErrNotFound):
				c.JSON(http.StatusNotFound, response.Message(response.MsgNotFoundInDB))
			default:
				internalError(c, log, "error updating student", err)
			}
			return
		}

		log.Info("student updated", slog.Int64("id", id))
		c.JSON(http.StatusOK, response.WithStudent(response.MsgUpdated, updated))
	}
}

// Delete handles DELETE /student/:id.
//
//	200 { "message": "Deleted successfully" }
//	403 empty id
//	404 { "message": "Student not found" }
func Delete(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := middleware.LoggerFrom(c)

		id, ok := pathID(c)
		if !ok {
			return
		}

		n, err := store.DeleteStudentByID(c.Request.Context(), id)
		if err != nil {
			internalError(c, log, "error deleting student", err)
			return
		}
		if n == 0 {
			c.JSON(http.StatusNotFound, response.Message(response.MsgNotFound))
			return
		}

		log.Info("student deleted", slog.Int64("id", id))
		c.JSON(http.StatusOK, response.Message(response.MsgDeleted))
	}
}

// pathID parses the :id segment, writing the error response itself when
// the segment is empty or not an integer.
func pathID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	if raw == "" {
		c.JSON(http.StatusForbidden, response.Message(response.MsgMissingID))
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Message(response.MsgInvalidID))
		return 0, false
	}
	return id, true
}

func internalError(c *gin.Context, log *slog.Logger, msg string, err error) {
	log.Error(msg,
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, response.Message(response.MsgInternal))
}
