// Package response builds the JSON bodies the handlers send back.
//
// Every non-2xx body has the same shape:
//
//	{ "message": "Student not found in the database" }
//
// Validation failures add a per-field list:
//
//	{ "message": "Missing required fields: name, age, course",
//	  "errors": ["field course is required"] }
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/students-api/internal/types"
)

// Messages shared by handlers and tests.
const (
	MsgCreated       = "Created Successfully"
	MsgUpdated       = "Updated successfully"
	MsgDeleted       = "Deleted successfully"
	MsgMissingFields = "Missing required fields: name, age, course"
	MsgNoFields      = "No fields provided to update"
	MsgNotFoundInDB  = "Student not found in the database"
	MsgNotFound      = "Student not found"
	MsgMissingID     = "Please provide an Id"
	MsgInvalidFields = "Invalid field values"
	MsgInvalidID     = "invalid id: must be an integer"
	MsgInternal      = "Internal server error"
	MsgHealthy       = "OK"
	MsgGreeting      = "Hello, World!"
)

// Response is the envelope for messages and errors.
type Response struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// StudentResponse is returned by create and update.
type StudentResponse struct {
	Message string        `json:"message"`
	Student types.Student `json:"student"`
}

// Message wraps a plain message.
func Message(msg string) Response {
	return Response{Message: msg}
}

// GeneralError wraps an error's text. Only use it for errors whose text is
// safe to show a client (decode errors and the like), never for 500s.
func GeneralError(err error) Response {
	return Response{Message: err.Error()}
}

// WithStudent pairs a message with a record.
func WithStudent(msg string, s types.Student) StudentResponse {
	return StudentResponse{Message: msg, Student: s}
}

// ValidationError converts validator.ValidationErrors into a Response
// headed by msg, with one readable line per failing field.
func ValidationError(msg string, errs validator.ValidationErrors) Response {
	lines := make([]string, 0, len(errs))

	for _, e := range errs {
		field := strings.ToLower(e.Field())
		switch e.ActualTag() {
		case "required":
			lines = append(lines, fmt.Sprintf("field %s is required", field))
		case "min":
			lines = append(lines, fmt.Sprintf("field %s must not be empty", field))
		case "gt":
			lines = append(lines, fmt.Sprintf("field %s must be greater than %s", field, e.Param()))
		default:
			lines = append(lines, fmt.Sprintf("field %s is invalid", field))
		}
	}

	return Response{Message: msg, Errors: lines}
}
