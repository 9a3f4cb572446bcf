// Package storage defines the Storage interface, the contract any database
// backend must satisfy to serve the HTTP handlers, and the errors that
// cross that boundary.
//
// Handlers depend only on this interface, so tests can hand them a fake
// and the concrete backend is chosen once in main.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/students-api/internal/types"
)

// Error taxonomy. Implementations wrap these with fmt.Errorf("...: %w")
// and callers branch with errors.Is.
var (
	// ErrValidation means required input was missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means no record matches the given id.
	ErrNotFound = errors.New("student not found")

	// ErrNoFields means an update supplied none of name, age or course.
	ErrNoFields = errors.New("no fields provided to update")

	// ErrConnection means the database is unreachable or rejected the
	// credentials.
	ErrConnection = errors.New("database connection failed")
)

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a new student and returns the persisted record
	// including its generated id. Fails with ErrValidation when a
	// required field is missing.
	CreateStudent(ctx context.Context, s types.NewStudent) (types.Student, error)

	// GetStudentByID fetches a single student by primary key.
	// Returns ErrNotFound if no row matches.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// GetStudents returns every student ordered by id.
	// Returns an empty slice (not nil) if there are none.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID applies only the fields present in patch and
	// returns the affected-row count with the updated record.
	// Fails with ErrNoFields for an empty patch and ErrNotFound when
	// no row matches.
	UpdateStudentByID(ctx context.Context, id int64, patch types.StudentPatch) (int64, types.Student, error)

	// DeleteStudentByID removes a student and returns the affected-row
	// count (0 or 1). A missing row is not an error.
	DeleteStudentByID(ctx context.Context, id int64) (int64, error)

	// Ping checks the database is reachable.
	Ping(ctx context.Context) error
}
