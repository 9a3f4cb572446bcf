// Package gormstore implements storage.Storage on top of gorm, so the
// same code serves MySQL, PostgreSQL and SQLite. Dialect-specific SQL is
// limited to rewinding the id sequence after a delete.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/storage/connector"
	"github.com/aanand-mishra/students-api/internal/types"
)

// publicColumns is the projection returned to clients; the timestamp
// columns stay in the table but never leave the store.
var publicColumns = []string{"id", "name", "age", "course"}

// Store is the gorm-backed storage.Storage.
type Store struct {
	conn          *connector.Connector
	validate      *validator.Validate
	resetSequence bool
	log           *slog.Logger
}

var _ storage.Storage = (*Store)(nil)

// Option customises New.
type Option func(*Store)

// WithSequenceReset makes DeleteStudentByID rewind the id counter after a
// successful delete. The delete and the rewind are separate statements,
// so an insert racing between them may still see the old counter.
func WithSequenceReset(on bool) Option {
	return func(s *Store) { s.resetSequence = on }
}

// WithLogger sets the logger used for store-level events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns a Store using conn. The schema is expected to exist
// already (see connector.Sync).
func New(conn *connector.Connector, opts ...Option) *Store {
	s := &Store{
		conn:     conn,
		validate: validator.New(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) db(ctx context.Context) *gorm.DB {
	return s.conn.DB().WithContext(ctx)
}

// CreateStudent validates and inserts a new row, returning it with the
// generated id.
func (s *Store) CreateStudent(ctx context.Context, in types.NewStudent) (types.Student, error) {
	if err := s.validate.Struct(in); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w: %w", storage.ErrValidation, err)
	}

	student := types.Student{Name: in.Name, Age: in.Age, Course: in.Course}
	if err := s.db(ctx).Create(&student).Error; err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: insert: %w", err)
	}

	return student, nil
}

// GetStudentByID fetches exactly one student by primary key.
func (s *Store) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	var student types.Student

	err := s.db(ctx).Select(publicColumns).First(&student, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.Student{}, fmt.Errorf("GetStudentByID %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}

	return student, nil
}

// GetStudents returns all students in insertion (id) order.
func (s *Store) GetStudents(ctx context.Context) ([]types.Student, error) {
	students := make([]types.Student, 0)

	err := s.db(ctx).
		Select(publicColumns).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}

	return students, nil
}

// UpdateStudentByID writes only the columns present in patch, then
// re-reads the row so the caller gets exactly what is stored.
func (s *Store) UpdateStudentByID(ctx context.Context, id int64, patch types.StudentPatch) (int64, types.Student, error) {
	if patch.Empty() {
		return 0, types.Student{}, fmt.Errorf("UpdateStudentByID %d: %w", id, storage.ErrNoFields)
	}
	if err := s.validate.Struct(patch); err != nil {
		return 0, types.Student{}, fmt.Errorf("UpdateStudentByID: %w: %w", storage.ErrValidation, err)
	}

	res := s.db(ctx).
		Model(&types.Student{}).
		Where("id = ?", id).
		Updates(patch.Columns())
	if res.Error != nil {
		return 0, types.Student{}, fmt.Errorf("UpdateStudentByID: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, types.Student{}, fmt.Errorf("UpdateStudentByID %d: %w", id, storage.ErrNotFound)
	}

	updated, err := s.GetStudentByID(ctx, id)
	if err != nil {
		return res.RowsAffected, types.Student{}, err
	}
	return res.RowsAffected, updated, nil
}

// DeleteStudentByID removes a row by primary key and, when configured,
// rewinds the id sequence. Nothing is rewound if no row was deleted.
func (s *Store) DeleteStudentByID(ctx context.Context, id int64) (int64, error) {
	res := s.db(ctx).Delete(&types.Student{}, id)
	if res.Error != nil {
		return 0, fmt.Errorf("DeleteStudentByID: %w", res.Error)
	}
	if res.RowsAffected == 0 || !s.resetSequence {
		return res.RowsAffected, nil
	}

	if err := s.rewindSequence(ctx); err != nil {
		// The row is gone; a stale counter only means larger ids.
		s.log.Warn("failed to reset students id sequence",
			slog.Int64("deleted_id", id),
			slog.String("error", err.Error()))
	}
	return res.RowsAffected, nil
}

// rewindSequence moves the auto-increment counter back so the next insert
// takes the lowest id above the current maximum.
func (s *Store) rewindSequence(ctx context.Context) error {
	table := types.Student{}.TableName()

	var stmt string
	switch s.conn.Dialect() {
	case config.DialectMySQL:
		// MySQL clamps AUTO_INCREMENT to MAX(id)+1 on its own.
		stmt = fmt.Sprintf("ALTER TABLE %s AUTO_INCREMENT = 1", table)
	case config.DialectPostgres:
		stmt = fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)",
			table)
	case config.DialectSQLite:
		stmt = fmt.Sprintf(
			"UPDATE sqlite_sequence SET seq = (SELECT COALESCE(MAX(id), 0) FROM %[1]s) WHERE name = '%[1]s'",
			table)
	default:
		return fmt.Errorf("rewindSequence: unsupported dialect %q", s.conn.Dialect())
	}

	if _, err := s.conn.Query(ctx, stmt); err != nil {
		return fmt.Errorf("rewindSequence: %w", err)
	}
	return nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Authenticate(ctx)
}
