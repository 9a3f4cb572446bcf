package gormstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/storage/gormstore"
	"github.com/aanand-mishra/students-api/internal/testutil"
	"github.com/aanand-mishra/students-api/internal/types"
)

func ptr[T any](v T) *T { return &v }

func newStudent(name string, age int, course string) types.NewStudent {
	return types.NewStudent{Name: name, Age: age, Course: course}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	created, err := store.CreateStudent(ctx, newStudent("John Doe", 22, "Computer Science"))
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	got, err := store.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "John Doe", got.Name)
	assert.Equal(t, 22, got.Age)
	assert.Equal(t, "Computer Science", got.Course)
	assert.True(t, got.CreatedAt.IsZero(), "timestamps are not part of the projection")
}

func TestCreateIssuesDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		s, err := store.CreateStudent(ctx, newStudent("S", 20+i, "C"))
		require.NoError(t, err)
		assert.False(t, seen[s.ID], "id %d issued twice", s.ID)
		seen[s.ID] = true
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	tests := []struct {
		name string
		in   types.NewStudent
	}{
		{"missing name", newStudent("", 22, "CS")},
		{"missing age", newStudent("John", 0, "CS")},
		{"missing course", newStudent("John", 22, "")},
		{"negative age", newStudent("John", -1, "CS")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateStudent(ctx, tt.in)
			assert.ErrorIs(t, err, storage.ErrValidation)
		})
	}

	all, err := store.GetStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing may be persisted on validation failure")
}

func TestGetStudentByIDNotFound(t *testing.T) {
	_, err := testutil.NewStore(t).GetStudentByID(context.Background(), 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetStudentsOrderedAndNonNil(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	all, err := store.GetStudents(ctx)
	require.NoError(t, err)
	require.NotNil(t, all)
	assert.Len(t, all, 0)

	for _, name := range []string{"Student 1", "Student 2", "Student 3"} {
		_, err := store.CreateStudent(ctx, newStudent(name, 20, "Course"))
		require.NoError(t, err)
	}

	all, err = store.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, s := range all {
		assert.Equal(t, int64(i+1), s.ID)
	}
	assert.Equal(t, "Student 1", all[0].Name)
	assert.Equal(t, "Student 3", all[2].Name)
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	created, err := store.CreateStudent(ctx, newStudent("John Doe", 22, "Computer Science"))
	require.NoError(t, err)

	n, updated, err := store.UpdateStudentByID(ctx, created.ID, types.StudentPatch{Age: ptr(21)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 21, updated.Age)
	assert.Equal(t, "John Doe", updated.Name)
	assert.Equal(t, "Computer Science", updated.Course)
}

func TestUpdateAllFields(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	created, err := store.CreateStudent(ctx, newStudent("John Doe", 22, "Computer Science"))
	require.NoError(t, err)

	_, updated, err := store.UpdateStudentByID(ctx, created.ID, types.StudentPatch{
		Name:   ptr("Jane Doe"),
		Age:    ptr(23),
		Course: ptr("Mathematics"),
	})
	require.NoError(t, err)
	assert.Equal(t, types.Student{ID: created.ID, Name: "Jane Doe", Age: 23, Course: "Mathematics"}, updated)
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	created, err := store.CreateStudent(ctx, newStudent("John Doe", 22, "CS"))
	require.NoError(t, err)

	_, _, err = store.UpdateStudentByID(ctx, created.ID, types.StudentPatch{})
	assert.ErrorIs(t, err, storage.ErrNoFields)

	_, _, err = store.UpdateStudentByID(ctx, 999, types.StudentPatch{Age: ptr(21)})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, _, err = store.UpdateStudentByID(ctx, created.ID, types.StudentPatch{Name: ptr("")})
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	created, err := store.CreateStudent(ctx, newStudent("John Doe", 22, "CS"))
	require.NoError(t, err)

	n, err := store.DeleteStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetStudentByID(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	n, err = store.DeleteStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteWithoutResetKeepsCounter(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	_, err := store.CreateStudent(ctx, newStudent("A", 20, "C"))
	require.NoError(t, err)
	second, err := store.CreateStudent(ctx, newStudent("B", 20, "C"))
	require.NoError(t, err)

	_, err = store.DeleteStudentByID(ctx, second.ID)
	require.NoError(t, err)

	third, err := store.CreateStudent(ctx, newStudent("C", 20, "C"))
	require.NoError(t, err)
	assert.Equal(t, second.ID+1, third.ID)
}

func TestDeleteWithResetReclaimsIDs(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t, gormstore.WithSequenceReset(true), gormstore.WithLogger(testutil.DiscardLogger()))

	first, err := store.CreateStudent(ctx, newStudent("A", 20, "C"))
	require.NoError(t, err)
	second, err := store.CreateStudent(ctx, newStudent("B", 20, "C"))
	require.NoError(t, err)

	_, err = store.DeleteStudentByID(ctx, second.ID)
	require.NoError(t, err)

	again, err := store.CreateStudent(ctx, newStudent("C", 20, "C"))
	require.NoError(t, err)
	assert.Equal(t, second.ID, again.ID)

	// Deleting a missing row must not touch the counter.
	_, err = store.DeleteStudentByID(ctx, 999)
	require.NoError(t, err)
	next, err := store.CreateStudent(ctx, newStudent("D", 20, "C"))
	require.NoError(t, err)
	assert.Equal(t, again.ID+1, next.ID)
	assert.Equal(t, first.ID+2, next.ID)
}

func TestPing(t *testing.T) {
	assert.NoError(t, testutil.NewStore(t).Ping(context.Background()))
}
