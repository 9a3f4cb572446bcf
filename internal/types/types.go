// Package types holds the shared data structures used across the
// application. Handlers, storage and utils all import types without
// depending on each other.
package types

import "time"

// Student is the single persisted entity. The gorm tags describe the
// students table; the json tags describe the API representation, which
// never includes the bookkeeping timestamps.
type Student struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"type:varchar(255);not null" json:"name"`
	Age    int    `gorm:"not null" json:"age"`
	Course string `gorm:"type:varchar(255);not null" json:"course"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName pins the table name independently of gorm's naming strategy.
func (Student) TableName() string {
	return "students"
}

// NewStudent is the POST /student payload.
//
// validate:"required" rejects the zero value, so an omitted field, an
// empty string and an age of 0 all fail validation.
type NewStudent struct {
	Name   string `json:"name"   validate:"required"`
	Age    int    `json:"age"    validate:"required,gt=0"`
	Course string `json:"course" validate:"required"`
}

// StudentPatch is the PATCH /student/:id payload. A nil field means
// "leave unchanged"; there is no way to clear a column.
type StudentPatch struct {
	Name   *string `json:"name"   validate:"omitnil,min=1"`
	Age    *int    `json:"age"    validate:"omitnil,gt=0"`
	Course *string `json:"course" validate:"omitnil,min=1"`
}

// Empty reports whether the patch carries no field at all.
func (p StudentPatch) Empty() bool {
	return p.Name == nil && p.Age == nil && p.Course == nil
}

// Columns returns the column/value pairs the patch sets.
func (p StudentPatch) Columns() map[string]any {
	cols := make(map[string]any, 3)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Age != nil {
		cols["age"] = *p.Age
	}
	if p.Course != nil {
		cols["course"] = *p.Course
	}
	return cols
}
