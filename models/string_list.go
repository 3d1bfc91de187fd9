package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is a text array column; stored as text[] on PostgreSQL and
// as the array literal in a text column elsewhere.
type StringList []string

// Scan implements the sql.Scanner interface for StringList
func (l *StringList) Scan(src any) error {
	return (*pq.StringArray)(l).Scan(src)
}

// Value implements the driver.Valuer interface for StringList
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "{}", nil
	}
	return pq.StringArray(l).Value()
}

// GormDataType gorm common data type
func (StringList) GormDataType() string {
	return "text[]"
}

// GormDBDataType gorm db data type
func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
