package models

import (
	"database/sql/driver"
	"fmt"
)

// ParticipationStatus is the review status shared by comments and UGC items
type ParticipationStatus string

const (
	ParticipationStatusPending  ParticipationStatus = "pending"
	ParticipationStatusApproved ParticipationStatus = "approved"
	ParticipationStatusRejected ParticipationStatus = "rejected"
	ParticipationStatusAdopted  ParticipationStatus = "adopted"
)

func (s ParticipationStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ParticipationStatus) Valid() bool {
	switch s {
	case ParticipationStatusPending, ParticipationStatusApproved,
		ParticipationStatusRejected, ParticipationStatusAdopted:
		return true
	default:
		return false
	}
}

// Adoptable reports whether an item in this status may be promoted to adopted
func (s ParticipationStatus) Adoptable() bool {
	return s == ParticipationStatusPending || s == ParticipationStatusApproved
}

// AdoptableStatuses lists the statuses the conditional adopt update matches on
func AdoptableStatuses() []ParticipationStatus {
	return []ParticipationStatus{ParticipationStatusPending, ParticipationStatusApproved}
}

// PublicStatuses lists the statuses visible on an ad page
func PublicStatuses() []ParticipationStatus {
	return []ParticipationStatus{ParticipationStatusApproved, ParticipationStatusAdopted}
}

// Scan implements the sql.Scanner interface for ParticipationStatus
func (s *ParticipationStatus) Scan(value any) error {
	v, err := scanString(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into ParticipationStatus", value)
	}
	*s = ParticipationStatus(v)
	return nil
}

// Value implements the driver.Valuer interface for ParticipationStatus
func (s ParticipationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ParticipationStatus: %s", s)
	}
	return string(s), nil
}
