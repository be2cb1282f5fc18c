package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a persisted record.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusDeleted:
		return true
	default:
		return false
	}
}

// Entity is the lifecycle base embedded by every persisted record.
// It replaces gorm.Model: soft deletion is explicit and driven by DeletedDate
// and Status instead of GORM's implicit DeletedAt handling.
type Entity struct {
	Status       Status     `gorm:"size:20;not null;index" json:"status"`
	CreatedDate  time.Time  `gorm:"not null" json:"createdDate"`
	ModifiedDate *time.Time `json:"modifiedDate"`
	DeletedDate  *time.Time `gorm:"index" json:"deletedDate"`
}

// Lifecycle returns the embedded lifecycle fields. Embedding Entity is enough
// to satisfy Record.
func (e *Entity) Lifecycle() *Entity {
	return e
}

// IsDeleted reports whether the record has been soft deleted.
func (e *Entity) IsDeleted() bool {
	return e.DeletedDate != nil
}

// Touch records an update at now.
func (e *Entity) Touch(now time.Time) {
	t := now.UTC()
	e.ModifiedDate = &t
}

// MarkDeleted soft deletes the record at now.
func (e *Entity) MarkDeleted(now time.Time) {
	t := now.UTC()
	e.DeletedDate = &t
	e.ModifiedDate = &t
	e.Status = StatusDeleted
}

// Record is implemented by every type that embeds Entity.
type Record interface {
	Lifecycle() *Entity
}

// Identifiable is implemented by records that own a string identifier
// (MemberID, AccountID, ...). Records with another identity scheme simply
// do not implement it and keep their identifier untouched.
type Identifiable interface {
	Identifier() string
	AssignIdentifier(id string)
}

// IDGenerator produces globally unique, lexicographically sortable identifiers.
type IDGenerator func() string

// NewID returns a UUIDv7 string. Version 7 UUIDs start with a millisecond
// timestamp followed by a monotonic sequence, so their canonical string form
// sorts in creation order within a process.
//
// NewID panics if the system entropy source fails.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Initialize assigns identity and audit fields to a newly constructed record.
// See InitializeWith.
func Initialize(r Record) {
	InitializeWith(r, NewID, time.Now)
}

// InitializeWith assigns a fresh identifier (Identifiable records only),
// sets CreatedDate to now in UTC and defaults Status to active.
//
// A record whose CreatedDate is already set is considered initialized and is
// left unchanged, so identifiers and CreatedDate are assigned exactly once.
// ModifiedDate and DeletedDate are never set here.
func InitializeWith(r Record, newID IDGenerator, now func() time.Time) {
	if r == nil {
		panic("domain.InitializeWith: record must not be nil")
	}
	e := r.Lifecycle()
	if !e.CreatedDate.IsZero() {
		return
	}
	if ident, ok := r.(Identifiable); ok {
		ident.AssignIdentifier(newID())
	}
	e.CreatedDate = now().UTC()
	if e.Status == "" {
		e.Status = StatusActive
	}
}
