package domain

import (
	"context"
	"time"
)

// Member is a pension scheme member.
type Member struct {
	MemberID     string    `gorm:"primaryKey;size:36" json:"memberId"`
	FirstName    string    `gorm:"size:100;not null" json:"firstName"`
	LastName     string    `gorm:"size:100;not null" json:"lastName"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	DateOfBirth  time.Time `json:"dateOfBirth"`
	EmployerName string    `gorm:"size:200" json:"employerName"`
	Entity
}

// Identifier implements Identifiable.
func (m *Member) Identifier() string { return m.MemberID }

// AssignIdentifier implements Identifiable.
func (m *Member) AssignIdentifier(id string) { m.MemberID = id }

// FullName returns the member's first and last name.
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// MemberInput carries the writable member fields.
type MemberInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	DateOfBirth  time.Time
	EmployerName string
}

// NewMember builds an initialized Member from in.
func NewMember(in MemberInput) *Member {
	m := &Member{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		DateOfBirth:  in.DateOfBirth,
		EmployerName: in.EmployerName,
	}
	Initialize(m)
	return m
}

// MemberRepository defines the data access interface for members.
type MemberRepository interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	List(ctx context.Context, req PageRequest) (*Page[Member], error)
	Update(ctx context.Context, member *Member) error
	Delete(ctx context.Context, id string) error
}

// MemberService defines the business logic interface for members.
type MemberService interface {
	CreateMember(ctx context.Context, in MemberInput) (*Member, error)
	GetMember(ctx context.Context, id string) (*Member, error)
	ListMembers(ctx context.Context, req PageRequest) (*Page[Member], error)
	UpdateMember(ctx context.Context, id string, in MemberInput) (*Member, error)
	ChangeMemberStatus(ctx context.Context, id string, status Status) (*Member, error)
	DeleteMember(ctx context.Context, id string) error
}
