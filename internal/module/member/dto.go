package member

import (
	"time"

	"github.com/simp-lee/pension/internal/domain"
)

const dateLayout = "2006-01-02"

// MemberRequest represents the input for enrolling or updating a member.
type MemberRequest struct {
	FirstName    string `json:"firstName" binding:"required,min=2,max=100"`
	LastName     string `json:"lastName" binding:"required,min=2,max=100"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"omitempty,min=7,max=16"`
	DateOfBirth  string `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	EmployerName string `json:"employerName" binding:"omitempty,max=200"`
}

func (r MemberRequest) input() domain.MemberInput {
	dob, _ := time.Parse(dateLayout, r.DateOfBirth)
	return domain.MemberInput{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Phone:        r.Phone,
		DateOfBirth:  dob,
		EmployerName: r.EmployerName,
	}
}

// StatusRequest represents a member status change.
type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended"`
}

// MemberResponse is the public representation of a member.
type MemberResponse struct {
	MemberID     string     `json:"memberId"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	DateOfBirth  string     `json:"dateOfBirth"`
	EmployerName string     `json:"employerName,omitempty"`
	Status       string     `json:"status"`
	CreatedDate  time.Time  `json:"createdDate"`
	ModifiedDate *time.Time `json:"modifiedDate"`
}

func toResponse(m domain.Member) MemberResponse {
	return MemberResponse{
		MemberID:     m.MemberID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		FullName:     m.FullName(),
		Email:        m.Email,
		Phone:        m.Phone,
		DateOfBirth:  m.DateOfBirth.Format(dateLayout),
		EmployerName: m.EmployerName,
		Status:       string(m.Status),
		CreatedDate:  m.CreatedDate,
		ModifiedDate: m.ModifiedDate,
	}
}
