package account

import (
	"time"

	"github.com/simp-lee/pension/internal/domain"
)

// OpenAccountRequest represents the input for opening an account.
type OpenAccountRequest struct {
	MemberID string `json:"memberId" binding:"required,max=36"`
	Type     string `json:"type" binding:"required,oneof=mandatory voluntary retirement_savings"`
	Currency string `json:"currency" binding:"required,len=3,alpha"`
}

// AccountResponse is the public representation of an account.
type AccountResponse struct {
	AccountID    string     `json:"accountId"`
	MemberID     string     `json:"memberId"`
	Type         string     `json:"type"`
	Currency     string     `json:"currency"`
	Balance      int64      `json:"balance"`
	Status       string     `json:"status"`
	CreatedDate  time.Time  `json:"createdDate"`
	ModifiedDate *time.Time `json:"modifiedDate"`
}

func toResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:    a.AccountID,
		MemberID:     a.MemberID,
		Type:         string(a.Type),
		Currency:     a.Currency,
		Balance:      a.Balance,
		Status:       string(a.Status),
		CreatedDate:  a.CreatedDate,
		ModifiedDate: a.ModifiedDate,
	}
}
