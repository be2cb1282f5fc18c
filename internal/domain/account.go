package domain

import "context"

// AccountType classifies a pension account.
type AccountType string

const (
	AccountMandatory         AccountType = "mandatory"
	AccountVoluntary         AccountType = "voluntary"
	AccountRetirementSavings AccountType = "retirement_savings"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountMandatory, AccountVoluntary, AccountRetirementSavings:
		return true
	default:
		return false
	}
}

// Account holds a member's contributions. Balance is in minor currency units.
type Account struct {
	AccountID string      `gorm:"primaryKey;size:36" json:"accountId"`
	MemberID  string      `gorm:"size:36;not null;index" json:"memberId"`
	Type      AccountType `gorm:"size:30;not null" json:"type"`
	Currency  string      `gorm:"size:3;not null" json:"currency"`
	Balance   int64       `gorm:"not null;default:0" json:"balance"`
	Entity
}

// Identifier implements Identifiable.
func (a *Account) Identifier() string { return a.AccountID }

// AssignIdentifier implements Identifiable.
func (a *Account) AssignIdentifier(id string) { a.AccountID = id }

// NewAccount builds an initialized, empty Account for memberID.
func NewAccount(memberID string, accountType AccountType, currency string) *Account {
	a := &Account{
		MemberID: memberID,
		Type:     accountType,
		Currency: currency,
	}
	Initialize(a)
	return a
}

// AccountRepository defines the data access interface for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	// List returns accounts, restricted to memberID when it is not empty.
	List(ctx context.Context, memberID string, req PageRequest) (*Page[Account], error)
	Delete(ctx context.Context, id string) error
}

// AccountService defines the business logic interface for accounts.
type AccountService interface {
	OpenAccount(ctx context.Context, memberID string, accountType AccountType, currency string) (*Account, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
	ListAccounts(ctx context.Context, memberID string, req PageRequest) (*Page[Account], error)
	CloseAccount(ctx context.Context, id string) error
	// Statement returns the account together with its full transaction history.
	Statement(ctx context.Context, id string) (*Account, []Transaction, error)
}
