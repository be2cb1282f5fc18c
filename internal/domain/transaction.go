package domain

import (
	"context"
	"time"
)

// TransactionKind classifies a ledger movement.
type TransactionKind string

const (
	KindContribution TransactionKind = "contribution"
	KindInterest     TransactionKind = "interest"
	KindWithdrawal   TransactionKind = "withdrawal"
	KindFee          TransactionKind = "fee"
)

// Sign returns +1 for credits, -1 for debits and 0 for unknown kinds.
func (k TransactionKind) Sign() int64 {
	switch k {
	case KindContribution, KindInterest:
		return 1
	case KindWithdrawal, KindFee:
		return -1
	default:
		return 0
	}
}

// Transaction is an immutable movement on an account. Amount is positive and
// in minor currency units; the direction follows from Kind.
type Transaction struct {
	TransactionID string          `gorm:"primaryKey;size:36" json:"transactionId"`
	AccountID     string          `gorm:"size:36;not null;index" json:"accountId"`
	Kind          TransactionKind `gorm:"size:20;not null" json:"kind"`
	Amount        int64           `gorm:"not null" json:"amount"`
	BalanceAfter  int64           `gorm:"not null" json:"balanceAfter"`
	Reference     string          `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	Narration     string          `gorm:"size:255" json:"narration"`
	ValueDate     time.Time       `gorm:"not null" json:"valueDate"`
	Entity
}

// Identifier implements Identifiable.
func (t *Transaction) Identifier() string { return t.TransactionID }

// AssignIdentifier implements Identifiable.
func (t *Transaction) AssignIdentifier(id string) { t.TransactionID = id }

// Delta returns the signed balance change of the transaction.
func (t *Transaction) Delta() int64 {
	return t.Kind.Sign() * t.Amount
}

// TransactionInput carries the fields of a transaction to post.
type TransactionInput struct {
	Kind      TransactionKind
	Amount    int64
	Reference string
	Narration string
	ValueDate time.Time
}

// NewTransaction builds an initialized Transaction for accountID.
func NewTransaction(accountID string, in TransactionInput) *Transaction {
	t := &Transaction{
		AccountID: accountID,
		Kind:      in.Kind,
		Amount:    in.Amount,
		Reference: in.Reference,
		Narration: in.Narration,
		ValueDate: in.ValueDate,
	}
	Initialize(t)
	return t
}

// TransactionRepository defines the data access interface for transactions.
type TransactionRepository interface {
	// Post applies txn.Delta() to the account balance and stores txn in one
	// database transaction, setting txn.BalanceAfter.
	Post(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
	ListByAccount(ctx context.Context, accountID string, req PageRequest) (*Page[Transaction], error)
}

// TransactionService defines the business logic interface for transactions.
type TransactionService interface {
	PostTransaction(ctx context.Context, accountID string, in TransactionInput) (*Transaction, error)
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	ListTransactions(ctx context.Context, accountID string, req PageRequest) (*Page[Transaction], error)
}
