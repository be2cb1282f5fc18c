package transaction

import (
	"time"

	"github.com/simp-lee/pension/internal/domain"
)

const dateLayout = "2006-01-02"

// PostTransactionRequest represents a transaction to post on an account.
// Amount is in minor currency units.
type PostTransactionRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=contribution interest withdrawal fee"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Reference string `json:"reference" binding:"required,max=64"`
	Narration string `json:"narration" binding:"omitempty,max=255"`
	ValueDate string `json:"valueDate" binding:"omitempty,datetime=2006-01-02"`
}

func (r PostTransactionRequest) input() domain.TransactionInput {
	in := domain.TransactionInput{
		Kind:      domain.TransactionKind(r.Kind),
		Amount:    r.Amount,
		Reference: r.Reference,
		Narration: r.Narration,
	}
	if r.ValueDate != "" {
		in.ValueDate, _ = time.Parse(dateLayout, r.ValueDate)
	}
	return in
}

// TransactionResponse is the public representation of a transaction.
type TransactionResponse struct {
	TransactionID string    `json:"transactionId"`
	AccountID     string    `json:"accountId"`
	Kind          string    `json:"kind"`
	Amount        int64     `json:"amount"`
	BalanceAfter  int64     `json:"balanceAfter"`
	Reference     string    `json:"reference"`
	Narration     string    `json:"narration,omitempty"`
	ValueDate     string    `json:"valueDate"`
	CreatedDate   time.Time `json:"createdDate"`
}

func toResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		AccountID:     t.AccountID,
		Kind:          string(t.Kind),
		Amount:        t.Amount,
		BalanceAfter:  t.BalanceAfter,
		Reference:     t.Reference,
		Narration:     t.Narration,
		ValueDate:     t.ValueDate.Format(dateLayout),
		CreatedDate:   t.CreatedDate,
	}
}
