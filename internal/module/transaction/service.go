package transaction

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/metrics"
)

const (
	maxReferenceLength = 64
	maxNarrationLength = 255
)

// transactionService implements domain.TransactionService.
type transactionService struct {
	repo     domain.TransactionRepository
	accounts domain.AccountRepository
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewTransactionService creates a new TransactionService. m may be nil.
func NewTransactionService(repo domain.TransactionRepository, accounts domain.AccountRepository, m *metrics.Metrics) domain.TransactionService {
	return &transactionService{repo: repo, accounts: accounts, metrics: m, now: time.Now}
}

// PostTransaction validates in and posts it to accountID.
func (s *transactionService) PostTransaction(ctx context.Context, accountID string, in domain.TransactionInput) (*domain.Transaction, error) {
	accountID = strings.TrimSpace(accountID)
	in.Reference = strings.TrimSpace(in.Reference)
	in.Narration = strings.TrimSpace(in.Narration)
	if in.ValueDate.IsZero() {
		in.ValueDate = s.now()
	}
	in.ValueDate = in.ValueDate.UTC()

	if err := validate(accountID, in); err != nil {
		return nil, err
	}

	txn := domain.NewTransaction(accountID, in)
	if err := s.repo.Post(ctx, txn); err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "reference has already been posted", err)
		}
		return nil, err
	}
	s.metrics.TransactionPosted(string(txn.Kind), txn.Amount)
	return txn, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

// ListTransactions lists the transactions of a live account.
func (s *transactionService) ListTransactions(ctx context.Context, accountID string, req domain.PageRequest) (*domain.Page[domain.Transaction], error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.repo.ListByAccount(ctx, accountID, req)
}

func validate(accountID string, in domain.TransactionInput) error {
	switch {
	case accountID == "":
		return validationError("account id is required")
	case in.Kind.Sign() == 0:
		return validationError("kind must be one of contribution, interest, withdrawal, fee")
	case in.Amount <= 0:
		return validationError("amount must be greater than zero")
	case in.Reference == "":
		return validationError("reference is required")
	case utf8.RuneCountInString(in.Reference) > maxReferenceLength:
		return validationError("reference must be at most 64 characters")
	case utf8.RuneCountInString(in.Narration) > maxNarrationLength:
		return validationError("narration must be at most 255 characters")
	}
	return nil
}

func validationError(msg string) error {
	return domain.NewAppError(domain.CodeValidation, msg, nil)
}
