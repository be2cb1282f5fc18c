package account

import (
	"context"
	"strings"

	"github.com/simp-lee/pension/internal/domain"
)

var (
	errNonZeroBalance   = domain.NewAppError(domain.CodeBusinessRule, "account balance must be zero to close", nil)
	errMemberNotActive  = domain.NewAppError(domain.CodeBusinessRule, "member is not active", nil)
	errInvalidType      = domain.NewAppError(domain.CodeValidation, "type must be one of mandatory, voluntary, retirement_savings", nil)
	errInvalidCurrency  = domain.NewAppError(domain.CodeValidation, "currency must be a three letter ISO 4217 code", nil)
	errMemberIDRequired = domain.NewAppError(domain.CodeValidation, "member id is required", nil)
)

// accountService implements domain.AccountService.
type accountService struct {
	repo    domain.AccountRepository
	members domain.MemberRepository
	txns    domain.TransactionRepository
}

// NewAccountService creates a new AccountService. members is consulted when
// opening accounts and txns when building statements.
func NewAccountService(repo domain.AccountRepository, members domain.MemberRepository, txns domain.TransactionRepository) domain.AccountService {
	return &accountService{repo: repo, members: members, txns: txns}
}

// OpenAccount opens an empty account for an active member.
func (s *accountService) OpenAccount(ctx context.Context, memberID string, accountType domain.AccountType, currency string) (*domain.Account, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, errMemberIDRequired
	}
	if !accountType.Valid() {
		return nil, errInvalidType
	}
	currency, ok := normalizeCurrency(currency)
	if !ok {
		return nil, errInvalidCurrency
	}

	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.StatusActive {
		return nil, errMemberNotActive
	}

	a := domain.NewAccount(m.MemberID, accountType, currency)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *accountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *accountService) ListAccounts(ctx context.Context, memberID string, req domain.PageRequest) (*domain.Page[domain.Account], error) {
	return s.repo.List(ctx, strings.TrimSpace(memberID), req)
}

// CloseAccount soft deletes an account whose balance is zero.
func (s *accountService) CloseAccount(ctx context.Context, id string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Balance != 0 {
		return errNonZeroBalance
	}
	return s.repo.Delete(ctx, id)
}

// Statement returns the account and every transaction on it in posting order.
func (s *accountService) Statement(ctx context.Context, id string) (*domain.Account, []domain.Transaction, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.txns.ListByAccount(ctx, id, domain.PageRequest{Sort: "transaction_id:asc"})
	if err != nil {
		return nil, nil, err
	}
	return a, page.Items, nil
}

func normalizeCurrency(c string) (string, bool) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if len(c) != 3 {
		return "", false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return c, true
}
