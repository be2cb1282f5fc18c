package account

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/pkg"
	"github.com/simp-lee/pension/internal/store"
)

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields   = []string{"account_id", "member_id", "type", "currency", "balance", "status", "created_date"}
	allowedFilterFields = []string{"type", "currency", "status"}
)

// accountRepository implements domain.AccountRepository on the generic store.
type accountRepository struct {
	store *store.Store[domain.Account, *domain.Account]
}

// NewAccountRepository creates an AccountRepository backed by db.
func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &accountRepository{
		store: store.New[domain.Account](db, store.Options{
			Name:         "account",
			IDColumn:     "account_id",
			SortFields:   allowedSortFields,
			FilterFields: allowedFilterFields,
			DefaultSort:  "account_id:asc",
		}),
	}
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	return r.store.Create(ctx, a)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.store.Get(ctx, id)
}

func (r *accountRepository) List(ctx context.Context, memberID string, req domain.PageRequest) (*domain.Page[domain.Account], error) {
	var scopes []pkg.Scope
	if memberID != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("member_id = ?", memberID)
		})
	}
	return r.store.List(ctx, req, scopes...)
}

// Delete soft deletes the account. Only accounts with a zero balance are
// deleted; a live account with money on it yields a business rule error.
func (r *accountRepository) Delete(ctx context.Context, id string) error {
	err := r.store.SoftDelete(ctx, id, zeroBalance)
	if !domain.IsNotFound(err) {
		return err
	}
	if _, getErr := r.store.Get(ctx, id); getErr != nil {
		return getErr
	}
	return errNonZeroBalance
}

func zeroBalance(db *gorm.DB) *gorm.DB {
	return db.Where("balance = 0")
}
