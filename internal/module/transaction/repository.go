package transaction

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/pkg"
	"github.com/simp-lee/pension/internal/store"
)

var (
	allowedSortFields   = []string{"transaction_id", "kind", "amount", "value_date", "created_date"}
	allowedFilterFields = []string{"kind", "reference"}
)

var (
	errAccountNotActive    = domain.NewAppError(domain.CodeBusinessRule, "account is not active", nil)
	errInsufficientBalance = domain.NewAppError(domain.CodeBusinessRule, "insufficient balance", nil)
)

// transactionRepository implements domain.TransactionRepository. Posting
// updates the account balance and inserts the transaction atomically.
type transactionRepository struct {
	db       *gorm.DB
	store    *store.Store[domain.Transaction, *domain.Transaction]
	accounts *store.Store[domain.Account, *domain.Account]
	now      func() time.Time
}

// NewTransactionRepository creates a TransactionRepository backed by db.
func NewTransactionRepository(db *gorm.DB) domain.TransactionRepository {
	return &transactionRepository{
		db: db,
		store: store.New[domain.Transaction](db, store.Options{
			Name:         "transaction",
			IDColumn:     "transaction_id",
			SortFields:   allowedSortFields,
			FilterFields: allowedFilterFields,
			DefaultSort:  "transaction_id:asc",
		}),
		accounts: store.New[domain.Account](db, store.Options{
			Name:     "account",
			IDColumn: "account_id",
		}),
		now: time.Now,
	}
}

// Post applies txn to its account. The balance update is conditional, so a
// debit never takes a balance below zero even under concurrent posting.
func (r *transactionRepository) Post(ctx context.Context, txn *domain.Transaction) error {
	delta := txn.Delta()

	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Model(&domain.Account{}).
			Where("account_id = ? AND status = ? AND deleted_date IS NULL", txn.AccountID, domain.StatusActive).
			Where("balance + ? >= 0", delta).
			Updates(map[string]any{
				"balance":       gorm.Expr("balance + ?", delta),
				"modified_date": r.now().UTC(),
			})
		if result.Error != nil {
			return store.MapError(result.Error)
		}
		if result.RowsAffected == 0 {
			return r.rejection(ctx, tx, txn.AccountID)
		}

		var acct domain.Account
		if err := tx.Select("balance").Where("account_id = ?", txn.AccountID).Take(&acct).Error; err != nil {
			return store.MapError(err)
		}
		txn.BalanceAfter = acct.Balance

		return r.store.WithDB(tx).Create(ctx, txn)
	})
}

// rejection explains why the conditional balance update matched no row.
func (r *transactionRepository) rejection(ctx context.Context, tx *gorm.DB, accountID string) error {
	acct, err := r.accounts.WithDB(tx).Get(ctx, accountID)
	if err != nil {
		return err
	}
	if acct.Status != domain.StatusActive {
		return errAccountNotActive
	}
	return errInsufficientBalance
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.store.Get(ctx, id)
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID string, req domain.PageRequest) (*domain.Page[domain.Transaction], error) {
	return r.store.List(ctx, req, func(db *gorm.DB) *gorm.DB {
		return db.Where("account_id = ?", accountID)
	})
}
