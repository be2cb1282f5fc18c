// Package store provides GORM persistence for records embedding domain.Entity.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/pkg"
)

// Options describes how a record type is stored and queried.
type Options struct {
	// Name is used in error messages ("member not found").
	Name string
	// IDColumn is the primary key column, e.g. "member_id".
	IDColumn string
	// SortFields and FilterFields whitelist the columns a PageRequest may use.
	SortFields   []string
	FilterFields []string
	// DefaultSort applies when a request has no valid sort, e.g. "member_id:asc".
	DefaultSort string
}

// Store is a generic repository for E. P is *E and must implement domain.Record.
// Reads never return soft-deleted rows.
type Store[E any, P interface {
	*E
	domain.Record
}] struct {
	db   *gorm.DB
	opts Options
	now  func() time.Time
}

// New returns a Store for E.
func New[E any, P interface {
	*E
	domain.Record
}](db *gorm.DB, opts Options) *Store[E, P] {
	if opts.Name == "" {
		opts.Name = "record"
	}
	return &Store[E, P]{db: db, opts: opts, now: time.Now}
}

// DB returns the underlying handle.
func (s *Store[E, P]) DB() *gorm.DB { return s.db }

// WithDB returns a copy of s bound to db, typically a transaction.
func (s *Store[E, P]) WithDB(db *gorm.DB) *Store[E, P] {
	out := *s
	out.db = db
	return &out
}

// Create inserts e. Records that were not yet initialized get their
// identifier and CreatedDate assigned first.
func (s *Store[E, P]) Create(ctx context.Context, e P) error {
	domain.Initialize(e)
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return s.mapError(err)
	}
	return nil
}

// Get returns the live record whose identifier column equals id.
func (s *Store[E, P]) Get(ctx context.Context, id string) (P, error) {
	return s.FindOne(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where(s.opts.IDColumn+" = ?", id)
	})
}

// FindOne returns the first live record matching scopes.
func (s *Store[E, P]) FindOne(ctx context.Context, scopes ...pkg.Scope) (P, error) {
	var e E
	err := s.db.WithContext(ctx).Scopes(notDeleted).Scopes(scopes...).Take(&e).Error
	if err != nil {
		return nil, s.mapError(err)
	}
	return P(&e), nil
}

// Source returns the live records narrowed by req's filters and by scopes,
// ordered by req's sort.
func (s *Store[E, P]) Source(req domain.PageRequest, scopes ...pkg.Scope) *pkg.QuerySource[E] {
	filter := append([]pkg.Scope{notDeleted, pkg.Filter(req, s.opts.FilterFields)}, scopes...)
	return pkg.NewQuerySource[E](s.db, filter...).
		OrderBy(pkg.Sort(req, s.opts.SortFields, s.opts.DefaultSort))
}

// List returns one page of live records. See domain.Paginate for the
// meaning of req.PageIndex.
func (s *Store[E, P]) List(ctx context.Context, req domain.PageRequest, scopes ...pkg.Scope) (*domain.Page[E], error) {
	page, err := domain.Paginate[E](ctx, s.Source(req, scopes...), req.PageIndex, req.PageSize)
	if err != nil {
		return nil, s.mapError(err)
	}
	return page, nil
}

// Update writes every column of e and sets ModifiedDate. Soft-deleted or
// missing records yield a not found error.
func (s *Store[E, P]) Update(ctx context.Context, e P) error {
	e.Lifecycle().Touch(s.now())
	result := s.db.WithContext(ctx).Model(e).Scopes(notDeleted).Select("*").Updates(e)
	if result.Error != nil {
		return s.mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return s.notFound(nil)
	}
	return nil
}

// SoftDelete marks the record deleted. The row is kept. Extra scopes act as
// preconditions: a live record that does not satisfy them is reported as not
// found.
func (s *Store[E, P]) SoftDelete(ctx context.Context, id string, scopes ...pkg.Scope) error {
	var lc domain.Entity
	lc.MarkDeleted(s.now())

	result := s.db.WithContext(ctx).Model(new(E)).
		Scopes(notDeleted).
		Scopes(scopes...).
		Where(s.opts.IDColumn+" = ?", id).
		Updates(map[string]any{
			"status":        lc.Status,
			"modified_date": lc.ModifiedDate,
			"deleted_date":  lc.DeletedDate,
		})
	if result.Error != nil {
		return s.mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return s.notFound(nil)
	}
	return nil
}

func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_date IS NULL")
}

func (s *Store[E, P]) notFound(err error) error {
	return domain.NewAppError(domain.CodeNotFound, s.opts.Name+" not found", err)
}

func (s *Store[E, P]) mapError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.notFound(err)
	}
	return MapError(err)
}

// MapError converts GORM errors to domain errors. AppErrors pass through.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewAppError(domain.CodeNotFound, "not found", err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by message. The
// pure-Go SQLite driver does not translate them to gorm.ErrDuplicatedKey.
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
