package member

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/store"
)

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields = []string{
		"member_id", "first_name", "last_name", "email", "employer_name",
		"date_of_birth", "status", "created_date", "modified_date",
	}
	allowedFilterFields = []string{"first_name", "last_name", "email", "phone", "employer_name", "status"}
)

// memberRepository implements domain.MemberRepository on the generic store.
type memberRepository struct {
	store *store.Store[domain.Member, *domain.Member]
}

// NewMemberRepository creates a MemberRepository backed by db.
func NewMemberRepository(db *gorm.DB) domain.MemberRepository {
	return &memberRepository{
		store: store.New[domain.Member](db, store.Options{
			Name:         "member",
			IDColumn:     "member_id",
			SortFields:   allowedSortFields,
			FilterFields: allowedFilterFields,
			DefaultSort:  "member_id:asc",
		}),
	}
}

func (r *memberRepository) Create(ctx context.Context, m *domain.Member) error {
	return r.store.Create(ctx, m)
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	return r.store.Get(ctx, id)
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	return r.store.FindOne(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("email = ?", email)
	})
}

// List returns live members. Filters and sort come from req.
func (r *memberRepository) List(ctx context.Context, req domain.PageRequest) (*domain.Page[domain.Member], error) {
	return r.store.List(ctx, req)
}

func (r *memberRepository) Update(ctx context.Context, m *domain.Member) error {
	return r.store.Update(ctx, m)
}

// Delete soft deletes the member.
func (r *memberRepository) Delete(ctx context.Context, id string) error {
	return r.store.SoftDelete(ctx, id)
}
