package member

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/simp-lee/pension/internal/domain"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// errEmailTaken also covers emails of deleted members, which stay reserved.
var errEmailTaken = domain.NewAppError(domain.CodeAlreadyExists, "email is already registered", nil)

// memberService implements domain.MemberService.
type memberService struct {
	repo domain.MemberRepository
	now  func() time.Time
}

// NewMemberService creates a new MemberService with the given repository.
func NewMemberService(repo domain.MemberRepository) domain.MemberService {
	return &memberService{repo: repo, now: time.Now}
}

// CreateMember validates in and enrols a new active member.
func (s *memberService) CreateMember(ctx context.Context, in domain.MemberInput) (*domain.Member, error) {
	in = normalizeInput(in)
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	m := domain.NewMember(in)
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, emailConflict(err)
	}
	return m, nil
}

func (s *memberService) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *memberService) ListMembers(ctx context.Context, req domain.PageRequest) (*domain.Page[domain.Member], error) {
	return s.repo.List(ctx, req)
}

// UpdateMember replaces the writable fields of an existing member.
func (s *memberService) UpdateMember(ctx context.Context, id string, in domain.MemberInput) (*domain.Member, error) {
	in = normalizeInput(in)
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(m.Email, in.Email) {
		if err := s.ensureEmailFree(ctx, in.Email, m.MemberID); err != nil {
			return nil, err
		}
	}

	m.FirstName = in.FirstName
	m.LastName = in.LastName
	m.Email = in.Email
	m.Phone = in.Phone
	m.DateOfBirth = in.DateOfBirth
	m.EmployerName = in.EmployerName

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, emailConflict(err)
	}
	return m, nil
}

// ChangeMemberStatus moves a member between active, inactive and suspended.
// Deletion goes through DeleteMember only.
func (s *memberService) ChangeMemberStatus(ctx context.Context, id string, status domain.Status) (*domain.Member, error) {
	if !status.Valid() || status == domain.StatusDeleted {
		return nil, domain.NewAppError(domain.CodeValidation, "status must be one of active, inactive, suspended", nil)
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status == status {
		return m, nil
	}

	m.Status = status
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *memberService) DeleteMember(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *memberService) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case domain.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case existing.MemberID != ownerID:
		return errEmailTaken
	default:
		return nil
	}
}

// emailConflict reports a unique violation on write as errEmailTaken. The
// lookup in ensureEmailFree skips deleted members but the index does not.
func emailConflict(err error) error {
	if domain.IsAlreadyExists(err) {
		return domain.NewAppError(errEmailTaken.Code, errEmailTaken.Message, err)
	}
	return err
}

func normalizeInput(in domain.MemberInput) domain.MemberInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.EmployerName = strings.TrimSpace(in.EmployerName)
	if !in.DateOfBirth.IsZero() {
		y, mo, d := in.DateOfBirth.Date()
		in.DateOfBirth = time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	}
	return in
}

func (s *memberService) validateInput(in domain.MemberInput) error {
	if err := validateName("first name", in.FirstName); err != nil {
		return err
	}
	if err := validateName("last name", in.LastName); err != nil {
		return err
	}

	if in.Email == "" {
		return domain.NewAppError(domain.CodeValidation, "email is required", nil)
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}

	if in.Phone != "" && !phonePattern.MatchString(in.Phone) {
		return domain.NewAppError(domain.CodeValidation, "phone must be 7 to 15 digits with an optional leading +", nil)
	}

	if in.DateOfBirth.IsZero() {
		return domain.NewAppError(domain.CodeValidation, "date of birth is required", nil)
	}
	if !in.DateOfBirth.Before(s.now().UTC()) {
		return domain.NewAppError(domain.CodeValidation, "date of birth must be in the past", nil)
	}

	if utf8.RuneCountInString(in.EmployerName) > 200 {
		return domain.NewAppError(domain.CodeValidation, "employer name must be at most 200 characters", nil)
	}
	return nil
}

func validateName(field, value string) error {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		return domain.NewAppError(domain.CodeValidation, field+" is required", nil)
	case n < 2:
		return domain.NewAppError(domain.CodeValidation, field+" must be at least 2 characters", nil)
	case n > 100:
		return domain.NewAppError(domain.CodeValidation, field+" must be at most 100 characters", nil)
	}
	return nil
}
