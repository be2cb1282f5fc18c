package pkg

import (
	"context"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/pension/internal/domain"
)

// Scope is a reusable GORM query modifier.
type Scope = func(*gorm.DB) *gorm.DB

// Query parameter names.
const (
	ParamPageIndex = "page_index"
	ParamPageSize  = "page_size"
	ParamSort      = "sort"
)

// PageOptions bounds the values accepted by ParsePageRequest.
type PageOptions struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultPageOptions is used when the configured options are not positive.
var DefaultPageOptions = PageOptions{DefaultPageSize: 20, MaxPageSize: 100}

var reservedParams = map[string]bool{
	ParamPageIndex: true,
	ParamPageSize:  true,
	ParamSort:      true,
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePageRequest extracts pagination, sorting, and filtering parameters from
// the query string. page_index defaults to 0 (unpaged). page_size defaults to
// opts.DefaultPageSize and is clamped to opts.MaxPageSize. Malformed or
// negative values are rejected with a validation error.
func ParsePageRequest(c *gin.Context, opts PageOptions) (domain.PageRequest, error) {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = DefaultPageOptions.DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = DefaultPageOptions.MaxPageSize
	}
	opts.DefaultPageSize = min(opts.DefaultPageSize, opts.MaxPageSize)

	req := domain.PageRequest{PageSize: opts.DefaultPageSize}

	if raw := c.Query(ParamPageIndex); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return req, domain.NewAppError(domain.CodeValidation, "page_index must be a non-negative integer", err)
		}
		req.PageIndex = n
	}

	if raw := c.Query(ParamPageSize); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, domain.NewAppError(domain.CodeValidation, "page_size must be a positive integer", err)
		}
		req.PageSize = min(n, opts.MaxPageSize)
	}

	req.Sort = c.Query(ParamSort)

	req.Filter = make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			req.Filter[key] = values[0]
		}
	}

	return req, nil
}

// Sort returns a scope that applies ORDER BY from req.Sort ("field:asc" or
// "field:desc"). Fields outside allowed are ignored; fallback, in the same
// format, is applied instead when req.Sort is empty or rejected.
func Sort(req domain.PageRequest, allowed []string, fallback string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if clause, ok := orderClause(req.Sort, allowed); ok {
			return db.Order(clause)
		}
		if clause, ok := orderClause(fallback, allowed); ok {
			return db.Order(clause)
		}
		return db
	}
}

func orderClause(spec string, allowed []string) (string, bool) {
	field, direction, ok := strings.Cut(spec, ":")
	if !ok {
		return "", false
	}
	field = strings.TrimSpace(field)
	direction = strings.ToLower(strings.TrimSpace(direction))

	if direction != "asc" && direction != "desc" {
		return "", false
	}
	if !validFieldName.MatchString(field) || !slices.Contains(allowed, field) {
		return "", false
	}
	return field + " " + direction, true
}

// Filter returns a scope that applies WHERE conditions from req.Filter.
// Keys outside allowed are ignored. Keys ending in "__like" produce a
// LIKE '%value%' condition; others use exact match.
func Filter(req domain.PageRequest, allowed []string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		keys := make([]string, 0, len(req.Filter))
		for key := range req.Filter {
			keys = append(keys, key)
		}
		// Stable SQL for identical requests.
		slices.Sort(keys)

		for _, key := range keys {
			value := req.Filter[key]
			field, like := strings.CutSuffix(key, "__like")
			if !validFieldName.MatchString(field) || !slices.Contains(allowed, field) {
				continue
			}
			if like {
				db = db.Where(field+" LIKE ?", "%"+value+"%")
			} else {
				db = db.Where(field+" = ?", value)
			}
		}
		return db
	}
}

// QuerySource adapts a GORM query to domain.Source. Filter scopes narrow both
// the count and the rows; order scopes apply to row reads only.
type QuerySource[T any] struct {
	db     *gorm.DB
	filter []Scope
	order  []Scope
}

// NewQuerySource returns a source reading T rows from db narrowed by filter.
func NewQuerySource[T any](db *gorm.DB, filter ...Scope) *QuerySource[T] {
	return &QuerySource[T]{db: db, filter: filter}
}

// OrderBy returns a copy of s that reads rows in the order given by scopes.
func (s *QuerySource[T]) OrderBy(scopes ...Scope) *QuerySource[T] {
	out := *s
	out.order = append(slices.Clip(s.order), scopes...)
	return &out
}

func (s *QuerySource[T]) base(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(new(T)).Scopes(s.filter...)
}

// Count implements domain.Source with a COUNT query.
func (s *QuerySource[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.base(ctx).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Fetch implements domain.Source.
func (s *QuerySource[T]) Fetch(ctx context.Context, offset, limit int) ([]T, error) {
	var items []T
	err := s.base(ctx).Scopes(s.order...).Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// All implements domain.Source.
func (s *QuerySource[T]) All(ctx context.Context) ([]T, error) {
	var items []T
	if err := s.base(ctx).Scopes(s.order...).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
