package domain

import (
	"context"
	"encoding/json"
)

// Page is a bounded slice of an ordered collection plus metadata describing
// its position in the full collection. TotalCount and TotalPages describe the
// whole source, not the current slice.
type Page[T any] struct {
	Items      []T
	PageIndex  int
	TotalPages int
	TotalCount int64
}

// HasPreviousPage reports whether a page precedes this one.
func (p *Page[T]) HasPreviousPage() bool {
	return p.PageIndex > 1
}

// HasNextPage reports whether a page follows this one.
func (p *Page[T]) HasNextPage() bool {
	return p.PageIndex < p.TotalPages
}

type pageJSON[T any] struct {
	Items           []T   `json:"items"`
	PageIndex       int   `json:"pageIndex"`
	TotalPages      int   `json:"totalPages"`
	TotalCount      int64 `json:"totalCount"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

// MarshalJSON encodes the page with its derived navigation flags.
// A nil Items slice is encoded as an empty array.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(pageJSON[T]{
		Items:           items,
		PageIndex:       p.PageIndex,
		TotalPages:      p.TotalPages,
		TotalCount:      p.TotalCount,
		HasPreviousPage: p.HasPreviousPage(),
		HasNextPage:     p.HasNextPage(),
	})
}

// UnmarshalJSON decodes a page; the navigation flags are ignored because they
// are derived from PageIndex and TotalPages.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	var raw pageJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Items = raw.Items
	p.PageIndex = raw.PageIndex
	p.TotalPages = raw.TotalPages
	p.TotalCount = raw.TotalCount
	return nil
}

// Source is a readable, ordered collection that can be paginated.
type Source[T any] interface {
	// Count returns the number of rows in the full collection.
	Count(ctx context.Context) (int64, error)
	// Fetch returns up to limit rows starting at offset.
	Fetch(ctx context.Context, offset, limit int) ([]T, error)
	// All returns every row.
	All(ctx context.Context) ([]T, error)
}

// TotalPages returns ceil(total / pageSize), or 0 when either is not positive.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}

// Paginate reads one page from src.
//
// A pageIndex of 0 means unpaged: the entire source is returned as page 1 of 1
// and TotalCount is the number of items read. Any other pageIndex is 1-based:
// the total is taken from src.Count and at most pageSize items are fetched
// starting at (pageIndex-1)*pageSize.
//
// Neither argument is bounded here; callers must clamp pageSize to a sensible
// maximum. A negative pageIndex, a non-positive pageSize or a page past the
// last one fetches nothing.
// Errors from src are returned unchanged.
func Paginate[T any](ctx context.Context, src Source[T], pageIndex, pageSize int) (*Page[T], error) {
	if src == nil {
		panic("domain.Paginate: source must not be nil")
	}

	if pageIndex == 0 {
		items, err := src.All(ctx)
		if err != nil {
			return nil, err
		}
		return &Page[T]{
			Items:      nonNil(items),
			PageIndex:  1,
			TotalPages: 1,
			TotalCount: int64(len(items)),
		}, nil
	}

	total, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}

	items := []T{}
	totalPages := TotalPages(total, pageSize)
	// Pages past the last one are empty; checking this first keeps the
	// offset product below total.
	if pageIndex > 0 && pageIndex <= totalPages {
		items, err = src.Fetch(ctx, (pageIndex-1)*pageSize, pageSize)
		if err != nil {
			return nil, err
		}
	}

	return &Page[T]{
		Items:      nonNil(items),
		PageIndex:  pageIndex,
		TotalPages: totalPages,
		TotalCount: total,
	}, nil
}

// NewPage paginates an in-memory slice with the same rules as Paginate.
func NewPage[T any](items []T, pageIndex, pageSize int) *Page[T] {
	// SliceSource never fails.
	page, _ := Paginate[T](context.Background(), SliceSource[T](items), pageIndex, pageSize)
	return page
}

// Project maps every item of p with fn. PageIndex, TotalPages and TotalCount
// are copied verbatim.
func Project[S, D any](p *Page[S], fn func(S) D) *Page[D] {
	if p == nil {
		return nil
	}
	items := make([]D, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}
	return &Page[D]{
		Items:      items,
		PageIndex:  p.PageIndex,
		TotalPages: p.TotalPages,
		TotalCount: p.TotalCount,
	}
}

// SliceSource adapts an in-memory slice to Source.
type SliceSource[T any] []T

// Count implements Source.
func (s SliceSource[T]) Count(context.Context) (int64, error) {
	return int64(len(s)), nil
}

// Fetch implements Source.
func (s SliceSource[T]) Fetch(_ context.Context, offset, limit int) ([]T, error) {
	if offset < 0 || limit <= 0 || offset >= len(s) {
		return []T{}, nil
	}
	end := min(offset+limit, len(s))
	out := make([]T, end-offset)
	copy(out, s[offset:end])
	return out, nil
}

// All implements Source.
func (s SliceSource[T]) All(context.Context) ([]T, error) {
	out := make([]T, len(s))
	copy(out, s)
	return out, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
