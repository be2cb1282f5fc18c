package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate_Windows(t *testing.T) {
	tests := []struct {
		name         string
		total        int
		pageIndex    int
		pageSize     int
		wantFirst    int
		wantLen      int
		wantPages    int
		wantPrevious bool
		wantNext     bool
	}{
		{"first page", 25, 1, 10, 1, 10, 3, false, true},
		{"middle page", 25, 2, 10, 11, 10, 3, true, true},
		{"last partial page", 25, 3, 10, 21, 5, 3, true, false},
		{"beyond last page", 25, 4, 10, 0, 0, 3, true, false},
		{"exact multiple", 20, 2, 10, 11, 10, 2, true, false},
		{"empty source", 0, 1, 10, 0, 0, 0, false, false},
		{"zero page size", 25, 1, 0, 0, 0, 0, false, false},
		{"negative page index", 25, -1, 10, 0, 0, 3, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Paginate[int](context.Background(), SliceSource[int](seq(tt.total)), tt.pageIndex, tt.pageSize)
			if err != nil {
				t.Fatalf("Paginate() error = %v", err)
			}
			if len(p.Items) != tt.wantLen {
				t.Fatalf("len(Items) = %d, want %d", len(p.Items), tt.wantLen)
			}
			if tt.wantLen > 0 && p.Items[0] != tt.wantFirst {
				t.Errorf("Items[0] = %d, want %d", p.Items[0], tt.wantFirst)
			}
			if p.TotalCount != int64(tt.total) {
				t.Errorf("TotalCount = %d, want %d", p.TotalCount, tt.total)
			}
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
			if p.PageIndex != tt.pageIndex {
				t.Errorf("PageIndex = %d, want %d", p.PageIndex, tt.pageIndex)
			}
			if p.HasPreviousPage() != tt.wantPrevious {
				t.Errorf("HasPreviousPage() = %v, want %v", p.HasPreviousPage(), tt.wantPrevious)
			}
			if p.HasNextPage() != tt.wantNext {
				t.Errorf("HasNextPage() = %v, want %v", p.HasNextPage(), tt.wantNext)
			}
		})
	}
}

func TestPaginate_Unpaged(t *testing.T) {
	tests := []struct {
		name  string
		total int
	}{
		{"populated", 25},
		{"empty", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(seq(tt.total), 0, 10)
			if len(p.Items) != tt.total {
				t.Errorf("len(Items) = %d, want %d", len(p.Items), tt.total)
			}
			if p.PageIndex != 1 || p.TotalPages != 1 {
				t.Errorf("PageIndex/TotalPages = %d/%d, want 1/1", p.PageIndex, p.TotalPages)
			}
			if p.TotalCount != int64(tt.total) {
				t.Errorf("TotalCount = %d, want %d", p.TotalCount, tt.total)
			}
			if p.HasPreviousPage() || p.HasNextPage() {
				t.Error("unpaged result must have no neighbours")
			}
		})
	}
}

// countingSource records calls and can fail on demand.
type countingSource struct {
	SliceSource[int]
	countErr   error
	fetchErr   error
	allErr     error
	fetchCalls int
	allCalls   int
}

func (s *countingSource) Count(ctx context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.SliceSource.Count(ctx)
}

func (s *countingSource) Fetch(ctx context.Context, offset, limit int) ([]int, error) {
	s.fetchCalls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.SliceSource.Fetch(ctx, offset, limit)
}

func (s *countingSource) All(ctx context.Context) ([]int, error) {
	s.allCalls++
	if s.allErr != nil {
		return nil, s.allErr
	}
	return s.SliceSource.All(ctx)
}

func TestPaginate_PropagatesSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		src       *countingSource
		pageIndex int
	}{
		{"count", &countingSource{SliceSource: seq(5), countErr: boom}, 1},
		{"fetch", &countingSource{SliceSource: seq(5), fetchErr: boom}, 1},
		{"all", &countingSource{SliceSource: seq(5), allErr: boom}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Paginate[int](context.Background(), tt.src, tt.pageIndex, 2)
			if !errors.Is(err, boom) {
				t.Fatalf("error = %v, want %v", err, boom)
			}
			if p != nil {
				t.Errorf("page = %+v, want nil", p)
			}
		})
	}
}

func TestPaginate_SkipsFetchOutsideRange(t *testing.T) {
	src := &countingSource{SliceSource: seq(5)}
	if _, err := Paginate[int](context.Background(), src, 9, 2); err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if src.fetchCalls != 0 {
		t.Errorf("Fetch called %d times, want 0", src.fetchCalls)
	}

	// (pageIndex-1)*pageSize wraps to 0 in int arithmetic.
	huge := (1 << 62) + 1
	p, err := Paginate[int](context.Background(), src, huge, 4)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if src.fetchCalls != 0 || len(p.Items) != 0 {
		t.Errorf("huge pageIndex: fetchCalls = %d, items = %v; want 0, []", src.fetchCalls, p.Items)
	}
	if p.PageIndex != huge || p.TotalPages != 2 || p.TotalCount != 5 || p.HasNextPage() {
		t.Errorf("huge pageIndex page = %+v", p)
	}
	if got := NewPage(seq(25), huge, 4); len(got.Items) != 0 {
		t.Errorf("NewPage(huge) items = %v, want none", got.Items)
	}

	if _, err := Paginate[int](context.Background(), src, 0, 2); err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if src.allCalls != 1 || src.fetchCalls != 0 {
		t.Errorf("All/Fetch calls = %d/%d, want 1/0", src.allCalls, src.fetchCalls)
	}
}

func TestPaginate_NilSourcePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil source")
		}
	}()
	_, _ = Paginate[int](context.Background(), nil, 1, 10)
}

func TestProject_PreservesMetadata(t *testing.T) {
	src := NewPage(seq(25), 2, 10)
	dst := Project(src, func(n int) string { return strconv.Itoa(n) })

	if dst.PageIndex != src.PageIndex || dst.TotalPages != src.TotalPages || dst.TotalCount != src.TotalCount {
		t.Errorf("metadata = %d/%d/%d, want %d/%d/%d",
			dst.PageIndex, dst.TotalPages, dst.TotalCount,
			src.PageIndex, src.TotalPages, src.TotalCount)
	}
	if len(dst.Items) != len(src.Items) {
		t.Fatalf("len(Items) = %d, want %d", len(dst.Items), len(src.Items))
	}
	for i, s := range dst.Items {
		if s != strconv.Itoa(src.Items[i]) {
			t.Errorf("Items[%d] = %q, want %q", i, s, strconv.Itoa(src.Items[i]))
		}
	}

	back := Project(dst, func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	})
	for i := range back.Items {
		if back.Items[i] != src.Items[i] {
			t.Errorf("round trip Items[%d] = %d, want %d", i, back.Items[i], src.Items[i])
		}
	}

	if Project[int, string](nil, strconv.Itoa) != nil {
		t.Error("Project(nil) != nil")
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{25, 0, 0},
		{25, -5, 0},
		{-1, 10, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.pageSize); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}

func TestPage_JSON(t *testing.T) {
	p := NewPage(seq(25), 2, 10)
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["hasPreviousPage"] != true || raw["hasNextPage"] != true {
		t.Errorf("navigation flags = %v/%v, want true/true", raw["hasPreviousPage"], raw["hasNextPage"])
	}
	if raw["totalCount"] != float64(25) || raw["pageIndex"] != float64(2) || raw["totalPages"] != float64(3) {
		t.Errorf("unexpected metadata: %s", data)
	}

	var decoded Page[int]
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.PageIndex != 2 || decoded.TotalPages != 3 || decoded.TotalCount != 25 || len(decoded.Items) != 10 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestPage_JSONEmptyItems(t *testing.T) {
	data, err := json.Marshal(Page[int]{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	items, ok := raw["items"].([]any)
	if !ok || len(items) != 0 {
		t.Errorf("items = %v, want []", raw["items"])
	}
}
