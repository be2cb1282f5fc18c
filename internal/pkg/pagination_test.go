package pkg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	dbtest "gorm.io/gorm/utils/tests"

	"github.com/simp-lee/pension/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(queryParams url.Values) *gin.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+queryParams.Encode(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

var testPageOptions = PageOptions{DefaultPageSize: 10, MaxPageSize: 50}

func TestParsePageRequest_Defaults(t *testing.T) {
	c := newTestContext(url.Values{})
	pr, err := ParsePageRequest(c, testPageOptions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pr.PageIndex != 0 {
		t.Errorf("expected PageIndex=0 (unpaged), got %d", pr.PageIndex)
	}
	if pr.PageSize != 10 {
		t.Errorf("expected PageSize=10, got %d", pr.PageSize)
	}
	if pr.Sort != "" {
		t.Errorf("expected empty Sort, got %q", pr.Sort)
	}
	if len(pr.Filter) != 0 {
		t.Errorf("expected empty Filter, got %v", pr.Filter)
	}
}

func TestParsePageRequest_CustomValues(t *testing.T) {
	c := newTestContext(url.Values{
		"page_index":      {"3"},
		"page_size":       {"25"},
		"sort":            {"last_name:asc"},
		"status":          {"active"},
		"last_name__like": {"oka"},
	})
	pr, err := ParsePageRequest(c, testPageOptions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pr.PageIndex != 3 {
		t.Errorf("expected PageIndex=3, got %d", pr.PageIndex)
	}
	if pr.PageSize != 25 {
		t.Errorf("expected PageSize=25, got %d", pr.PageSize)
	}
	if pr.Sort != "last_name:asc" {
		t.Errorf("expected Sort=last_name:asc, got %q", pr.Sort)
	}
	if pr.Filter["status"] != "active" || pr.Filter["last_name__like"] != "oka" {
		t.Errorf("unexpected Filter: %v", pr.Filter)
	}
	if _, ok := pr.Filter["page_index"]; ok {
		t.Error("reserved param page_index leaked into Filter")
	}
}

func TestParsePageRequest_ClampsPageSize(t *testing.T) {
	c := newTestContext(url.Values{"page_index": {"1"}, "page_size": {"1000"}})
	pr, err := ParsePageRequest(c, testPageOptions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pr.PageSize != 50 {
		t.Errorf("expected PageSize clamped to 50, got %d", pr.PageSize)
	}
}

func TestParsePageRequest_ZeroOptionsUseDefaults(t *testing.T) {
	c := newTestContext(url.Values{})
	pr, err := ParsePageRequest(c, PageOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pr.PageSize != DefaultPageOptions.DefaultPageSize {
		t.Errorf("expected PageSize=%d, got %d", DefaultPageOptions.DefaultPageSize, pr.PageSize)
	}
}

func TestParsePageRequest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
	}{
		{"negative page_index", url.Values{"page_index": {"-1"}}},
		{"non-numeric page_index", url.Values{"page_index": {"two"}}},
		{"zero page_size", url.Values{"page_size": {"0"}}},
		{"negative page_size", url.Values{"page_size": {"-5"}}},
		{"non-numeric page_size", url.Values{"page_size": {"ten"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePageRequest(newTestContext(tt.params), testPageOptions)
			if !domain.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParsePageRequest_EmptyFilterValuesIgnored(t *testing.T) {
	c := newTestContext(url.Values{"status": {""}})
	pr, err := ParsePageRequest(c, testPageOptions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := pr.Filter["status"]; ok {
		t.Error("empty filter value should be ignored")
	}
}

// --------------- helpers for GORM scope tests ---------------

func newDummyDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(dbtest.DummyDialector{}, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

func TestSort(t *testing.T) {
	tests := []struct {
		name     string
		sort     string
		fallback string
		allowed  []string
		applied  bool
	}{
		{"valid field asc", "last_name:asc", "", []string{"last_name", "email"}, true},
		{"valid field desc", "member_id:desc", "", []string{"member_id"}, true},
		{"field not in allowed list", "password:asc", "", []string{"last_name"}, false},
		{"malformed no colon", "last_name", "", []string{"last_name"}, false},
		{"invalid direction", "last_name:up", "", []string{"last_name"}, false},
		{"sql injection in field", "name;DROP TABLE members--:asc", "", []string{"name"}, false},
		{"empty field", ":asc", "", []string{"name"}, false},
		{"rejected sort uses fallback", "password:asc", "member_id:asc", []string{"member_id"}, true},
		{"empty sort uses fallback", "", "member_id:asc", []string{"member_id"}, true},
		{"invalid fallback ignored", "", "member_id", []string{"member_id"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := Sort(domain.PageRequest{Sort: tt.sort}, tt.allowed, tt.fallback)
			result := scope(newDummyDB(t))
			_, hasOrder := result.Statement.Clauses["ORDER BY"]
			if hasOrder != tt.applied {
				t.Errorf("Order clause applied=%v, want %v", hasOrder, tt.applied)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  map[string]string
		allowed []string
		applied bool
	}{
		{"valid exact match", map[string]string{"status": "active"}, []string{"status"}, true},
		{"valid like", map[string]string{"email__like": "example"}, []string{"email"}, true},
		{"not allowed", map[string]string{"password": "x"}, []string{"status"}, false},
		{"like on disallowed field", map[string]string{"password__like": "x"}, []string{"status"}, false},
		{"invalid field name", map[string]string{"1=1;--": "x"}, []string{"1=1;--"}, false},
		{"empty filter", map[string]string{}, []string{"status"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := Filter(domain.PageRequest{Filter: tt.filter}, tt.allowed)
			result := scope(newDummyDB(t))
			_, hasWhere := result.Statement.Clauses["WHERE"]
			if hasWhere != tt.applied {
				t.Errorf("Where clause applied=%v, want %v", hasWhere, tt.applied)
			}
		})
	}
}

// --------------- QuerySource against SQLite ---------------

type widget struct {
	ID    int `gorm:"primaryKey"`
	Name  string
	Color string
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func seedWidgets(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for i := 1; i <= n; i++ {
		color := "red"
		if i%2 == 0 {
			color = "blue"
		}
		if err := db.Create(&widget{ID: i, Name: "w", Color: color}).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestQuerySource_Paginate(t *testing.T) {
	db := newSQLiteDB(t)
	seedWidgets(t, db, 25)

	src := NewQuerySource[widget](db).OrderBy(func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
	page, err := domain.Paginate[widget](context.Background(), src, 2, 10)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}

	if page.TotalCount != 25 || page.TotalPages != 3 {
		t.Errorf("TotalCount/TotalPages = %d/%d, want 25/3", page.TotalCount, page.TotalPages)
	}
	if len(page.Items) != 10 || page.Items[0].ID != 11 || page.Items[9].ID != 20 {
		t.Errorf("unexpected items: %+v", page.Items)
	}
	if !page.HasPreviousPage() || !page.HasNextPage() {
		t.Error("page 2 of 3 should have both neighbours")
	}
}

func TestQuerySource_FilterNarrowsCount(t *testing.T) {
	db := newSQLiteDB(t)
	seedWidgets(t, db, 25)

	req := domain.PageRequest{Filter: map[string]string{"color": "blue"}, Sort: "id:desc"}
	src := NewQuerySource[widget](db, Filter(req, []string{"color"})).
		OrderBy(Sort(req, []string{"id"}, "id:asc"))

	page, err := domain.Paginate[widget](context.Background(), src, 0, 10)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if page.TotalCount != 12 || len(page.Items) != 12 {
		t.Errorf("TotalCount/len = %d/%d, want 12/12", page.TotalCount, len(page.Items))
	}
	if page.Items[0].ID != 24 {
		t.Errorf("first item ID = %d, want 24", page.Items[0].ID)
	}

	n, err := src.Count(context.Background())
	if err != nil || n != 12 {
		t.Errorf("Count() = %d, %v; want 12, nil", n, err)
	}
}

func TestQuerySource_PropagatesErrors(t *testing.T) {
	db := newSQLiteDB(t)
	// No table: every read fails.
	src := NewQuerySource[widget](db)

	if _, err := domain.Paginate[widget](context.Background(), src, 1, 10); err == nil {
		t.Error("expected error from Count on a missing table")
	}
	if _, err := domain.Paginate[widget](context.Background(), src, 0, 10); err == nil {
		t.Error("expected error from All on a missing table")
	}
}

func TestQuerySource_CanceledContext(t *testing.T) {
	db := newSQLiteDB(t)
	seedWidgets(t, db, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := domain.Paginate[widget](ctx, NewQuerySource[widget](db), 1, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
