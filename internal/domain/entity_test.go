package domain

import (
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"
)

func TestInitializeWith_AssignsIdentityAndAudit(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 10, 30, 0, 0, time.FixedZone("WAT", 3600))
	m := &Member{FirstName: "Ada"}

	InitializeWith(m, func() string { return "id-1" }, func() time.Time { return fixed })

	if m.MemberID != "id-1" {
		t.Errorf("MemberID = %q, want %q", m.MemberID, "id-1")
	}
	if !m.CreatedDate.Equal(fixed) {
		t.Errorf("CreatedDate = %v, want %v", m.CreatedDate, fixed)
	}
	if m.CreatedDate.Location() != time.UTC {
		t.Errorf("CreatedDate location = %v, want UTC", m.CreatedDate.Location())
	}
	if m.Status != StatusActive {
		t.Errorf("Status = %q, want %q", m.Status, StatusActive)
	}
	if m.ModifiedDate != nil {
		t.Errorf("ModifiedDate = %v, want nil", m.ModifiedDate)
	}
	if m.DeletedDate != nil {
		t.Errorf("DeletedDate = %v, want nil", m.DeletedDate)
	}
}

func TestInitializeWith_KeepsExplicitStatus(t *testing.T) {
	a := &Account{Entity: Entity{Status: StatusSuspended}}
	InitializeWith(a, func() string { return "x" }, time.Now)

	if a.Status != StatusSuspended {
		t.Errorf("Status = %q, want %q", a.Status, StatusSuspended)
	}
}

func TestInitializeWith_Idempotent(t *testing.T) {
	calls := 0
	gen := func() string {
		calls++
		return "id-" + string(rune('0'+calls))
	}
	m := &Member{}
	InitializeWith(m, gen, time.Now)
	firstID, firstCreated := m.MemberID, m.CreatedDate

	InitializeWith(m, gen, func() time.Time { return firstCreated.Add(time.Hour) })

	if m.MemberID != firstID {
		t.Errorf("MemberID changed from %q to %q", firstID, m.MemberID)
	}
	if !m.CreatedDate.Equal(firstCreated) {
		t.Errorf("CreatedDate changed from %v to %v", firstCreated, m.CreatedDate)
	}
	if calls != 1 {
		t.Errorf("generator called %d times, want 1", calls)
	}
}

// plainRecord has no string identifier of its own.
type plainRecord struct {
	Seq int
	Entity
}

func TestInitializeWith_NonIdentifiable(t *testing.T) {
	r := &plainRecord{Seq: 7}
	InitializeWith(r, func() string {
		t.Fatal("generator must not be called for non-identifiable records")
		return ""
	}, time.Now)

	if r.Seq != 7 {
		t.Errorf("Seq = %d, want 7", r.Seq)
	}
	if r.CreatedDate.IsZero() {
		t.Error("CreatedDate not set")
	}
}

func TestInitializeWith_NilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil record")
		}
	}()
	InitializeWith(nil, NewID, time.Now)
}

func TestNewID_DistinctAndSortable(t *testing.T) {
	const n = 1000
	ids := make([]string, n)
	seen := make(map[string]struct{}, n)
	for i := range ids {
		ids[i] = NewID()
		if _, dup := seen[ids[i]]; dup {
			t.Fatalf("duplicate id %q", ids[i])
		}
		seen[ids[i]] = struct{}{}
	}
	if !sort.StringsAreSorted(ids) {
		t.Error("ids are not in creation order")
	}
	if len(ids[0]) != 36 || strings.Count(ids[0], "-") != 4 {
		t.Errorf("id %q is not in canonical UUID form", ids[0])
	}
}

func TestNewMember(t *testing.T) {
	dob := time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC)
	m := NewMember(MemberInput{
		FirstName:   "Chinedu",
		LastName:    "Okafor",
		Email:       "chinedu@example.com",
		DateOfBirth: dob,
	})

	if m.MemberID == "" {
		t.Error("MemberID not assigned")
	}
	if m.FullName() != "Chinedu Okafor" {
		t.Errorf("FullName() = %q", m.FullName())
	}
	if m.Status != StatusActive {
		t.Errorf("Status = %q, want active", m.Status)
	}
	if !m.DateOfBirth.Equal(dob) {
		t.Errorf("DateOfBirth = %v, want %v", m.DateOfBirth, dob)
	}
}

func TestEntity_TouchAndMarkDeleted(t *testing.T) {
	var e Entity
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	e.Touch(now)
	if e.ModifiedDate == nil || !e.ModifiedDate.Equal(now) {
		t.Fatalf("ModifiedDate = %v, want %v", e.ModifiedDate, now)
	}
	if e.IsDeleted() {
		t.Error("IsDeleted() = true before MarkDeleted")
	}

	later := now.Add(time.Minute)
	e.MarkDeleted(later)
	if !e.IsDeleted() {
		t.Error("IsDeleted() = false after MarkDeleted")
	}
	if e.Status != StatusDeleted {
		t.Errorf("Status = %q, want deleted", e.Status)
	}
	if !e.DeletedDate.Equal(later) || !e.ModifiedDate.Equal(later) {
		t.Errorf("DeletedDate = %v, ModifiedDate = %v, want %v", e.DeletedDate, e.ModifiedDate, later)
	}
}

func TestStatus_Valid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusActive, true},
		{StatusInactive, true},
		{StatusSuspended, true},
		{StatusDeleted, true},
		{"", false},
		{"archived", false},
	}
	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("Status(%q).Valid() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestTransactionKind_Sign(t *testing.T) {
	tests := []struct {
		kind TransactionKind
		want int64
	}{
		{KindContribution, 1},
		{KindInterest, 1},
		{KindWithdrawal, -1},
		{KindFee, -1},
		{"refund", 0},
	}
	for _, tt := range tests {
		if got := tt.kind.Sign(); got != tt.want {
			t.Errorf("%q.Sign() = %d, want %d", tt.kind, got, tt.want)
		}
	}

	txn := NewTransaction("acc-1", TransactionInput{Kind: KindWithdrawal, Amount: 2500})
	if txn.Delta() != -2500 {
		t.Errorf("Delta() = %d, want -2500", txn.Delta())
	}
}

func TestAccountType_Valid(t *testing.T) {
	for _, at := range []AccountType{AccountMandatory, AccountVoluntary, AccountRetirementSavings} {
		if !at.Valid() {
			t.Errorf("%q.Valid() = false", at)
		}
	}
	if AccountType("savings").Valid() {
		t.Error(`"savings".Valid() = true`)
	}
}

func TestMember_JSONLifecycleFields(t *testing.T) {
	m := NewMember(MemberInput{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com"})
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"memberId", "status", "createdDate", "modifiedDate", "deletedDate"} {
		if _, ok := got[key]; !ok {
			t.Errorf("JSON missing key %q: %s", key, data)
		}
	}
	if got["modifiedDate"] != nil {
		t.Errorf("modifiedDate = %v, want null", got["modifiedDate"])
	}
}
