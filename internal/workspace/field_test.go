package workspace

import "testing"

func TestField_StageCommit(t *testing.T) {
	f := NewField(Settings{Theme: "dark"})

	if err := f.Stage(Settings{Theme: "light"}); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if !f.Pending() {
		t.Error("Pending() = false, want true after Stage")
	}
	if got := f.Value().Theme; got != "light" {
		t.Errorf("Value().Theme = %s, want light (optimistic value visible)", got)
	}

	// The backend may normalize; commit its value, not the staged one.
	f.Commit(Settings{Theme: "light", Model: "o4"})
	if f.Pending() {
		t.Error("Pending() = true, want false after Commit")
	}
	if got := f.Value().Model; got != "o4" {
		t.Errorf("Value().Model = %s, want o4 (authoritative value)", got)
	}
}

func TestField_StageRollback(t *testing.T) {
	f := NewField("old-bin")

	if err := f.Stage("new-bin"); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	got := f.Rollback()
	if got != "old-bin" {
		t.Errorf("Rollback() = %s, want old-bin", got)
	}
	if f.Value() != "old-bin" {
		t.Errorf("Value() = %s, want old-bin after rollback", f.Value())
	}
	if f.Pending() {
		t.Error("Pending() = true, want false after rollback")
	}
}

func TestField_DoubleStageRejected(t *testing.T) {
	f := NewField(false)

	if err := f.Stage(true); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if err := f.Stage(true); err == nil {
		t.Error("second Stage() = nil, want error while pending")
	}
}

func TestField_RollbackWhenCommittedIsNoOp(t *testing.T) {
	f := NewField(42)
	if got := f.Rollback(); got != 42 {
		t.Errorf("Rollback() = %d, want 42", got)
	}
}
