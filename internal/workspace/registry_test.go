package workspace

import "testing"

func TestRegistry_UpsertPreservesOrder(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Workspace{ID: "a", Path: "/a"})
	r.Upsert(Workspace{ID: "b", Path: "/b"})
	r.Upsert(Workspace{ID: "c", Path: "/c"})

	// Updating an existing entry must not move it.
	r.Upsert(Workspace{ID: "a", Path: "/a", Name: "renamed"})

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(list))
	}
	wantOrder := []string{"a", "b", "c"}
	for i, id := range wantOrder {
		if list[i].ID != id {
			t.Errorf("List()[%d].ID = %s, want %s", i, list[i].ID, id)
		}
	}
	if list[0].Name != "renamed" {
		t.Errorf("List()[0].Name = %s, want renamed", list[0].Name)
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Workspace{ID: "a", Path: "/a"})

	if _, ok := r.Get("a"); !ok {
		t.Error("Get(a) not found, want found")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) found, want not found")
	}
}

func TestRegistry_RemoveClearsActive(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Workspace{ID: "a"})
	r.Upsert(Workspace{ID: "b"})
	r.SetActive("a")

	removed := r.Remove("a")
	if removed != 1 {
		t.Errorf("Remove(a) = %d, want 1", removed)
	}
	if got := r.Active(); got != "" {
		t.Errorf("Active() = %q, want empty after removing active workspace", got)
	}
}

func TestRegistry_RemoveLeavesUnrelatedActive(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Workspace{ID: "a"})
	r.Upsert(Workspace{ID: "b"})
	r.SetActive("b")

	r.Remove("a")
	if got := r.Active(); got != "b" {
		t.Errorf("Active() = %q, want b", got)
	}
}

func TestRegistry_RemoveDropsSettingsRef(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Workspace{ID: "a"})
	r.SetSettingsRef("a", Settings{Theme: "dark"})

	r.Remove("a")
	if _, ok := r.SettingsRef("a"); ok {
		t.Error("SettingsRef(a) still present after Remove")
	}
}

func TestRegistry_ReplaceClearsStaleActive(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Workspace{ID: "a"})
	r.SetActive("a")

	r.Replace([]Workspace{{ID: "b"}})
	if got := r.Active(); got != "" {
		t.Errorf("Active() = %q, want empty after refresh dropped the entity", got)
	}
}

func TestRegistry_ReplaceKeepsSurvivingActive(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Workspace{ID: "a"})
	r.SetActive("a")

	r.Replace([]Workspace{{ID: "a"}, {ID: "b"}})
	if got := r.Active(); got != "a" {
		t.Errorf("Active() = %q, want a", got)
	}
}

func TestRegistry_ReplaceReseedsSettingsRef(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Workspace{ID: "a"})
	r.SetSettingsRef("a", Settings{Theme: "dark"})

	r.Replace([]Workspace{{ID: "b", Settings: Settings{Theme: "light"}}})

	if _, ok := r.SettingsRef("a"); ok {
		t.Error("SettingsRef(a) survived Replace, want dropped")
	}
	s, ok := r.SettingsRef("b")
	if !ok {
		t.Fatal("SettingsRef(b) missing after Replace")
	}
	if s.Theme != "light" {
		t.Errorf("SettingsRef(b).Theme = %s, want light", s.Theme)
	}
}

func TestRegistry_SetActiveUnknownIgnored(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Workspace{ID: "a"})
	r.SetActive("a")

	r.SetActive("missing")
	if got := r.Active(); got != "a" {
		t.Errorf("Active() = %q, want a (unknown id ignored)", got)
	}
}

func TestRegistry_SetActiveEmptyClears(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Workspace{ID: "a"})
	r.SetActive("a")

	r.SetActive("")
	if got := r.Active(); got != "" {
		t.Errorf("Active() = %q, want empty", got)
	}
}
