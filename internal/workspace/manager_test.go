package workspace_test

import (
	"context"
	"errors"
	"testing"

	"github.com/codexdeck/codexdeck/internal/domain"
	"github.com/codexdeck/codexdeck/internal/observe"
	"github.com/codexdeck/codexdeck/internal/testutil"
	"github.com/codexdeck/codexdeck/internal/workspace"
)

type managerFixture struct {
	manager  *workspace.Manager
	backend  *testutil.MockBackend
	prompter *testutil.MockPrompter
	notifier *testutil.MockNotifier
	sink     *testutil.RecorderSink
}

func newFixture() *managerFixture {
	f := &managerFixture{
		backend:  testutil.NewMockBackend(),
		prompter: &testutil.MockPrompter{Response: true},
		notifier: &testutil.MockNotifier{},
		sink:     &testutil.RecorderSink{},
	}
	f.manager = workspace.NewManager(f.backend, f.prompter, f.notifier, f.sink)
	return f
}

func (f *managerFixture) seed(workspaces ...workspace.Workspace) {
	for _, ws := range workspaces {
		f.manager.Registry().Upsert(ws)
		f.manager.Registry().SetSettingsRef(ws.ID, ws.Settings)
	}
}

func TestManager_Refresh(t *testing.T) {
	f := newFixture()
	f.backend.ListResult = []workspace.Workspace{
		{ID: "a", Path: "/a"},
		{ID: "b", Path: "/b"},
	}

	if f.manager.HasLoaded() {
		t.Error("HasLoaded() = true before first refresh")
	}
	if err := f.manager.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if !f.manager.HasLoaded() {
		t.Error("HasLoaded() = false after refresh")
	}
	if got := f.manager.Registry().Len(); got != 2 {
		t.Errorf("registry size = %d, want 2", got)
	}
}

func TestManager_RefreshFailureKeepsPriorState(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a"})
	f.backend.ListErr = errors.New("backend offline")

	err := f.manager.Refresh(context.Background())
	if err == nil {
		t.Fatal("Refresh() error = nil, want backend error")
	}
	if !f.manager.HasLoaded() {
		t.Error("HasLoaded() = false, want true even after failed refresh")
	}
	if got := f.manager.Registry().Len(); got != 1 {
		t.Errorf("registry size = %d, want 1 (prior state untouched)", got)
	}
}

func TestManager_AddFromPath(t *testing.T) {
	f := newFixture()

	ws, err := f.manager.AddFromPath(context.Background(), "/projects/api")
	if err != nil {
		t.Fatalf("AddFromPath() error = %v", err)
	}
	if _, ok := f.manager.Registry().Get(ws.ID); !ok {
		t.Error("added workspace not in registry")
	}
	if got := f.manager.Registry().Active(); got != ws.ID {
		t.Errorf("Active() = %q, want %q", got, ws.ID)
	}
}

func TestManager_AddFromPath_BlankPath(t *testing.T) {
	f := newFixture()

	_, err := f.manager.AddFromPath(context.Background(), "   ")
	if !errors.Is(err, domain.ErrEmptyPath) {
		t.Errorf("AddFromPath() error = %v, want ErrEmptyPath", err)
	}
	if n := f.backend.CallCount("add"); n != 0 {
		t.Errorf("backend add calls = %d, want 0 for validation error", n)
	}
}

func TestManager_AddFromGitURL_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.manager.AddFromGitURL(ctx, "  ", "/dest", ""); !errors.Is(err, domain.ErrEmptyGitURL) {
		t.Errorf("blank url error = %v, want ErrEmptyGitURL", err)
	}
	if _, err := f.manager.AddFromGitURL(ctx, "https://example.com/r.git", " ", ""); !errors.Is(err, domain.ErrEmptyDestination) {
		t.Errorf("blank destination error = %v, want ErrEmptyDestination", err)
	}
	if n := f.backend.CallCount("addFromGit"); n != 0 {
		t.Errorf("backend git calls = %d, want 0 for validation errors", n)
	}
}

func TestManager_AddFromGitURL(t *testing.T) {
	f := newFixture()

	ws, err := f.manager.AddFromGitURL(context.Background(), "https://example.com/repo.git", "/checkouts", "  my-repo  ")
	if err != nil {
		t.Fatalf("AddFromGitURL() error = %v", err)
	}
	if ws.Name != "my-repo" {
		t.Errorf("Name = %s, want my-repo (folder name trimmed)", ws.Name)
	}
	if got := f.manager.Registry().Active(); got != ws.ID {
		t.Errorf("Active() = %q, want %q", got, ws.ID)
	}
}

func TestManager_UpdateSettings_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.manager.UpdateSettings(context.Background(), "ghost", workspace.SettingsPatch{})
	if !errors.Is(err, domain.ErrWorkspaceNotFound) {
		t.Errorf("UpdateSettings() error = %v, want ErrWorkspaceNotFound", err)
	}
	if n := f.backend.CallCount("updateSettings"); n != 0 {
		t.Errorf("backend calls = %d, want 0 when target is absent", n)
	}
}

func TestManager_UpdateSettings_Rollback(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a", Name: "a", Settings: workspace.Settings{Theme: "dark"}})
	f.backend.SettingsErrs = map[string]error{"a": errors.New("disk full")}

	theme := "light"
	_, err := f.manager.UpdateSettings(context.Background(), "a", workspace.SettingsPatch{Theme: &theme})
	if err == nil {
		t.Fatal("UpdateSettings() error = nil, want backend error rethrown")
	}

	ws, _ := f.manager.Registry().Get("a")
	if ws.Settings.Theme != "dark" {
		t.Errorf("registry Theme = %s, want dark after rollback", ws.Settings.Theme)
	}
	ref, _ := f.manager.Registry().SettingsRef("a")
	if ref.Theme != "dark" {
		t.Errorf("settings ref Theme = %s, want dark after rollback", ref.Theme)
	}
}

func TestManager_UpdateSettings_Reconcile(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a", Name: "a", Settings: workspace.Settings{Theme: "dark"}})

	// The backend normalizes and adds a server-side field; its return value
	// must win over the locally computed merge.
	f.backend.SettingsReturn = map[string]*workspace.Workspace{
		"a": {ID: "a", Path: "/a", Name: "a", Settings: workspace.Settings{Theme: "light", Model: "server-added"}},
	}

	theme := "light"
	updated, err := f.manager.UpdateSettings(context.Background(), "a", workspace.SettingsPatch{Theme: &theme})
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	want := workspace.Settings{Theme: "light", Model: "server-added"}
	if updated.Settings != want {
		t.Errorf("returned Settings = %+v, want %+v", updated.Settings, want)
	}
	ws, _ := f.manager.Registry().Get("a")
	if ws.Settings != want {
		t.Errorf("registry Settings = %+v, want %+v", ws.Settings, want)
	}
	ref, _ := f.manager.Registry().SettingsRef("a")
	if ref != want {
		t.Errorf("settings ref = %+v, want %+v", ref, want)
	}
}

func TestManager_UpdateCodexBin_Rollback(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a", CodexBin: "/usr/bin/codex"})
	f.backend.CodexBinErrs = map[string]error{"a": errors.New("permission denied")}

	_, err := f.manager.UpdateCodexBin(context.Background(), "a", "/opt/codex")
	if err == nil {
		t.Fatal("UpdateCodexBin() error = nil, want backend error rethrown")
	}
	ws, _ := f.manager.Registry().Get("a")
	if ws.CodexBin != "/usr/bin/codex" {
		t.Errorf("CodexBin = %s, want /usr/bin/codex after rollback", ws.CodexBin)
	}
}

func TestManager_UpdateCodexBin(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a"})
	f.backend.CodexBinReturn = map[string]*workspace.Workspace{
		"a": {ID: "a", Path: "/a", CodexBin: "/opt/codex"},
	}

	updated, err := f.manager.UpdateCodexBin(context.Background(), "a", "/opt/codex")
	if err != nil {
		t.Fatalf("UpdateCodexBin() error = %v", err)
	}
	if updated.CodexBin != "/opt/codex" {
		t.Errorf("CodexBin = %s, want /opt/codex", updated.CodexBin)
	}
}

func TestManager_Connect_Rollback(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a"})
	f.backend.ConnectErrs = map[string]error{"a": errors.New("session refused")}

	if err := f.manager.Connect(context.Background(), "a"); err == nil {
		t.Fatal("Connect() error = nil, want backend error rethrown")
	}
	ws, _ := f.manager.Registry().Get("a")
	if ws.Connected {
		t.Error("Connected = true after failed connect, want false")
	}
}

func TestManager_Connect(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a"})

	if err := f.manager.Connect(context.Background(), "a"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	ws, _ := f.manager.Registry().Get("a")
	if !ws.Connected {
		t.Error("Connected = false, want true")
	}
}

func TestManager_MarkConnected(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a"})

	f.manager.MarkConnected("a")
	f.manager.MarkConnected("ghost") // ignored

	ws, _ := f.manager.Registry().Get("a")
	if !ws.Connected {
		t.Error("Connected = false, want true")
	}
	if n := f.backend.CallCount("connect"); n != 0 {
		t.Errorf("backend connect calls = %d, want 0 for MarkConnected", n)
	}
}

func TestManager_Remove_Declined(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a", Name: "a"})
	f.prompter.Response = false

	f.manager.Remove(context.Background(), "a")

	if n := f.backend.CallCount("remove"); n != 0 {
		t.Errorf("backend remove calls = %d, want 0 when declined", n)
	}
	if _, ok := f.manager.Registry().Get("a"); !ok {
		t.Error("workspace removed despite declined confirmation")
	}
}

func TestManager_Remove_CascadeScope(t *testing.T) {
	f := newFixture()
	f.seed(
		workspace.Workspace{ID: "root", Path: "/root", Name: "root"},
		workspace.Workspace{ID: "wt1", Path: "/root-wt1", Kind: workspace.KindWorktree, ParentID: "root"},
		workspace.Workspace{ID: "wt2", Path: "/root-wt2", Kind: workspace.KindWorktree, ParentID: "root"},
		workspace.Workspace{ID: "other", Path: "/other", Name: "other"},
	)

	f.manager.Remove(context.Background(), "root")

	if n := f.backend.CallCount("remove"); n != 1 {
		t.Errorf("backend remove calls = %d, want 1 (target only)", n)
	}
	for _, id := range []string{"root", "wt1", "wt2"} {
		if _, ok := f.manager.Registry().Get(id); ok {
			t.Errorf("workspace %s still registered after cascade", id)
		}
	}
	if _, ok := f.manager.Registry().Get("other"); !ok {
		t.Error("unrelated workspace removed by cascade")
	}
}

func TestManager_Remove_ActiveTargetCleared(t *testing.T) {
	f := newFixture()
	f.seed(
		workspace.Workspace{ID: "a", Path: "/a"},
		workspace.Workspace{ID: "b", Path: "/b"},
	)
	f.manager.Registry().SetActive("a")

	f.manager.Remove(context.Background(), "a")
	if got := f.manager.Registry().Active(); got != "" {
		t.Errorf("Active() = %q, want empty after removing active workspace", got)
	}
}

func TestManager_Remove_ActiveChildCleared(t *testing.T) {
	f := newFixture()
	f.seed(
		workspace.Workspace{ID: "root", Path: "/root"},
		workspace.Workspace{ID: "wt", Path: "/root-wt", ParentID: "root"},
	)
	f.manager.Registry().SetActive("wt")

	f.manager.Remove(context.Background(), "root")
	if got := f.manager.Registry().Active(); got != "" {
		t.Errorf("Active() = %q, want empty after cascade removed the active child", got)
	}
}

func TestManager_Remove_UnrelatedActiveUntouched(t *testing.T) {
	f := newFixture()
	f.seed(
		workspace.Workspace{ID: "a", Path: "/a"},
		workspace.Workspace{ID: "b", Path: "/b"},
	)
	f.manager.Registry().SetActive("b")

	f.manager.Remove(context.Background(), "a")
	if got := f.manager.Registry().Active(); got != "b" {
		t.Errorf("Active() = %q, want b", got)
	}
}

func TestManager_Remove_BackendFailure(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a", Name: "api"})
	f.backend.RemoveErrs = map[string]error{"a": errors.New("still has sessions")}

	f.manager.Remove(context.Background(), "a")

	if _, ok := f.manager.Registry().Get("a"); !ok {
		t.Error("registry changed despite backend failure")
	}
	notices := f.notifier.Notices()
	if len(notices) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notices))
	}
	if notices[0].Opts.Kind != workspace.NotifyError {
		t.Errorf("notification kind = %s, want error", notices[0].Opts.Kind)
	}
}

func TestManager_ObservabilityRecords(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a", Settings: workspace.Settings{Theme: "dark"}})
	f.backend.SettingsErrs = map[string]error{"a": errors.New("boom")}

	theme := "light"
	_, _ = f.manager.UpdateSettings(context.Background(), "a", workspace.SettingsPatch{Theme: &theme})

	client := f.sink.BySource(observe.SourceClient)
	if len(client) != 1 {
		t.Fatalf("client records = %d, want 1 (emitted before backend call)", len(client))
	}
	if client[0].Label != "workspace/updateSettings" {
		t.Errorf("record label = %s, want workspace/updateSettings", client[0].Label)
	}
	errs := f.sink.BySource(observe.SourceError)
	if len(errs) != 1 {
		t.Fatalf("error records = %d, want 1 (emitted on failure)", len(errs))
	}
}

func TestManager_Grouped(t *testing.T) {
	f := newFixture()
	f.seed(
		workspace.Workspace{ID: "a", Path: "/a"},
		workspace.Workspace{ID: "b", Path: "/b"},
		workspace.Workspace{ID: "c", Path: "/c"},
	)
	f.manager.SetGroups(
		[]workspace.Group{
			{Name: "Work", SortOrder: 2},
			{Name: "Personal", SortOrder: 1},
		},
		map[string]string{"a": "Work", "b": "Personal"},
	)

	views := f.manager.Grouped()
	if len(views) != 3 {
		t.Fatalf("grouped views = %d, want 3 (two declared + ungrouped)", len(views))
	}
	if views[0].Group.Name != "Personal" || views[1].Group.Name != "Work" {
		t.Errorf("group order = [%s %s], want [Personal Work]", views[0].Group.Name, views[1].Group.Name)
	}
	if views[2].Group.Name != workspace.UngroupedName {
		t.Errorf("last group = %s, want %s", views[2].Group.Name, workspace.UngroupedName)
	}
	if len(views[2].Workspaces) != 1 || views[2].Workspaces[0].ID != "c" {
		t.Errorf("ungrouped bucket = %+v, want [c]", views[2].Workspaces)
	}
}

func TestManager_GroupFor(t *testing.T) {
	f := newFixture()
	f.seed(workspace.Workspace{ID: "a", Path: "/a"})
	f.manager.SetGroups(
		[]workspace.Group{{Name: "Work", SortOrder: 0}},
		map[string]string{"a": "Work"},
	)

	if g := f.manager.GroupFor("a"); g.Name != "Work" {
		t.Errorf("GroupFor(a) = %s, want Work", g.Name)
	}
	if g := f.manager.GroupFor("unassigned"); g.Name != workspace.UngroupedName {
		t.Errorf("GroupFor(unassigned) = %s, want %s", g.Name, workspace.UngroupedName)
	}
}
