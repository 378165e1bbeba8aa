// Package workspace implements the workspace state synchronization layer:
// the in-memory registry of workspace entities plus the operations that
// mutate it consistently with the remote backend.
package workspace

// Kind distinguishes a main workspace from one derived from it.
type Kind string

const (
	KindMain     Kind = "main"
	KindWorktree Kind = "worktree"
)

// Workspace is a tracked project root. IDs are assigned by the backend on
// creation and are unique within the registry. A workspace with an empty
// ParentID is a root workspace eligible to have worktrees; ParentID set
// means this entity is a dependent worktree of another workspace.
type Workspace struct {
	ID        string   `json:"id"`
	Path      string   `json:"path"`
	Name      string   `json:"name"`
	Kind      Kind     `json:"kind"`
	Connected bool     `json:"connected"`
	ParentID  string   `json:"parentId,omitempty"`
	Settings  Settings `json:"settings"`
	CodexBin  string   `json:"codexBin,omitempty"`
}

// DisplayName returns the workspace name, falling back to a generic label
// when the name is blank.
func (w Workspace) DisplayName() string {
	if w.Name == "" {
		return "this workspace"
	}
	return w.Name
}

// Settings holds per-workspace configuration. The schema is a fixed, flat
// record so every recognized option and its merge behaviour is statically
// known.
type Settings struct {
	Model          string `json:"model,omitempty"`
	ApprovalPolicy string `json:"approvalPolicy,omitempty"`
	SandboxMode    string `json:"sandboxMode,omitempty"`
	Theme          string `json:"theme,omitempty"`
	WebSearch      bool   `json:"webSearch,omitempty"`
}

// SettingsPatch is a partial settings update. Nil fields leave the current
// value untouched.
type SettingsPatch struct {
	Model          *string `json:"model,omitempty"`
	ApprovalPolicy *string `json:"approvalPolicy,omitempty"`
	SandboxMode    *string `json:"sandboxMode,omitempty"`
	Theme          *string `json:"theme,omitempty"`
	WebSearch      *bool   `json:"webSearch,omitempty"`
}

// Merge applies the patch to a copy of s, field by field.
func (s Settings) Merge(p SettingsPatch) Settings {
	out := s
	if p.Model != nil {
		out.Model = *p.Model
	}
	if p.ApprovalPolicy != nil {
		out.ApprovalPolicy = *p.ApprovalPolicy
	}
	if p.SandboxMode != nil {
		out.SandboxMode = *p.SandboxMode
	}
	if p.Theme != nil {
		out.Theme = *p.Theme
	}
	if p.WebSearch != nil {
		out.WebSearch = *p.WebSearch
	}
	return out
}

// UngroupedName is the reserved pseudo-group receiving workspaces without
// an explicit group assignment.
const UngroupedName = "Ungrouped"

// Group is a named partition of workspaces with an explicit sort order.
// Groups are supplied by application-level configuration; this package only
// reads membership to build derived views.
type Group struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

// GroupView is one bucket of the grouped derived view.
type GroupView struct {
	Group      Group
	Workspaces []Workspace
}
