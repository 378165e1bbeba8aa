package workspace

import "context"

// Service is the backend boundary. Every method is a request/response call
// that may fail with an error carrying a human-readable message. No method
// is retried by this layer.
type Service interface {
	// ListWorkspaces returns the backend's authoritative workspace set.
	ListWorkspaces(ctx context.Context) ([]Workspace, error)

	// AddWorkspace registers a local path as a workspace. codexBin is an
	// optional default binary override ("" for none).
	AddWorkspace(ctx context.Context, path, codexBin string) (*Workspace, error)

	// AddWorkspaceFromGitURL clones a repository and registers it.
	// folderName optionally overrides the checkout directory name.
	AddWorkspaceFromGitURL(ctx context.Context, url, destination, folderName, codexBin string) (*Workspace, error)

	// IsWorkspacePathDirectory reports whether path exists and is a directory.
	IsWorkspacePathDirectory(ctx context.Context, path string) (bool, error)

	// ConnectWorkspace establishes a live session for the workspace.
	ConnectWorkspace(ctx context.Context, id string) error

	// RemoveWorkspace removes the workspace. The backend cascades removal
	// to the workspace's direct worktrees.
	RemoveWorkspace(ctx context.Context, id string) error

	// UpdateWorkspaceSettings persists settings and returns the full
	// updated entity; the returned settings may be server-normalized.
	UpdateWorkspaceSettings(ctx context.Context, id string, settings Settings) (*Workspace, error)

	// UpdateWorkspaceCodexBin persists the per-workspace binary override
	// ("" clears it) and returns the full updated entity.
	UpdateWorkspaceCodexBin(ctx context.Context, id, codexBin string) (*Workspace, error)

	// PickWorkspacePaths opens a native directory picker where available.
	PickWorkspacePaths(ctx context.Context) ([]string, error)
}

// AskOptions configure a confirmation prompt.
type AskOptions struct {
	Title       string
	Kind        string
	OKLabel     string
	CancelLabel string
}

// Prompter obtains a yes/no confirmation from the user.
type Prompter interface {
	Ask(ctx context.Context, message string, opts AskOptions) (bool, error)
}

// Notification severities.
const (
	NotifyWarning = "warning"
	NotifyError   = "error"
)

// NotifyOptions configure a user-facing notification.
type NotifyOptions struct {
	Title string
	Kind  string
}

// Notifier surfaces a message to the user.
type Notifier interface {
	Notify(message string, opts NotifyOptions)
}
