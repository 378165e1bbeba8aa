package workspace

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/codexdeck/codexdeck/internal/domain"
	"github.com/codexdeck/codexdeck/internal/observe"
)

// Manager composes the registry with the backend service and the
// presentation collaborators, and exposes the workspace operations to the
// UI layer. It owns the registry and the settings side cache exclusively;
// no other component mutates them.
//
// Concurrency: operations apply registry writes atomically, but two
// concurrent operations targeting the same workspace ID are not serialized
// here; the last write to complete wins. The driving UI is expected to
// serialize user-initiated operations on a single target.
type Manager struct {
	svc      Service
	prompter Prompter
	notifier Notifier
	sink     observe.Sink

	registry *Registry

	mu              sync.RWMutex
	groups          []Group
	assignments     map[string]string // workspace ID → group name
	defaultCodexBin string
	hasLoaded       bool
}

// NewManager creates a manager around the given backend service and
// presentation collaborators. A nil sink discards debug records.
func NewManager(svc Service, prompter Prompter, notifier Notifier, sink observe.Sink) *Manager {
	if sink == nil {
		sink = observe.Nop()
	}
	return &Manager{
		svc:         svc,
		prompter:    prompter,
		notifier:    notifier,
		sink:        sink,
		registry:    NewRegistry(),
		assignments: make(map[string]string),
	}
}

// Registry exposes the canonical registry for read access.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// SetDefaultCodexBin sets the binary override passed to backend add calls.
func (m *Manager) SetDefaultCodexBin(bin string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultCodexBin = bin
}

// SetGroups replaces the group definitions and workspace assignments used
// by the grouped derived view.
func (m *Manager) SetGroups(groups []Group, assignments map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.groups = make([]Group, len(groups))
	copy(m.groups, groups)
	m.assignments = make(map[string]string, len(assignments))
	for id, name := range assignments {
		m.assignments[id] = name
	}
}

// HasLoaded reports whether at least one refresh attempt has completed,
// successfully or not.
func (m *Manager) HasLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasLoaded
}

// Refresh replaces the registry contents with the backend listing. On
// failure the prior state is left untouched; either way the loaded flag is
// set for this attempt.
func (m *Manager) Refresh(ctx context.Context) error {
	workspaces, err := m.svc.ListWorkspaces(ctx)

	m.mu.Lock()
	m.hasLoaded = true
	m.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("workspace refresh failed")
		return fmt.Errorf("failed to list workspaces: %w", err)
	}

	m.registry.Replace(workspaces)
	log.Debug().Int("count", len(workspaces)).Msg("workspace registry refreshed")
	return nil
}

// AddFromPath registers a local path as a new workspace and activates it.
func (m *Manager) AddFromPath(ctx context.Context, path string) (*Workspace, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, domain.ErrEmptyPath
	}
	return m.addWorkspace(ctx, path, true)
}

// AddFromGitURL clones a repository into destination and registers the
// checkout as a new active workspace. folderName optionally overrides the
// checkout directory name; blank means the backend picks one.
func (m *Manager) AddFromGitURL(ctx context.Context, url, destination, folderName string) (*Workspace, error) {
	url = strings.TrimSpace(url)
	destination = strings.TrimSpace(destination)
	folderName = strings.TrimSpace(folderName)

	if url == "" {
		return nil, domain.ErrEmptyGitURL
	}
	if destination == "" {
		return nil, domain.ErrEmptyDestination
	}

	m.emit(observe.SourceClient, "workspace/addFromGit", map[string]any{
		"url":         url,
		"destination": destination,
		"folderName":  folderName,
	})

	ws, err := m.svc.AddWorkspaceFromGitURL(ctx, url, destination, folderName, m.codexBinDefault())
	if err != nil {
		m.emit(observe.SourceError, "workspace/addFromGit", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("failed to add workspace from %s: %w", url, err)
	}

	m.register(*ws, true)
	return ws, nil
}

// addWorkspace runs the single-item add flow: create remotely, then
// register locally, optionally granting activation.
func (m *Manager) addWorkspace(ctx context.Context, path string, activate bool) (*Workspace, error) {
	m.emit(observe.SourceClient, "workspace/add", map[string]any{"path": path})

	ws, err := m.svc.AddWorkspace(ctx, path, m.codexBinDefault())
	if err != nil {
		m.emit(observe.SourceError, "workspace/add", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to add workspace %s: %w", path, err)
	}

	m.register(*ws, activate)
	return ws, nil
}

// register records a backend-created workspace in the registry.
func (m *Manager) register(ws Workspace, activate bool) {
	m.registry.Upsert(ws)
	m.registry.SetSettingsRef(ws.ID, ws.Settings)
	if activate {
		m.registry.SetActive(ws.ID)
	}
	log.Info().Str("workspace_id", ws.ID).Str("path", ws.Path).Bool("active", activate).Msg("workspace registered")
}

// UpdateSettings merges the patch into the workspace settings, applies the
// result optimistically, and reconciles with the backend's authoritative
// entity. On backend failure the pre-mutation settings are restored in the
// registry and the side cache, and the error is returned to the caller.
func (m *Manager) UpdateSettings(ctx context.Context, id string, patch SettingsPatch) (*Workspace, error) {
	snapshot, ok := m.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, id)
	}

	field := NewField(snapshot.Settings)
	merged := snapshot.Settings.Merge(patch)
	if err := field.Stage(merged); err != nil {
		return nil, err
	}

	// Optimistic write: list entry and side cache both see the merge
	// before the backend confirms.
	optimistic := snapshot
	optimistic.Settings = field.Value()
	m.registry.Upsert(optimistic)
	m.registry.SetSettingsRef(id, field.Value())

	m.emit(observe.SourceClient, "workspace/updateSettings", map[string]any{
		"workspace_id": id,
		"settings":     merged,
	})

	updated, err := m.svc.UpdateWorkspaceSettings(ctx, id, merged)
	if err != nil {
		prev := field.Rollback()
		restored := snapshot
		restored.Settings = prev
		m.registry.Upsert(restored)
		m.registry.SetSettingsRef(id, prev)

		m.emit(observe.SourceError, "workspace/updateSettings", map[string]any{
			"workspace_id": id,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("failed to update settings for %s: %w", id, err)
	}

	// The backend's return value is authoritative and may differ from the
	// locally computed merge.
	field.Commit(updated.Settings)
	m.registry.Upsert(*updated)
	m.registry.SetSettingsRef(id, updated.Settings)
	return updated, nil
}

// UpdateCodexBin replaces the workspace's binary override ("" clears it),
// optimistically, with rollback on backend failure.
func (m *Manager) UpdateCodexBin(ctx context.Context, id, codexBin string) (*Workspace, error) {
	snapshot, ok := m.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, id)
	}

	field := NewField(snapshot.CodexBin)
	if err := field.Stage(codexBin); err != nil {
		return nil, err
	}

	optimistic := snapshot
	optimistic.CodexBin = field.Value()
	m.registry.Upsert(optimistic)

	m.emit(observe.SourceClient, "workspace/updateCodexBin", map[string]any{
		"workspace_id": id,
		"codex_bin":    codexBin,
	})

	updated, err := m.svc.UpdateWorkspaceCodexBin(ctx, id, codexBin)
	if err != nil {
		restored := snapshot
		restored.CodexBin = field.Rollback()
		m.registry.Upsert(restored)

		m.emit(observe.SourceError, "workspace/updateCodexBin", map[string]any{
			"workspace_id": id,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("failed to update codex binary for %s: %w", id, err)
	}

	field.Commit(updated.CodexBin)
	m.registry.Upsert(*updated)
	return updated, nil
}

// Connect establishes a backend session for the workspace, marking it
// connected optimistically and reverting on failure.
func (m *Manager) Connect(ctx context.Context, id string) error {
	snapshot, ok := m.registry.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, id)
	}

	field := NewField(snapshot.Connected)
	if err := field.Stage(true); err != nil {
		return err
	}

	optimistic := snapshot
	optimistic.Connected = field.Value()
	m.registry.Upsert(optimistic)

	m.emit(observe.SourceClient, "workspace/connect", map[string]any{"workspace_id": id})

	if err := m.svc.ConnectWorkspace(ctx, id); err != nil {
		restored := snapshot
		restored.Connected = field.Rollback()
		m.registry.Upsert(restored)

		m.emit(observe.SourceError, "workspace/connect", map[string]any{
			"workspace_id": id,
			"error":        err.Error(),
		})
		return fmt.Errorf("failed to connect workspace %s: %w", id, err)
	}

	field.Commit(true)
	return nil
}

// MarkConnected flags a workspace as connected without a backend call, for
// connections established out of band. Unknown IDs are ignored.
func (m *Manager) MarkConnected(id string) {
	ws, ok := m.registry.Get(id)
	if !ok {
		return
	}
	ws.Connected = true
	m.registry.Upsert(ws)
}

// Remove deletes a workspace after user confirmation. The backend cascades
// removal to direct worktrees, so on success the registry drops the target
// and every workspace whose ParentID equals it (direct children only, not
// transitive grandchildren — matching the backend's own cascade scope).
//
// Backend failure is terminal here: it is reported through the notifier,
// not returned, because the triggering UI flow already resolved at the
// confirmation step.
func (m *Manager) Remove(ctx context.Context, id string) {
	target, _ := m.registry.Get(id)
	name := target.DisplayName()

	childIDs := m.directChildren(id)

	message := fmt.Sprintf("Remove %s?", name)
	if n := len(childIDs); n == 1 {
		message = fmt.Sprintf("Remove %s and its worktree?", name)
	} else if n > 1 {
		message = fmt.Sprintf("Remove %s and its %d worktrees?", name, n)
	}

	confirmed, err := m.prompter.Ask(ctx, message, AskOptions{
		Title:       "Remove Workspace",
		Kind:        NotifyWarning,
		OKLabel:     "Remove",
		CancelLabel: "Cancel",
	})
	if err != nil {
		log.Warn().Err(err).Str("workspace_id", id).Msg("remove confirmation failed")
		return
	}
	if !confirmed {
		return
	}

	m.emit(observe.SourceClient, "workspace/remove", map[string]any{"workspace_id": id})

	if err := m.svc.RemoveWorkspace(ctx, id); err != nil {
		m.emit(observe.SourceError, "workspace/remove", map[string]any{
			"workspace_id": id,
			"error":        err.Error(),
		})
		log.Error().Err(err).Str("workspace_id", id).Msg("workspace removal failed")
		m.notifier.Notify(fmt.Sprintf("Failed to remove %s: %s", name, err.Error()), NotifyOptions{
			Title: "Remove Workspace",
			Kind:  NotifyError,
		})
		return
	}

	removed := m.registry.Remove(append(childIDs, id)...)
	log.Info().Str("workspace_id", id).Int("removed", removed).Msg("workspace removed")
}

// directChildren returns the IDs of workspaces whose ParentID is id.
func (m *Manager) directChildren(id string) []string {
	var ids []string
	for _, ws := range m.registry.List() {
		if ws.ParentID == id {
			ids = append(ids, ws.ID)
		}
	}
	return ids
}

// ByID returns a lookup map of all registered workspaces.
func (m *Manager) ByID() map[string]Workspace {
	list := m.registry.List()
	out := make(map[string]Workspace, len(list))
	for _, ws := range list {
		out[ws.ID] = ws
	}
	return out
}

// GroupFor returns the group a workspace is assigned to, falling back to
// the ungrouped pseudo-group.
func (m *Manager) GroupFor(id string) Group {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if name, ok := m.assignments[id]; ok {
		for _, g := range m.groups {
			if g.Name == name {
				return g
			}
		}
	}
	return m.ungrouped()
}

// Grouped partitions the registry into its assigned groups, ordered by the
// groups' declared sort order. Declared groups appear even when empty; the
// ungrouped bucket appears only when it has members.
func (m *Manager) Grouped() []GroupView {
	list := m.registry.List()

	m.mu.RLock()
	defer m.mu.RUnlock()

	ordered := make([]Group, len(m.groups))
	copy(ordered, m.groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	declared := make(map[string]bool, len(ordered))
	hasUngrouped := false
	for _, g := range ordered {
		declared[g.Name] = true
		if g.Name == UngroupedName {
			hasUngrouped = true
		}
	}

	buckets := make(map[string][]Workspace)
	for _, ws := range list {
		name, ok := m.assignments[ws.ID]
		if !ok || !declared[name] {
			name = UngroupedName
		}
		buckets[name] = append(buckets[name], ws)
	}

	views := make([]GroupView, 0, len(ordered)+1)
	for _, g := range ordered {
		views = append(views, GroupView{Group: g, Workspaces: buckets[g.Name]})
	}
	if !hasUngrouped && len(buckets[UngroupedName]) > 0 {
		views = append(views, GroupView{Group: m.ungrouped(), Workspaces: buckets[UngroupedName]})
	}
	return views
}

// ungrouped returns the reserved pseudo-group, using its declared sort
// order when the configuration defines one. Callers hold m.mu.
func (m *Manager) ungrouped() Group {
	for _, g := range m.groups {
		if g.Name == UngroupedName {
			return g
		}
	}
	max := 0
	for _, g := range m.groups {
		if g.SortOrder >= max {
			max = g.SortOrder + 1
		}
	}
	return Group{Name: UngroupedName, SortOrder: max}
}

func (m *Manager) codexBinDefault() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultCodexBin
}

func (m *Manager) emit(source observe.Source, label string, payload map[string]any) {
	m.sink.Record(observe.NewRecord(source, label, payload))
}
