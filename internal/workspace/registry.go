package workspace

import "sync"

// Registry is the authoritative in-process collection of workspaces: an
// ordered sequence (insertion order = display order), the active-workspace
// pointer, and the settings side cache keyed by workspace ID.
//
// Every exported method is atomic with respect to the others. The active
// pointer is re-validated inside every mutation that can drop entities, so
// it always refers to a workspace currently present or is empty.
type Registry struct {
	mu          sync.RWMutex
	workspaces  []Workspace
	activeID    string
	settingsRef map[string]Settings
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		settingsRef: make(map[string]Settings),
	}
}

// List returns a copy of the workspaces in display order.
func (r *Registry) List() []Workspace {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Workspace, len(r.workspaces))
	copy(out, r.workspaces)
	return out
}

// Get returns the workspace with the given ID.
func (r *Registry) Get(id string) (Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ws := range r.workspaces {
		if ws.ID == id {
			return ws, true
		}
	}
	return Workspace{}, false
}

// Len returns the number of registered workspaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workspaces)
}

// Upsert replaces the workspace with a matching ID in place, or appends it
// when no entry matches.
func (r *Registry) Upsert(ws Workspace) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.workspaces {
		if r.workspaces[i].ID == ws.ID {
			r.workspaces[i] = ws
			return
		}
	}
	r.workspaces = append(r.workspaces, ws)
}

// Replace swaps the entire registry contents. Settings refs for dropped
// workspaces are discarded, and the active pointer is cleared when the
// referenced entity is no longer present.
func (r *Registry) Replace(workspaces []Workspace) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.workspaces = make([]Workspace, len(workspaces))
	copy(r.workspaces, workspaces)

	present := make(map[string]bool, len(workspaces))
	for _, ws := range workspaces {
		present[ws.ID] = true
		r.settingsRef[ws.ID] = ws.Settings
	}
	for id := range r.settingsRef {
		if !present[id] {
			delete(r.settingsRef, id)
		}
	}
	if r.activeID != "" && !present[r.activeID] {
		r.activeID = ""
	}
}

// Remove drops every workspace whose ID is in ids and returns how many
// were removed. If the active pointer referenced a removed entity it is
// cleared; otherwise it is left untouched.
func (r *Registry) Remove(ids ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := r.workspaces[:0]
	removed := 0
	for _, ws := range r.workspaces {
		if drop[ws.ID] {
			removed++
			delete(r.settingsRef, ws.ID)
			if r.activeID == ws.ID {
				r.activeID = ""
			}
			continue
		}
		kept = append(kept, ws)
	}
	r.workspaces = kept
	return removed
}

// SetActive updates the active-workspace pointer. Setting an ID that is
// not registered is ignored; an empty ID clears the pointer.
func (r *Registry) SetActive(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		r.activeID = ""
		return
	}
	for _, ws := range r.workspaces {
		if ws.ID == id {
			r.activeID = id
			return
		}
	}
}

// Active returns the active workspace ID, or "" when none is active.
func (r *Registry) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// SettingsRef returns the side-cached settings for a workspace ID.
func (r *Registry) SettingsRef(id string) (Settings, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settingsRef[id]
	return s, ok
}

// SetSettingsRef stages settings in the side cache.
func (r *Registry) SetSettingsRef(id string, s Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settingsRef[id] = s
}
