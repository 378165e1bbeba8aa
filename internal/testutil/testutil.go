// Package testutil provides shared test doubles for codexdeck tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/codexdeck/codexdeck/internal/observe"
	"github.com/codexdeck/codexdeck/internal/workspace"
)

// Call records one backend invocation.
type Call struct {
	Method string
	Arg    string
}

// MockBackend implements workspace.Service with scriptable results.
// The zero value is usable: adds succeed with generated IDs, every path is
// a directory, and all other operations succeed.
type MockBackend struct {
	mu     sync.Mutex
	nextID int
	calls  []Call

	ListResult []workspace.Workspace
	ListErr    error

	AddErrs map[string]error // keyed by path
	GitErr  error

	DirResults map[string]bool // default true when absent
	DirErrs    map[string]error

	ConnectErrs map[string]error // keyed by workspace ID
	RemoveErrs  map[string]error

	SettingsErrs   map[string]error
	SettingsReturn map[string]*workspace.Workspace // full-entity override per ID

	CodexBinErrs   map[string]error
	CodexBinReturn map[string]*workspace.Workspace

	PickResult []string
	PickErr    error
}

// NewMockBackend creates an empty scriptable backend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (m *MockBackend) record(method, arg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Arg: arg})
}

// Calls returns every recorded invocation in order.
func (m *MockBackend) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times method was invoked.
func (m *MockBackend) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *MockBackend) ListWorkspaces(ctx context.Context) ([]workspace.Workspace, error) {
	m.record("list", "")
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]workspace.Workspace, len(m.ListResult))
	copy(out, m.ListResult)
	return out, nil
}

func (m *MockBackend) AddWorkspace(ctx context.Context, path, codexBin string) (*workspace.Workspace, error) {
	m.record("add", path)
	if err := m.AddErrs[path]; err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.nextID++
	id := fmt.Sprintf("ws-%d", m.nextID)
	m.mu.Unlock()

	return &workspace.Workspace{
		ID:       id,
		Path:     path,
		Name:     filepath.Base(path),
		Kind:     workspace.KindMain,
		CodexBin: codexBin,
	}, nil
}

func (m *MockBackend) AddWorkspaceFromGitURL(ctx context.Context, url, destination, folderName, codexBin string) (*workspace.Workspace, error) {
	m.record("addFromGit", url)
	if m.GitErr != nil {
		return nil, m.GitErr
	}

	m.mu.Lock()
	m.nextID++
	id := fmt.Sprintf("ws-%d", m.nextID)
	m.mu.Unlock()

	name := folderName
	if name == "" {
		name = filepath.Base(url)
	}
	return &workspace.Workspace{
		ID:       id,
		Path:     filepath.Join(destination, name),
		Name:     name,
		Kind:     workspace.KindMain,
		CodexBin: codexBin,
	}, nil
}

func (m *MockBackend) IsWorkspacePathDirectory(ctx context.Context, path string) (bool, error) {
	m.record("isDirectory", path)
	if err := m.DirErrs[path]; err != nil {
		return false, err
	}
	if isDir, ok := m.DirResults[path]; ok {
		return isDir, nil
	}
	return true, nil
}

func (m *MockBackend) ConnectWorkspace(ctx context.Context, id string) error {
	m.record("connect", id)
	return m.ConnectErrs[id]
}

func (m *MockBackend) RemoveWorkspace(ctx context.Context, id string) error {
	m.record("remove", id)
	return m.RemoveErrs[id]
}

func (m *MockBackend) UpdateWorkspaceSettings(ctx context.Context, id string, settings workspace.Settings) (*workspace.Workspace, error) {
	m.record("updateSettings", id)
	if err := m.SettingsErrs[id]; err != nil {
		return nil, err
	}
	if ws := m.SettingsReturn[id]; ws != nil {
		out := *ws
		return &out, nil
	}
	return &workspace.Workspace{ID: id, Settings: settings}, nil
}

func (m *MockBackend) UpdateWorkspaceCodexBin(ctx context.Context, id, codexBin string) (*workspace.Workspace, error) {
	m.record("updateCodexBin", id)
	if err := m.CodexBinErrs[id]; err != nil {
		return nil, err
	}
	if ws := m.CodexBinReturn[id]; ws != nil {
		out := *ws
		return &out, nil
	}
	return &workspace.Workspace{ID: id, CodexBin: codexBin}, nil
}

func (m *MockBackend) PickWorkspacePaths(ctx context.Context) ([]string, error) {
	m.record("pickPaths", "")
	return m.PickResult, m.PickErr
}

// MockPrompter answers every confirmation with a fixed response.
type MockPrompter struct {
	mu       sync.Mutex
	Response bool
	Err      error
	asked    []string
}

func (p *MockPrompter) Ask(ctx context.Context, message string, opts workspace.AskOptions) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, message)
	return p.Response, p.Err
}

// Asked returns every prompt message shown.
func (p *MockPrompter) Asked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.asked))
	copy(out, p.asked)
	return out
}

// Notice is one captured notification.
type Notice struct {
	Message string
	Opts    workspace.NotifyOptions
}

// MockNotifier captures notifications.
type MockNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *MockNotifier) Notify(message string, opts workspace.NotifyOptions) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, Notice{Message: message, Opts: opts})
}

// Notices returns every captured notification in order.
func (n *MockNotifier) Notices() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, len(n.notices))
	copy(out, n.notices)
	return out
}

// RecorderSink captures observability records.
type RecorderSink struct {
	mu      sync.Mutex
	records []observe.Record
}

func (s *RecorderSink) Record(rec observe.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Records returns every captured record in order.
func (s *RecorderSink) Records() []observe.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]observe.Record, len(s.records))
	copy(out, s.records)
	return out
}

// BySource filters captured records by source.
func (s *RecorderSink) BySource(source observe.Source) []observe.Record {
	var out []observe.Record
	for _, r := range s.Records() {
		if r.Source == source {
			out = append(out, r)
		}
	}
	return out
}
