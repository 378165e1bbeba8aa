package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codexdeck/codexdeck/internal/pathutil"
)

// importStatus classifies the outcome of one import candidate.
type importStatus int

const (
	importAdded importStatus = iota
	importSkippedExisting
	importSkippedInvalid
	importFailed
)

// importOutcome is the typed per-candidate result of the batch pipeline.
type importOutcome struct {
	path   string
	status importStatus
	errMsg string
}

// maxImportFailureDetails caps the inline failure details in the summary.
const maxImportFailureDetails = 3

// ImportText parses a free-text block of paths (newline, comma, or
// semicolon separated) and imports them as a batch.
func (m *Manager) ImportText(ctx context.Context, text string) *Workspace {
	return m.ImportPaths(ctx, pathutil.SplitList(text))
}

// ImportPaths turns a list of raw path strings into newly registered
// workspaces. Candidates are processed strictly in input order after
// dedup; each candidate's validation and add completes before the next
// begins. Activation is granted only to the first successfully added
// workspace. Per-item errors never abort the batch; skips and failures are
// reported in one aggregate notification. Returns the first workspace that
// was added, or nil.
func (m *Manager) ImportPaths(ctx context.Context, paths []string) *Workspace {
	candidates := dedupeCandidates(paths)
	if len(candidates) == 0 {
		return nil
	}

	existing := make(map[string]bool, m.registry.Len())
	for _, ws := range m.registry.List() {
		existing[pathutil.NormalizeKey(ws.Path)] = true
	}

	var first *Workspace
	outcomes := make([]importOutcome, 0, len(candidates))

	for _, path := range candidates {
		if existing[pathutil.NormalizeKey(path)] {
			outcomes = append(outcomes, importOutcome{path: path, status: importSkippedExisting})
			continue
		}

		isDir, err := m.svc.IsWorkspacePathDirectory(ctx, path)
		if err != nil {
			outcomes = append(outcomes, importOutcome{path: path, status: importFailed, errMsg: err.Error()})
			continue
		}
		if !isDir {
			outcomes = append(outcomes, importOutcome{path: path, status: importSkippedInvalid})
			continue
		}

		ws, err := m.addWorkspace(ctx, path, first == nil)
		if err != nil {
			outcomes = append(outcomes, importOutcome{path: path, status: importFailed, errMsg: err.Error()})
			continue
		}
		if first == nil {
			first = ws
		}
		outcomes = append(outcomes, importOutcome{path: path, status: importAdded})
	}

	m.reportImport(outcomes)
	return first
}

// dedupeCandidates trims the raw input, drops blanks, and removes
// duplicates by normalized path key. The first occurrence wins.
func dedupeCandidates(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := pathutil.NormalizeKey(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// reportImport reduces the outcome list into a single user-facing summary.
// Nothing is reported when every candidate was added cleanly.
func (m *Manager) reportImport(outcomes []importOutcome) {
	var added, skippedExisting, skippedInvalid int
	var failures []importOutcome

	for _, o := range outcomes {
		switch o.status {
		case importAdded:
			added++
		case importSkippedExisting:
			skippedExisting++
		case importSkippedInvalid:
			skippedInvalid++
		case importFailed:
			failures = append(failures, o)
		}
	}

	log.Debug().
		Int("added", added).
		Int("skipped_existing", skippedExisting).
		Int("skipped_invalid", skippedInvalid).
		Int("failed", len(failures)).
		Msg("workspace import finished")

	if skippedExisting == 0 && skippedInvalid == 0 && len(failures) == 0 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Added %d workspace(s).", added)
	if skippedExisting > 0 {
		fmt.Fprintf(&b, " Skipped %d already added.", skippedExisting)
	}
	if skippedInvalid > 0 {
		fmt.Fprintf(&b, " Skipped %d that are not directories.", skippedInvalid)
	}
	if len(failures) > 0 {
		fmt.Fprintf(&b, " %d failed:", len(failures))
		for i, f := range failures {
			if i == maxImportFailureDetails {
				fmt.Fprintf(&b, " …and %d more.", len(failures)-maxImportFailureDetails)
				break
			}
			fmt.Fprintf(&b, " %s (%s)", f.path, f.errMsg)
			if i < len(failures)-1 && i < maxImportFailureDetails-1 {
				b.WriteString(";")
			}
		}
	}

	kind := NotifyWarning
	if len(failures) > 0 {
		kind = NotifyError
	}
	m.notifier.Notify(b.String(), NotifyOptions{Title: "Import Workspaces", Kind: kind})
}
