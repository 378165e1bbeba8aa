package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codexdeck/codexdeck/internal/audit"
	"github.com/codexdeck/codexdeck/internal/config"
	"github.com/codexdeck/codexdeck/internal/observe"
	"github.com/codexdeck/codexdeck/internal/rpc/client"
	"github.com/codexdeck/codexdeck/internal/workspace"
)

// session bundles everything a workspace command needs: loaded config, the
// backend client, the manager, and the optional audit store.
type session struct {
	cfg     *config.Config
	client  *client.WorkspaceClient
	manager *workspace.Manager
	store   *audit.Store
}

// newSession loads configuration, dials the backend, and returns a manager
// with the local registry already refreshed from the backend.
func newSession() (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	wc, err := client.NewWorkspaceClient(cfg.Backend.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to backend at %s: %w", cfg.Backend.URL, err)
	}

	var sink observe.Sink
	var store *audit.Store
	if cfg.Audit.Enabled {
		store, err = audit.NewStore(cfg.Audit.Path)
		if err != nil {
			log.Warn().Err(err).Msg("Audit store unavailable, continuing without it")
		} else {
			sink = store
		}
	}

	mgr := workspace.NewManager(wc, &terminalPrompter{}, &terminalNotifier{}, sink)
	mgr.SetDefaultCodexBin(cfg.Codex.DefaultBin)
	groups, assignments := cfg.WorkspaceGroups()
	mgr.SetGroups(groups, assignments)

	ctx, cancel := callContext(cfg)
	defer cancel()
	if err := mgr.Refresh(ctx); err != nil {
		wc.Close()
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("failed to load workspaces: %w", err)
	}

	return &session{cfg: cfg, client: wc, manager: mgr, store: store}, nil
}

func (s *session) close() {
	if s.store != nil {
		s.store.Close()
	}
	_ = s.client.Close()
}

// callContext returns a context bounded by the configured backend timeout.
func callContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	timeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	return context.WithTimeout(context.Background(), timeout)
}

// terminalPrompter asks for confirmation on stdin. The global --yes flag
// answers every prompt affirmatively without asking.
type terminalPrompter struct{}

func (p *terminalPrompter) Ask(ctx context.Context, message string, opts workspace.AskOptions) (bool, error) {
	if assumeYes {
		return true, nil
	}

	if opts.Title != "" {
		fmt.Printf("%s\n", opts.Title)
	}
	ok := opts.OKLabel
	if ok == "" {
		ok = "y"
	}
	fmt.Printf("%s [%s/N]: ", message, strings.ToLower(ok[:1]))

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// terminalNotifier prints notifications to stderr so they do not mix with
// tabular output on stdout.
type terminalNotifier struct{}

func (n *terminalNotifier) Notify(message string, opts workspace.NotifyOptions) {
	prefix := "Note"
	switch opts.Kind {
	case workspace.NotifyWarning:
		prefix = "Warning"
	case workspace.NotifyError:
		prefix = "Error"
	}
	if opts.Title != "" {
		fmt.Fprintf(os.Stderr, "%s [%s]: %s\n", prefix, opts.Title, message)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, message)
}
