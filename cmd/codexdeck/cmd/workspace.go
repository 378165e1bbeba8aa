package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codexdeck/codexdeck/internal/workspace"
)

var (
	assumeYes     bool
	gitFolderName string
	importPick    bool
	setModel      string
	setApproval   string
	setSandbox    string
	setTheme      string
	setWebSearch  string
	listFlat      bool
)

// workspaceCmd is the parent command for workspace management.
var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces",
	Long:  `Manage the workspaces registered with the Codex backend.`,
}

// workspaceListCmd lists all workspaces.
var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all workspaces",
	Long:  `List all workspaces known to the backend, grouped as configured.`,
	RunE:  runWorkspaceList,
}

// workspaceAddCmd adds a new workspace from a local path.
var workspaceAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a workspace",
	Long: `Register a local directory as a workspace.

Example:
  codexdeck workspace add /path/to/repo`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkspaceAdd,
}

// workspaceAddGitCmd clones a repository and adds it as a workspace.
var workspaceAddGitCmd = &cobra.Command{
	Use:   "add-git <url> <destination>",
	Short: "Clone a repository and add it as a workspace",
	Long: `Clone a git repository into the destination directory and register the
checkout as a workspace.

Example:
  codexdeck workspace add-git https://github.com/acme/widgets ~/src --folder widgets-main`,
	Args: cobra.ExactArgs(2),
	RunE: runWorkspaceAddGit,
}

// workspaceImportCmd bulk-imports workspaces from paths, stdin, or a picker.
var workspaceImportCmd = &cobra.Command{
	Use:   "import [path...]",
	Short: "Import multiple workspaces",
	Long: `Import multiple workspace folders in one pass. Paths can be given as
arguments, piped on stdin (newline, comma, or semicolon separated), or chosen
with the backend's directory picker via --pick. Duplicates and paths already
registered are skipped; the first newly added workspace becomes active.

Example:
  codexdeck workspace import ~/src/api ~/src/web
  pbpaste | codexdeck workspace import`,
	RunE: runWorkspaceImport,
}

// workspaceRemoveCmd removes a workspace and its worktrees.
var workspaceRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a workspace",
	Long:  `Remove a workspace and its linked worktrees from the backend. Files on disk are not deleted.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceRemove,
}

// workspaceConnectCmd opens a live session for a workspace.
var workspaceConnectCmd = &cobra.Command{
	Use:   "connect <id>",
	Short: "Connect to a workspace",
	Long:  `Establish a live session for the workspace on the backend.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceConnect,
}

// workspaceSetCmd updates workspace settings.
var workspaceSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Update workspace settings",
	Long: `Update one or more settings on a workspace. Only flags that are
provided change; pass an empty value to clear a setting.

Example:
  codexdeck workspace set ws-1 --model gpt-5 --theme dark
  codexdeck workspace set ws-1 --web-search=false`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkspaceSet,
}

// workspaceSetBinCmd sets the per-workspace codex binary override.
var workspaceSetBinCmd = &cobra.Command{
	Use:   "set-bin <id> <path>",
	Short: "Set the codex binary for a workspace",
	Long:  `Set the codex binary override for a workspace. Pass an empty string to clear the override.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runWorkspaceSetBin,
}

func init() {
	workspaceCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmation prompts")

	workspaceListCmd.Flags().BoolVar(&listFlat, "flat", false, "list without group headings")
	workspaceAddGitCmd.Flags().StringVar(&gitFolderName, "folder", "", "checkout directory name (default: derived from the URL)")
	workspaceImportCmd.Flags().BoolVar(&importPick, "pick", false, "choose directories with the backend's native picker")

	workspaceSetCmd.Flags().StringVar(&setModel, "model", "", "model name")
	workspaceSetCmd.Flags().StringVar(&setApproval, "approval", "", "approval policy")
	workspaceSetCmd.Flags().StringVar(&setSandbox, "sandbox", "", "sandbox mode")
	workspaceSetCmd.Flags().StringVar(&setTheme, "theme", "", "UI theme")
	workspaceSetCmd.Flags().StringVar(&setWebSearch, "web-search", "", "enable web search (true/false)")

	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceAddCmd)
	workspaceCmd.AddCommand(workspaceAddGitCmd)
	workspaceCmd.AddCommand(workspaceImportCmd)
	workspaceCmd.AddCommand(workspaceRemoveCmd)
	workspaceCmd.AddCommand(workspaceConnectCmd)
	workspaceCmd.AddCommand(workspaceSetCmd)
	workspaceCmd.AddCommand(workspaceSetBinCmd)
}

func runWorkspaceList(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	if s.manager.Registry().Len() == 0 {
		fmt.Println("No workspaces registered.")
		fmt.Println("\nAdd one with: codexdeck workspace add <path>")
		return nil
	}

	activeID := s.manager.Registry().Active()
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)

	if listFlat {
		printWorkspaceHeader(w)
		for _, ws := range s.manager.Registry().List() {
			printWorkspaceRow(w, ws, activeID)
		}
		return w.Flush()
	}

	for i, view := range s.manager.Grouped() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", view.Group.Name)
		printWorkspaceHeader(w)
		if len(view.Workspaces) == 0 {
			fmt.Fprintln(w, "  (empty)")
			continue
		}
		for _, ws := range view.Workspaces {
			printWorkspaceRow(w, ws, activeID)
		}
	}
	return w.Flush()
}

func printWorkspaceHeader(w io.Writer) {
	fmt.Fprintln(w, "  ID\tNAME\tKIND\tPATH\tSTATUS")
	fmt.Fprintln(w, "  --\t----\t----\t----\t------")
}

func printWorkspaceRow(w io.Writer, ws workspace.Workspace, activeID string) {
	status := "idle"
	if ws.Connected {
		status = "connected"
	}
	if ws.ID == activeID {
		status += " *"
	}
	fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
		ws.ID,
		ws.DisplayName(),
		ws.Kind,
		truncatePath(ws.Path, 40),
		status,
	)
}

func runWorkspaceAdd(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := callContext(s.cfg)
	defer cancel()

	ws, err := s.manager.AddFromPath(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to add workspace: %w", err)
	}

	fmt.Printf("Added workspace %s (%s)\n", ws.ID, ws.DisplayName())
	return nil
}

func runWorkspaceAddGit(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := callContext(s.cfg)
	defer cancel()

	fmt.Printf("Cloning %s...\n", args[0])
	ws, err := s.manager.AddFromGitURL(ctx, args[0], args[1], gitFolderName)
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	fmt.Printf("Added workspace %s at %s\n", ws.ID, ws.Path)
	return nil
}

func runWorkspaceImport(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := callContext(s.cfg)
	defer cancel()

	before := s.manager.Registry().Len()
	var first *workspace.Workspace

	switch {
	case importPick:
		paths, err := s.client.PickWorkspacePaths(ctx)
		if err != nil {
			return fmt.Errorf("directory picker failed: %w", err)
		}
		first = s.manager.ImportPaths(ctx, paths)
	case len(args) > 0:
		first = s.manager.ImportPaths(ctx, args)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read paths from stdin: %w", err)
		}
		first = s.manager.ImportText(ctx, string(data))
	}

	added := s.manager.Registry().Len() - before
	if added == 0 {
		fmt.Println("No new workspaces added.")
		return nil
	}
	fmt.Printf("Imported %d workspace(s).\n", added)
	if first != nil {
		fmt.Printf("Active workspace: %s (%s)\n", first.ID, first.DisplayName())
	}
	return nil
}

func runWorkspaceRemove(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := callContext(s.cfg)
	defer cancel()

	before := exists(s.manager, args[0])
	s.manager.Remove(ctx, args[0])

	if before && !exists(s.manager, args[0]) {
		fmt.Printf("Removed workspace %s\n", args[0])
	}
	return nil
}

func exists(m *workspace.Manager, id string) bool {
	_, ok := m.Registry().Get(id)
	return ok
}

func runWorkspaceConnect(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := callContext(s.cfg)
	defer cancel()

	if err := s.manager.Connect(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	fmt.Printf("Connected to workspace %s\n", args[0])
	return nil
}

func runWorkspaceSet(cmd *cobra.Command, args []string) error {
	patch := workspace.SettingsPatch{}
	changed := false

	if cmd.Flags().Changed("model") {
		patch.Model = &setModel
		changed = true
	}
	if cmd.Flags().Changed("approval") {
		patch.ApprovalPolicy = &setApproval
		changed = true
	}
	if cmd.Flags().Changed("sandbox") {
		patch.SandboxMode = &setSandbox
		changed = true
	}
	if cmd.Flags().Changed("theme") {
		patch.Theme = &setTheme
		changed = true
	}
	if cmd.Flags().Changed("web-search") {
		enabled, err := strconv.ParseBool(setWebSearch)
		if err != nil {
			return fmt.Errorf("invalid --web-search value %q (want true or false)", setWebSearch)
		}
		patch.WebSearch = &enabled
		changed = true
	}

	if !changed {
		return fmt.Errorf("no settings provided; see 'codexdeck workspace set --help'")
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := callContext(s.cfg)
	defer cancel()

	ws, err := s.manager.UpdateSettings(ctx, args[0], patch)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	fmt.Printf("Updated settings for %s\n", ws.DisplayName())
	return nil
}

func runWorkspaceSetBin(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := callContext(s.cfg)
	defer cancel()

	ws, err := s.manager.UpdateCodexBin(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to update codex binary: %w", err)
	}

	if ws.CodexBin == "" {
		fmt.Printf("Cleared codex binary override for %s\n", ws.DisplayName())
	} else {
		fmt.Printf("Set codex binary for %s to %s\n", ws.DisplayName(), ws.CodexBin)
	}
	return nil
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}
