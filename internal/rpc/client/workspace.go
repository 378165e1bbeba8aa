package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codexdeck/codexdeck/internal/workspace"
)

// WorkspaceClient implements workspace.Service over JSON-RPC.
type WorkspaceClient struct {
	client *Client
}

// NewWorkspaceClient creates a workspace backend client connected via JSON-RPC.
func NewWorkspaceClient(url string) (*WorkspaceClient, error) {
	client, err := NewClient(url)
	if err != nil {
		return nil, err
	}
	return &WorkspaceClient{client: client}, nil
}

// call performs the request and decodes the result into out (skipped when
// out is nil).
func (wc *WorkspaceClient) call(ctx context.Context, method string, params, out interface{}) error {
	resp, err := wc.client.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("backend error: %s", resp.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// ListWorkspaces returns all workspaces known to the backend.
func (wc *WorkspaceClient) ListWorkspaces(ctx context.Context) ([]workspace.Workspace, error) {
	var result struct {
		Workspaces []workspace.Workspace `json:"workspaces"`
	}
	if err := wc.call(ctx, "workspace/list", nil, &result); err != nil {
		return nil, err
	}
	return result.Workspaces, nil
}

// AddWorkspace registers a local path as a new workspace.
func (wc *WorkspaceClient) AddWorkspace(ctx context.Context, path, codexBin string) (*workspace.Workspace, error) {
	params := map[string]interface{}{
		"path":     path,
		"codexBin": codexBin,
	}
	var ws workspace.Workspace
	if err := wc.call(ctx, "workspace/add", params, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// AddWorkspaceFromGitURL clones a repository and registers the checkout.
func (wc *WorkspaceClient) AddWorkspaceFromGitURL(ctx context.Context, url, destination, folderName, codexBin string) (*workspace.Workspace, error) {
	params := map[string]interface{}{
		"url":         url,
		"destination": destination,
		"folderName":  folderName,
		"codexBin":    codexBin,
	}
	var ws workspace.Workspace
	if err := wc.call(ctx, "workspace/addFromGit", params, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// IsWorkspacePathDirectory reports whether path is an existing directory.
func (wc *WorkspaceClient) IsWorkspacePathDirectory(ctx context.Context, path string) (bool, error) {
	params := map[string]string{"path": path}
	var result struct {
		IsDirectory bool `json:"isDirectory"`
	}
	if err := wc.call(ctx, "workspace/isDirectory", params, &result); err != nil {
		return false, err
	}
	return result.IsDirectory, nil
}

// ConnectWorkspace establishes a live session for the workspace.
func (wc *WorkspaceClient) ConnectWorkspace(ctx context.Context, id string) error {
	params := map[string]string{"id": id}
	return wc.call(ctx, "workspace/connect", params, nil)
}

// RemoveWorkspace removes a workspace; the backend cascades to its
// direct worktrees.
func (wc *WorkspaceClient) RemoveWorkspace(ctx context.Context, id string) error {
	params := map[string]string{"id": id}
	return wc.call(ctx, "workspace/remove", params, nil)
}

// UpdateWorkspaceSettings persists settings and returns the updated entity.
func (wc *WorkspaceClient) UpdateWorkspaceSettings(ctx context.Context, id string, settings workspace.Settings) (*workspace.Workspace, error) {
	params := map[string]interface{}{
		"id":       id,
		"settings": settings,
	}
	var ws workspace.Workspace
	if err := wc.call(ctx, "workspace/updateSettings", params, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// UpdateWorkspaceCodexBin persists the binary override and returns the
// updated entity.
func (wc *WorkspaceClient) UpdateWorkspaceCodexBin(ctx context.Context, id, codexBin string) (*workspace.Workspace, error) {
	params := map[string]interface{}{
		"id":       id,
		"codexBin": codexBin,
	}
	var ws workspace.Workspace
	if err := wc.call(ctx, "workspace/updateCodexBin", params, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// PickWorkspacePaths opens the backend's native directory picker.
func (wc *WorkspaceClient) PickWorkspacePaths(ctx context.Context) ([]string, error) {
	var result struct {
		Paths []string `json:"paths"`
	}
	if err := wc.call(ctx, "workspace/pickPaths", nil, &result); err != nil {
		return nil, err
	}
	return result.Paths, nil
}

// Close closes the underlying connection.
func (wc *WorkspaceClient) Close() error {
	return wc.client.Close()
}
