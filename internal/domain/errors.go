// Package domain contains domain errors used throughout the application.
package domain

import "errors"

// Sentinel errors for common error conditions.
var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrEmptyGitURL       = errors.New("git url cannot be empty")
	ErrEmptyDestination  = errors.New("destination path cannot be empty")
	ErrEmptyPath         = errors.New("workspace path cannot be empty")
	ErrBackendClosed     = errors.New("backend connection closed")
)
