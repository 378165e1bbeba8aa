// Package pathutil provides cross-platform path utilities for codexdeck.
package pathutil

import (
	"path/filepath"
	"strings"
)

// NormalizeKey converts a path string into a canonical key for equality
// comparison across platform path conventions: backslashes become forward
// slashes and trailing separators are stripped. Case is preserved.
//
// Examples:
//
//	C:\Users\dev\repo\  → C:/Users/dev/repo
//	/home/dev/repo/     → /home/dev/repo
func NormalizeKey(path string) string {
	key := strings.ReplaceAll(path, "\\", "/")
	for len(key) > 1 && strings.HasSuffix(key, "/") {
		key = strings.TrimSuffix(key, "/")
	}
	return key
}

// SplitList parses a free-text block of paths into individual entries.
// Entries are separated by newlines, commas, or semicolons; surrounding
// whitespace is trimmed and blank entries are dropped.
func SplitList(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ';'
	})

	paths := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}

// EncodePath converts a filesystem path to a flat string safe for use as
// a label in logs and audit records.
//
// Examples:
//
//	Unix:    /Users/dev/Projects/app  → -Users-dev-Projects-app
//	Windows: C:\Users\dev\Projects\app → -C:-Users-dev-Projects-app
func EncodePath(path string) string {
	// filepath.Clean normalises separators and removes trailing slashes.
	// filepath.ToSlash converts OS-specific separators to "/", so the
	// subsequent replace works identically on Unix, macOS, and Windows.
	return strings.ReplaceAll(filepath.ToSlash(filepath.Clean(path)), "/", "-")
}
