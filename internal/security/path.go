// Package security confines the MCP tool surface to a configured root
// directory. The strip tools write files, so every path an MCP client hands
// over is resolved, symlink-checked and verified to sit inside that root
// before the engine touches it.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator provides containment validation for file paths
type PathValidator struct {
	rootDirectory string
}

// NewPathValidator creates a validator confined to the given directory
func NewPathValidator(rootDirectory string) (*PathValidator, error) {
	if rootDirectory == "" {
		return nil, fmt.Errorf("root directory cannot be empty")
	}
	abs, err := filepath.Abs(rootDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	return &PathValidator{
		rootDirectory: abs,
	}, nil
}

// RootDirectory returns the configured containment root
func (v *PathValidator) RootDirectory() string {
	return v.rootDirectory
}

// ValidatePath checks that a path resolves inside the root directory
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	within, err := v.isWithinRoot(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return fmt.Errorf("path is outside the configured directory: %s", path)
	}
	return nil
}

// NormalizePath resolves path (relative paths are taken relative to the
// root) and validates containment, returning the absolute form.
func (v *PathValidator) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	path = strings.ReplaceAll(path, "\x00", "")
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.rootDirectory, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if err := v.ValidatePath(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// isWithinRoot compares the cleaned and symlink-resolved forms of path
// against the root. Both forms must land inside; a symlink escaping the root
// fails even when its literal path does not.
func (v *PathValidator) isWithinRoot(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	cleanPath := filepath.Clean(abs)

	realRoot := v.rootDirectory
	if resolved, err := filepath.EvalSymlinks(v.rootDirectory); err == nil {
		realRoot = resolved
	}

	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}

	return v.hasRootPrefix(cleanPath, realRoot) && v.hasRootPrefix(realPath, realRoot), nil
}

func (v *PathValidator) hasRootPrefix(path, realRoot string) bool {
	for _, root := range []string{v.rootDirectory, realRoot} {
		withSep := root
		if !strings.HasSuffix(withSep, string(filepath.Separator)) {
			withSep += string(filepath.Separator)
		}
		if path == root || strings.HasPrefix(path, withSep) {
			return true
		}
	}
	return false
}
