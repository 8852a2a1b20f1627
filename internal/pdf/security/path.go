// Package security keeps file access inside a configured directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDirectory is returned for paths that escape the configured
// directory, directly or through a symlink.
var ErrOutsideDirectory = errors.New("path is outside configured directory")

// PathValidator confines paths to one directory tree
type PathValidator struct {
	configuredDirectory string
	root                string // absolute, symlinks evaluated when it exists
}

// NewPathValidator creates a new path validator for the given directory. The
// directory does not have to exist yet.
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	root, err := filepath.Abs(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return &PathValidator{configuredDirectory: configuredDirectory, root: root}, nil
}

// GetConfiguredDirectory returns the configured directory path
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.configuredDirectory
}

// Resolve returns the absolute, symlink-free form of path. Relative paths are
// taken relative to the configured directory. NUL bytes are rejected.
func (v *PathValidator) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains a NUL byte")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	abs := filepath.Clean(path)

	target := abs
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		target = resolved
	} else if resolvedDir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		// the file itself may not exist yet
		target = filepath.Join(resolvedDir, filepath.Base(abs))
	}

	if !v.within(target) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}
	return target, nil
}

// ValidatePath checks that path stays inside the configured directory
func (v *PathValidator) ValidatePath(path string) error {
	_, err := v.Resolve(path)
	return err
}

// ValidateDirectory checks that dirPath is inside the configured directory
// and, when it exists, is a directory
func (v *PathValidator) ValidateDirectory(dirPath string) error {
	resolved, err := v.Resolve(dirPath)
	if err != nil {
		return err
	}
	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dirPath)
	}
	return nil
}

func (v *PathValidator) within(path string) bool {
	if path == v.root {
		return true
	}
	prefix := v.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
