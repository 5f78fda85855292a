// Package security confines user-supplied paths to the upload directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for paths that escape the configured directory
var ErrOutsideRoot = errors.New("path is outside the upload directory")

// PathValidator resolves paths against a root directory and refuses any
// that leave it, including through symlinks
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir. The directory does not
// need to exist yet.
func NewPathValidator(dir string) (*PathValidator, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("upload directory cannot be empty")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload directory: %w", err)
	}
	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute upload directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve returns the absolute form of path. Relative paths are taken
// relative to the root; an empty path resolves to the root itself.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return v.root, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}

	clean := filepath.Clean(path)
	if !within(clean, v.root) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}

	// Symlinks are checked against the real root so a link that points
	// back inside is still accepted.
	real, err := filepath.EvalSymlinks(clean)
	if err != nil {
		if os.IsNotExist(err) {
			return clean, nil
		}
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	realRoot := v.root
	if r, err := filepath.EvalSymlinks(v.root); err == nil {
		realRoot = r
	}
	if !within(real, realRoot) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return clean, nil
}

// ResolveFile is Resolve for a path that must name an existing regular file
func (v *PathValidator) ResolveFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path cannot be empty")
	}
	resolved, err := v.Resolve(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory: %s", path)
	}
	return resolved, nil
}

// ResolveDirectory is Resolve for a path that must name an existing directory
func (v *PathValidator) ResolveDirectory(path string) (string, error) {
	resolved, err := v.Resolve(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", path)
	}
	return resolved, nil
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}
