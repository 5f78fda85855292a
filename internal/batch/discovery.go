package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsPDFName reports whether name carries a .pdf suffix, in any case.
func IsPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// ScanDirectory lists the PDF files directly inside dir, sorted by name.
// Subdirectories are not descended into.
func ScanDirectory(dir string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsPDFName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// ExplicitList validates an ordered argument list. Order is kept as given.
func ExplicitList(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one input file is required")
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("input file path cannot be empty")
		}
		out = append(out, p)
	}
	return out, nil
}
