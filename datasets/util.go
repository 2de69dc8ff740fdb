package datasets

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/gomlx/gomlx/pkg/support/fsutil"
	"github.com/pkg/errors"
)

// listSortedFiles returns the full paths of the regular files in dir, sorted
// lexicographically by name. The sort is what pairs HR file i with LR file i.
func listSortedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %q", dir)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// expandRoot replaces a leading "~" with the user's home directory.
func expandRoot(root string) (string, error) {
	expanded, err := fsutil.ReplaceTildeInDir(root)
	if err != nil {
		return "", errors.WithMessagef(err, "failed to expand root %q", root)
	}
	return expanded, nil
}

// FindRoot returns the first candidate directory that contains a DIV2K
// subdirectory.
func FindRoot(candidates []string) (string, error) {
	for _, candidate := range candidates {
		root, err := expandRoot(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(filepath.Join(root, div2kSubdir)); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.Errorf("no DIV2K directory found in %v", candidates)
}
