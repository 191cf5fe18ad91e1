// Package fsutils holds the path helpers used to resolve project layouts.
package fsutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TruePath returns the absolute path with every symlink resolved.
func TruePath(path string) (string, error) {
	var prevAbsPath string
	var prevResolvedPath string

	changeFound := true
	for changeFound {
		changeFound = false

		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		if absPath != prevAbsPath {
			prevAbsPath = absPath
			changeFound = true
		}

		resolvedPath, err := filepath.EvalSymlinks(absPath)
		if err != nil {
			return "", fmt.Errorf("failed to resolve symlinks: %w", err)
		}
		if resolvedPath != prevResolvedPath {
			prevResolvedPath = resolvedPath
			changeFound = true
		}

		path = resolvedPath
	}

	return path, nil
}

// IsFile reports whether path names an existing regular file, following
// symlinks.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Normalize cleans a path, converts it to forward slashes and lowercases it
// so that paths can be compared independent of platform and case.
func Normalize(path string) string {
	return strings.ToLower(filepath.ToSlash(filepath.Clean(path)))
}

// Contains reports whether path lies inside root by substring match on the
// normalized forms. The root "." contains every path. The match is purely
// textual: "apps/api2/src" is contained in "apps/api".
func Contains(root, path string) bool {
	nr := Normalize(root)
	if nr == "." {
		return true
	}
	return strings.Contains(Normalize(path), nr)
}
