package pathutils

import (
	"path/filepath"
	"strings"
)

// ResolveSymlinks resolves symbolic links in the longest existing prefix of path and appends the
// remaining, not yet existing, segments. The cleaned path is returned when no prefix resolves.
func ResolveSymlinks(path string) string {
	if len(strings.TrimSpace(path)) == 0 {
		return path
	}

	cleanedPath := filepath.Clean(path)
	existingPrefix := cleanedPath
	var missingSegments []string
	for {
		resolvedPrefix, resolveError := filepath.EvalSymlinks(existingPrefix)
		if resolveError == nil {
			return filepath.Join(append([]string{resolvedPrefix}, missingSegments...)...)
		}
		parentDirectory := filepath.Dir(existingPrefix)
		if parentDirectory == existingPrefix {
			return cleanedPath
		}
		missingSegments = append([]string{filepath.Base(existingPrefix)}, missingSegments...)
		existingPrefix = parentDirectory
	}
}
