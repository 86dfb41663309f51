package pathutils

import (
	"path/filepath"
	"runtime"
	"strings"
)

const parentDirectoryReferenceConstant = ".."

// IsLocalRelativePath reports whether a relative path stays inside its base directory.
func IsLocalRelativePath(relativePath string) bool {
	if filepath.IsAbs(relativePath) {
		return false
	}
	cleanedPath := filepath.Clean(relativePath)
	if cleanedPath == parentDirectoryReferenceConstant {
		return false
	}
	return !strings.HasPrefix(cleanedPath, parentDirectoryReferenceConstant+string(filepath.Separator))
}

// IsNestedPath reports whether candidate equals parent or lies beneath it.
func IsNestedPath(parent string, candidate string) bool {
	parentClean := comparisonPath(parent)
	candidateClean := comparisonPath(candidate)

	if len(parentClean) == 0 || len(candidateClean) == 0 {
		return false
	}

	if candidateClean == parentClean {
		return true
	}

	if len(candidateClean) <= len(parentClean) || !strings.HasPrefix(candidateClean, parentClean) {
		return false
	}

	if parentClean[len(parentClean)-1] == filepath.Separator {
		return true
	}

	return candidateClean[len(parentClean)] == filepath.Separator
}

// IsStrictlyNestedPath reports whether candidate lies beneath parent without being parent itself.
func IsStrictlyNestedPath(parent string, candidate string) bool {
	return IsNestedPath(parent, candidate) && comparisonPath(parent) != comparisonPath(candidate)
}

func comparisonPath(path string) string {
	if len(strings.TrimSpace(path)) == 0 {
		return ""
	}
	comparison := filepath.Clean(path)
	if runtime.GOOS == "windows" {
		comparison = strings.ToLower(comparison)
	}
	return comparison
}
