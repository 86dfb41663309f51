package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
	// HomeVariableReferenceConstant is the shell reference substituted for the home directory by Abbreviate.
	HomeVariableReferenceConstant = "$HOME"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts between home-relative shorthand and absolute paths.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// HomeDirectory returns the resolved home directory, or an empty string when it cannot be determined.
func (expander *HomeExpander) HomeDirectory() string {
	if expander == nil {
		return ""
	}
	return expander.resolveHomeDirectory()
}

// Expand resolves leading tilde and $HOME prefixes to the user's home directory.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || len(candidatePath) == 0 {
		return candidatePath
	}

	var relativePath string
	switch {
	case candidatePath == tildeSymbolConstant || candidatePath == HomeVariableReferenceConstant:
		relativePath = ""
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		relativePath = strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant)
	case tildeWithPathSeparatorPrefix != tildeForwardSlashPrefixConstant && strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		relativePath = strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix)
	case strings.HasPrefix(candidatePath, HomeVariableReferenceConstant+"/"):
		relativePath = strings.TrimPrefix(candidatePath, HomeVariableReferenceConstant+"/")
	default:
		return candidatePath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	if len(relativePath) == 0 {
		return resolvedHomeDirectory
	}
	return filepath.Join(resolvedHomeDirectory, relativePath)
}

// Abbreviate rewrites absolute paths located under the home directory as $HOME-relative shorthand.
// $HOME is used instead of a tilde because tildes do not expand inside double-quoted shell values.
func (expander *HomeExpander) Abbreviate(absolutePath string) string {
	if expander == nil || len(absolutePath) == 0 {
		return absolutePath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return absolutePath
	}

	cleanedHomeDirectory := filepath.Clean(resolvedHomeDirectory)
	cleanedPath := filepath.Clean(absolutePath)
	if cleanedPath == cleanedHomeDirectory {
		return HomeVariableReferenceConstant
	}

	relativePath, relativeError := filepath.Rel(cleanedHomeDirectory, cleanedPath)
	if relativeError != nil || !IsLocalRelativePath(relativePath) {
		return absolutePath
	}

	return HomeVariableReferenceConstant + "/" + filepath.ToSlash(relativePath)
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}
