package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/guardrails/internal/execshell"
)

const (
	gitRevParseSubcommandConstant         = "rev-parse"
	gitShowTopLevelFlagConstant           = "--show-toplevel"
	gitShortFlagConstant                  = "--short"
	gitHeadReferenceConstant              = "HEAD"
	gitListFilesSubcommandConstant        = "ls-files"
	gitStatusSubcommandConstant           = "status"
	gitPorcelainFlagConstant              = "--porcelain"
	gitResetSubcommandConstant            = "reset"
	gitQuietFlagConstant                  = "--quiet"
	gitAddSubcommandConstant              = "add"
	gitAllFlagConstant                    = "-A"
	gitCommitSubcommandConstant           = "commit"
	gitMessageFlagConstant                = "-m"
	gitPathSeparatorConstant              = "--"
	gitExecutorMissingMessageConstant     = "git executor not configured"
	notInRepositoryMessageConstant        = "not inside a git repository"
	repositoryPathRequiredMessageConstant = "repository path required"
	pathspecRequiredMessageConstant       = "at least one path required"
	rootResolutionErrorTemplateConstant   = "%w: %s"
	localeVariableNameConstant            = "LC_ALL"
	stableLocaleConstant                  = "C"
)

// ErrGitExecutorNotConfigured indicates that no git executor was supplied.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrNotInRepository indicates that the working directory is not inside a git work tree.
var ErrNotInRepository = errors.New(notInRepositoryMessageConstant)

// ErrRepositoryPathRequired indicates that an operation was invoked without a repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrPathspecRequired indicates that a path-restricted operation received no paths.
var ErrPathspecRequired = errors.New(pathspecRequiredMessageConstant)

// GitExecutor exposes the subset of shell execution used by RepositoryManager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager runs the git operations needed for guarded commits.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// ResolveRoot returns the top-level directory of the work tree containing workingDirectory.
func (manager *RepositoryManager) ResolveRoot(executionContext context.Context, workingDirectory string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitRevParseSubcommandConstant, gitShowTopLevelFlagConstant},
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: gitEnvironment(),
	})
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			return "", fmt.Errorf(rootResolutionErrorTemplateConstant, ErrNotInRepository, strings.TrimSpace(commandFailure.Result.StandardError))
		}
		return "", executionError
	}

	repositoryRoot := strings.TrimSpace(executionResult.StandardOutput)
	if len(repositoryRoot) == 0 {
		return "", ErrNotInRepository
	}
	return repositoryRoot, nil
}

// IsTracked reports whether git knows about the path, including deletions not yet committed.
func (manager *RepositoryManager) IsTracked(executionContext context.Context, repositoryPath string, path string) (bool, error) {
	executionResult, executionError := manager.run(executionContext, repositoryPath, gitListFilesSubcommandConstant, gitPathSeparatorConstant, path)
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0, nil
}

// HasPendingChanges reports whether the porcelain status lists any entry for the path.
func (manager *RepositoryManager) HasPendingChanges(executionContext context.Context, repositoryPath string, path string) (bool, error) {
	executionResult, executionError := manager.run(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant, gitPathSeparatorConstant, path)
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0, nil
}

// ResetIndex resets the staging index to HEAD without touching the working tree.
func (manager *RepositoryManager) ResetIndex(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.run(executionContext, repositoryPath, gitResetSubcommandConstant, gitQuietFlagConstant)
	return executionError
}

// Stage adds exactly the provided paths to the index, recording deletions as well.
func (manager *RepositoryManager) Stage(executionContext context.Context, repositoryPath string, paths []string) error {
	if len(paths) == 0 {
		return ErrPathspecRequired
	}
	arguments := append([]string{gitAddSubcommandConstant, gitAllFlagConstant, gitPathSeparatorConstant}, paths...)
	_, executionError := manager.run(executionContext, repositoryPath, arguments...)
	return executionError
}

// Commit records a commit restricted to the provided paths.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, message string, paths []string) error {
	if len(paths) == 0 {
		return ErrPathspecRequired
	}
	arguments := append([]string{gitCommitSubcommandConstant, gitMessageFlagConstant, message, gitPathSeparatorConstant}, paths...)
	_, executionError := manager.run(executionContext, repositoryPath, arguments...)
	return executionError
}

// HeadSummary returns the abbreviated hash of HEAD.
func (manager *RepositoryManager) HeadSummary(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitShortFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

func (manager *RepositoryManager) run(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return execshell.ExecutionResult{}, ErrRepositoryPathRequired
	}
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: gitEnvironment(),
	})
}

// gitEnvironment keeps porcelain output and diagnostics untranslated.
func gitEnvironment() map[string]string {
	return map[string]string{localeVariableNameConstant: stableLocaleConstant}
}
