package commitguard

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	rootResolutionErrorTemplateConstant     = "unable to resolve repository root: %w"
	pathInspectionErrorTemplateConstant     = "unable to inspect %s: %w"
	trackingInspectionErrorTemplateConstant = "unable to determine whether %s is tracked: %w"
	statusInspectionErrorTemplateConstant   = "unable to read status of %s: %w"
	resetIndexErrorTemplateConstant         = "unable to reset the index: %w"
	stageErrorTemplateConstant              = "unable to stage requested paths: %w"
	commitErrorTemplateConstant             = "unable to commit requested paths: %w"
	pathsClassifiedMessageConstant          = "Classified requested paths"
	commitCompletedMessageConstant          = "Guarded commit completed"
	headSummaryUnavailableMessageConstant   = "Unable to read committed revision"
	logFieldRepositoryRootConstant          = "repository_root"
	logFieldPathsConstant                   = "paths"
	logFieldMissingPathsConstant            = "missing_paths"
	logFieldPristinePathsConstant           = "pristine_paths"
	logFieldRevisionConstant                = "revision"
)

// RepositoryEngine exposes the git operations a guarded commit relies on.
type RepositoryEngine interface {
	ResolveRoot(executionContext context.Context, workingDirectory string) (string, error)
	IsTracked(executionContext context.Context, repositoryPath string, path string) (bool, error)
	HasPendingChanges(executionContext context.Context, repositoryPath string, path string) (bool, error)
	ResetIndex(executionContext context.Context, repositoryPath string) error
	Stage(executionContext context.Context, repositoryPath string, paths []string) error
	Commit(executionContext context.Context, repositoryPath string, message string, paths []string) error
	HeadSummary(executionContext context.Context, repositoryPath string) (string, error)
}

// ServiceDependencies describes the collaborators required by Service.
type ServiceDependencies struct {
	Logger           *zap.Logger
	RepositoryEngine RepositoryEngine
	FileSystem       afero.Fs
}

// Request describes a guarded commit.
type Request struct {
	Message string
	Paths   []string
	// WorkingDirectory seeds repository root discovery. The process working directory is used when empty.
	WorkingDirectory string
}

// Result reports the outcome of a successful guarded commit.
type Result struct {
	RepositoryRoot string
	Revision       string
	Paths          []string
}

// Service validates and performs guarded commits.
type Service struct {
	logger           *zap.Logger
	repositoryEngine RepositoryEngine
	fileSystem       afero.Fs
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RepositoryEngine == nil {
		return nil, errRepositoryEngineMissing
	}
	if dependencies.FileSystem == nil {
		return nil, errFileSystemMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:           logger,
		repositoryEngine: dependencies.RepositoryEngine,
		fileSystem:       dependencies.FileSystem,
	}, nil
}

// Commit validates every requested path and then resets the index, stages the paths and commits them.
// No mutating git operation runs unless every path is eligible.
func (service *Service) Commit(executionContext context.Context, request Request) (Result, error) {
	trimmedMessage := strings.TrimSpace(request.Message)
	if len(trimmedMessage) == 0 {
		return Result{}, ErrMessageRequired
	}
	if len(request.Paths) == 0 {
		return Result{}, ErrPathsRequired
	}

	repositoryRoot, rootError := service.repositoryEngine.ResolveRoot(executionContext, request.WorkingDirectory)
	if rootError != nil {
		return Result{}, fmt.Errorf(rootResolutionErrorTemplateConstant, rootError)
	}

	missingPaths, pristinePaths, classificationError := service.classifyPaths(executionContext, repositoryRoot, request.Paths)
	if classificationError != nil {
		return Result{}, classificationError
	}

	service.logger.Debug(
		pathsClassifiedMessageConstant,
		zap.String(logFieldRepositoryRootConstant, repositoryRoot),
		zap.Strings(logFieldMissingPathsConstant, missingPaths),
		zap.Strings(logFieldPristinePathsConstant, pristinePaths),
	)

	if len(missingPaths) > 0 {
		return Result{}, PathValidationError{State: PathStateMissing, Paths: missingPaths}
	}
	if len(pristinePaths) > 0 {
		return Result{}, PathValidationError{State: PathStatePristine, Paths: pristinePaths}
	}

	if resetError := service.repositoryEngine.ResetIndex(executionContext, repositoryRoot); resetError != nil {
		return Result{}, fmt.Errorf(resetIndexErrorTemplateConstant, resetError)
	}
	if stageError := service.repositoryEngine.Stage(executionContext, repositoryRoot, request.Paths); stageError != nil {
		return Result{}, fmt.Errorf(stageErrorTemplateConstant, stageError)
	}
	// The message is committed verbatim; only blank messages are rejected.
	if commitError := service.repositoryEngine.Commit(executionContext, repositoryRoot, request.Message, request.Paths); commitError != nil {
		return Result{}, fmt.Errorf(commitErrorTemplateConstant, commitError)
	}

	revision, revisionError := service.repositoryEngine.HeadSummary(executionContext, repositoryRoot)
	if revisionError != nil {
		service.logger.Warn(headSummaryUnavailableMessageConstant, zap.String(logFieldRepositoryRootConstant, repositoryRoot), zap.Error(revisionError))
	}

	service.logger.Info(
		commitCompletedMessageConstant,
		zap.String(logFieldRepositoryRootConstant, repositoryRoot),
		zap.Strings(logFieldPathsConstant, request.Paths),
		zap.String(logFieldRevisionConstant, revision),
	)

	return Result{RepositoryRoot: repositoryRoot, Revision: revision, Paths: append([]string{}, request.Paths...)}, nil
}

// ClassifyPath determines whether a single path is missing, pristine, or eligible.
func (service *Service) ClassifyPath(executionContext context.Context, repositoryRoot string, path string) (PathState, error) {
	existsOnDisk, existenceError := afero.Exists(service.fileSystem, resolveAgainstRoot(repositoryRoot, path))
	if existenceError != nil {
		return "", fmt.Errorf(pathInspectionErrorTemplateConstant, path, existenceError)
	}

	if !existsOnDisk {
		tracked, trackingError := service.repositoryEngine.IsTracked(executionContext, repositoryRoot, path)
		if trackingError != nil {
			return "", fmt.Errorf(trackingInspectionErrorTemplateConstant, path, trackingError)
		}
		if !tracked {
			return PathStateMissing, nil
		}
	}

	pending, statusError := service.repositoryEngine.HasPendingChanges(executionContext, repositoryRoot, path)
	if statusError != nil {
		return "", fmt.Errorf(statusInspectionErrorTemplateConstant, path, statusError)
	}
	if !pending {
		return PathStatePristine, nil
	}
	return PathStateEligible, nil
}

func (service *Service) classifyPaths(executionContext context.Context, repositoryRoot string, paths []string) ([]string, []string, error) {
	var missingPaths []string
	var pristinePaths []string
	for _, path := range paths {
		state, classificationError := service.ClassifyPath(executionContext, repositoryRoot, path)
		if classificationError != nil {
			return nil, nil, classificationError
		}
		switch state {
		case PathStateMissing:
			missingPaths = append(missingPaths, path)
		case PathStatePristine:
			pristinePaths = append(pristinePaths, path)
		}
	}
	return missingPaths, pristinePaths, nil
}

func resolveAgainstRoot(repositoryRoot string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(repositoryRoot, path)
}
