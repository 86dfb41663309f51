package commitguard_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/guardrails/internal/commitguard"
	"github.com/temirov/guardrails/internal/gitrepo"
)

const (
	testRepositoryRootConstant    = "/workspace/project"
	testCommitMessageConstant     = "fix typo"
	testReadmePathConstant        = "README.md"
	testNotesPathConstant         = "notes.txt"
	testGuidePathConstant         = "docs/guide.md"
	testDeletedPathConstant       = "legacy.md"
	testRevisionConstant          = "abc1234"
	engineOperationResetConstant  = "reset"
	engineOperationStageConstant  = "stage"
	engineOperationCommitConstant = "commit"
)

type fakeRepositoryEngine struct {
	repositoryRoot   string
	rootError        error
	trackedPaths     map[string]bool
	pendingPaths     map[string]bool
	commitError      error
	operations       []string
	stagedPaths      []string
	committedPaths   []string
	committedMessage string
}

func (engine *fakeRepositoryEngine) ResolveRoot(executionContext context.Context, workingDirectory string) (string, error) {
	if engine.rootError != nil {
		return "", engine.rootError
	}
	return engine.repositoryRoot, nil
}

func (engine *fakeRepositoryEngine) IsTracked(executionContext context.Context, repositoryPath string, path string) (bool, error) {
	return engine.trackedPaths[path], nil
}

func (engine *fakeRepositoryEngine) HasPendingChanges(executionContext context.Context, repositoryPath string, path string) (bool, error) {
	return engine.pendingPaths[path], nil
}

func (engine *fakeRepositoryEngine) ResetIndex(executionContext context.Context, repositoryPath string) error {
	engine.operations = append(engine.operations, engineOperationResetConstant)
	return nil
}

func (engine *fakeRepositoryEngine) Stage(executionContext context.Context, repositoryPath string, paths []string) error {
	engine.operations = append(engine.operations, engineOperationStageConstant)
	engine.stagedPaths = append([]string{}, paths...)
	return nil
}

func (engine *fakeRepositoryEngine) Commit(executionContext context.Context, repositoryPath string, message string, paths []string) error {
	engine.operations = append(engine.operations, engineOperationCommitConstant)
	if engine.commitError != nil {
		return engine.commitError
	}
	engine.committedPaths = append([]string{}, paths...)
	engine.committedMessage = message
	return nil
}

func (engine *fakeRepositoryEngine) HeadSummary(executionContext context.Context, repositoryPath string) (string, error) {
	return testRevisionConstant, nil
}

func newWorkspaceFileSystem(testInstance *testing.T, relativePaths ...string) afero.Fs {
	fileSystem := afero.NewMemMapFs()
	for _, relativePath := range relativePaths {
		absolutePath := filepath.Join(testRepositoryRootConstant, relativePath)
		require.NoError(testInstance, afero.WriteFile(fileSystem, absolutePath, []byte("content\n"), 0o644))
	}
	return fileSystem
}

func newTestService(testInstance *testing.T, engine *fakeRepositoryEngine, fileSystem afero.Fs) *commitguard.Service {
	service, creationError := commitguard.NewService(commitguard.ServiceDependencies{
		Logger:           zap.NewNop(),
		RepositoryEngine: engine,
		FileSystem:       fileSystem,
	})
	require.NoError(testInstance, creationError)
	return service
}

func TestNewServiceRequiresCollaborators(testInstance *testing.T) {
	_, missingEngineError := commitguard.NewService(commitguard.ServiceDependencies{FileSystem: afero.NewMemMapFs()})
	require.Error(testInstance, missingEngineError)

	_, missingFileSystemError := commitguard.NewService(commitguard.ServiceDependencies{RepositoryEngine: &fakeRepositoryEngine{}})
	require.Error(testInstance, missingFileSystemError)
}

func TestServiceCommitRejectsInvalidRequestsBeforeTouchingTheIndex(testInstance *testing.T) {
	testCases := []struct {
		name          string
		request       commitguard.Request
		engine        *fakeRepositoryEngine
		fileSystem    afero.Fs
		expectedError error
		expectedState commitguard.PathState
		expectedPaths []string
	}{
		{
			name:          "empty_message",
			request:       commitguard.Request{Message: "", Paths: []string{testReadmePathConstant}},
			engine:        &fakeRepositoryEngine{repositoryRoot: testRepositoryRootConstant},
			fileSystem:    newWorkspaceFileSystem(testInstance, testReadmePathConstant),
			expectedError: commitguard.ErrMessageRequired,
		},
		{
			name:          "whitespace_message",
			request:       commitguard.Request{Message: " \t\n", Paths: []string{testReadmePathConstant}},
			engine:        &fakeRepositoryEngine{repositoryRoot: testRepositoryRootConstant},
			fileSystem:    newWorkspaceFileSystem(testInstance, testReadmePathConstant),
			expectedError: commitguard.ErrMessageRequired,
		},
		{
			name:          "no_paths",
			request:       commitguard.Request{Message: testCommitMessageConstant},
			engine:        &fakeRepositoryEngine{repositoryRoot: testRepositoryRootConstant},
			fileSystem:    afero.NewMemMapFs(),
			expectedError: commitguard.ErrPathsRequired,
		},
		{
			name:          "outside_repository",
			request:       commitguard.Request{Message: testCommitMessageConstant, Paths: []string{testReadmePathConstant}},
			engine:        &fakeRepositoryEngine{rootError: gitrepo.ErrNotInRepository},
			fileSystem:    afero.NewMemMapFs(),
			expectedError: gitrepo.ErrNotInRepository,
		},
		{
			name:    "missing_paths_listed_in_order",
			request: commitguard.Request{Message: testCommitMessageConstant, Paths: []string{testNotesPathConstant, testReadmePathConstant, "draft.md"}},
			engine: &fakeRepositoryEngine{
				repositoryRoot: testRepositoryRootConstant,
				pendingPaths:   map[string]bool{testReadmePathConstant: true},
			},
			fileSystem:    newWorkspaceFileSystem(testInstance, testReadmePathConstant),
			expectedState: commitguard.PathStateMissing,
			expectedPaths: []string{testNotesPathConstant, "draft.md"},
		},
		{
			name:    "missing_reported_before_pristine",
			request: commitguard.Request{Message: testCommitMessageConstant, Paths: []string{testReadmePathConstant, testNotesPathConstant}},
			engine: &fakeRepositoryEngine{
				repositoryRoot: testRepositoryRootConstant,
			},
			fileSystem:    newWorkspaceFileSystem(testInstance, testReadmePathConstant),
			expectedState: commitguard.PathStateMissing,
			expectedPaths: []string{testNotesPathConstant},
		},
		{
			name:    "pristine_paths_listed",
			request: commitguard.Request{Message: testCommitMessageConstant, Paths: []string{testReadmePathConstant, testGuidePathConstant}},
			engine: &fakeRepositoryEngine{
				repositoryRoot: testRepositoryRootConstant,
				trackedPaths:   map[string]bool{testReadmePathConstant: true, testGuidePathConstant: true},
			},
			fileSystem:    newWorkspaceFileSystem(testInstance, testReadmePathConstant, testGuidePathConstant),
			expectedState: commitguard.PathStatePristine,
			expectedPaths: []string{testReadmePathConstant, testGuidePathConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			service := newTestService(testInstance, testCase.engine, testCase.fileSystem)

			_, commitError := service.Commit(context.Background(), testCase.request)
			require.Error(testInstance, commitError)

			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, commitError, testCase.expectedError)
			} else {
				var validationError commitguard.PathValidationError
				require.ErrorAs(testInstance, commitError, &validationError)
				require.Equal(testInstance, testCase.expectedState, validationError.State)
				require.Equal(testInstance, testCase.expectedPaths, validationError.Paths)
			}

			require.Empty(testInstance, testCase.engine.operations)
		})
	}
}

func TestServiceCommitRunsResetStageCommitForEligiblePaths(testInstance *testing.T) {
	engine := &fakeRepositoryEngine{
		repositoryRoot: testRepositoryRootConstant,
		trackedPaths:   map[string]bool{testReadmePathConstant: true, testDeletedPathConstant: true},
		pendingPaths:   map[string]bool{testReadmePathConstant: true, testDeletedPathConstant: true, testGuidePathConstant: true},
	}
	fileSystem := newWorkspaceFileSystem(testInstance, testReadmePathConstant, testGuidePathConstant)
	service := newTestService(testInstance, engine, fileSystem)

	requestedPaths := []string{testReadmePathConstant, testDeletedPathConstant, testGuidePathConstant}
	result, commitError := service.Commit(context.Background(), commitguard.Request{Message: testCommitMessageConstant, Paths: requestedPaths})
	require.NoError(testInstance, commitError)

	require.Equal(testInstance, []string{engineOperationResetConstant, engineOperationStageConstant, engineOperationCommitConstant}, engine.operations)
	require.Equal(testInstance, requestedPaths, engine.stagedPaths)
	require.Equal(testInstance, requestedPaths, engine.committedPaths)
	require.Equal(testInstance, testCommitMessageConstant, engine.committedMessage)
	require.Equal(testInstance, testRevisionConstant, result.Revision)
	require.Equal(testInstance, testRepositoryRootConstant, result.RepositoryRoot)
}

func TestServiceCommitPropagatesEngineFailures(testInstance *testing.T) {
	engineFailure := errors.New("commit hook rejected")
	engine := &fakeRepositoryEngine{
		repositoryRoot: testRepositoryRootConstant,
		pendingPaths:   map[string]bool{testReadmePathConstant: true},
		commitError:    engineFailure,
	}
	service := newTestService(testInstance, engine, newWorkspaceFileSystem(testInstance, testReadmePathConstant))

	_, commitError := service.Commit(context.Background(), commitguard.Request{Message: testCommitMessageConstant, Paths: []string{testReadmePathConstant}})
	require.ErrorIs(testInstance, commitError, engineFailure)
}

func TestPathValidationErrorListsEveryPath(testInstance *testing.T) {
	validationError := commitguard.PathValidationError{State: commitguard.PathStateMissing, Paths: []string{testNotesPathConstant, "draft.md"}}
	require.Equal(testInstance, "the following paths do not exist or are not tracked:\n  notes.txt\n  draft.md", validationError.Error())

	pristineError := commitguard.PathValidationError{State: commitguard.PathStatePristine, Paths: []string{testReadmePathConstant}}
	require.Equal(testInstance, "the following paths have no pending changes:\n  README.md", pristineError.Error())
}
