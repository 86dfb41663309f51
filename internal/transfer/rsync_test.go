package transfer_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/guardrails/internal/execshell"
	"github.com/temirov/guardrails/internal/transfer"
)

const (
	testSourceDirectoryConstant = "/home/operator/docs/apple"
	testTargetDirectoryConstant = "/workspace/project/docs/apple"
	testRsyncExecutableConstant = "rsync"
)

var testDefaultExclusionArguments = []string{
	"--exclude=.git/",
	"--exclude=.svn/",
	"--exclude=.hg/",
	"--exclude=.DS_Store",
	"--exclude=Thumbs.db",
	"--exclude=._*",
	"--exclude=desktop.ini",
}

type recordingRsyncExecutor struct {
	recordedDetails []execshell.CommandDetails
}

func (executor *recordingRsyncExecutor) ExecuteRsync(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return execshell.ExecutionResult{}, nil
}

func expectedArguments(modifiers ...string) []string {
	arguments := []string{"-a", "-r", "-i", "-v"}
	arguments = append(arguments, testDefaultExclusionArguments...)
	arguments = append(arguments, modifiers...)
	return append(arguments, testSourceDirectoryConstant+"/", testTargetDirectoryConstant+"/")
}

func TestBuildArguments(testInstance *testing.T) {
	testCases := []struct {
		name     string
		options  transfer.MirrorOptions
		expected []string
	}{
		{
			name:     "plain_mirror",
			options:  transfer.MirrorOptions{Source: testSourceDirectoryConstant, Target: testTargetDirectoryConstant},
			expected: expectedArguments(),
		},
		{
			name:     "delete_enabled",
			options:  transfer.MirrorOptions{Source: testSourceDirectoryConstant, Target: testTargetDirectoryConstant, AllowDelete: true},
			expected: expectedArguments("--delete"),
		},
		{
			name:     "delete_and_dry_run",
			options:  transfer.MirrorOptions{Source: testSourceDirectoryConstant + "/", Target: testTargetDirectoryConstant, AllowDelete: true, DryRun: true},
			expected: expectedArguments("--delete", "--dry-run"),
		},
		{
			name:     "custom_exclusions_replace_defaults",
			options:  transfer.MirrorOptions{Source: testSourceDirectoryConstant, Target: testTargetDirectoryConstant, Exclusions: []string{"*.tmp", " "}},
			expected: []string{"-a", "-r", "-i", "-v", "--exclude=*.tmp", testSourceDirectoryConstant + "/", testTargetDirectoryConstant + "/"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			arguments, buildError := transfer.BuildArguments(testCase.options)
			require.NoError(testInstance, buildError)
			require.Equal(testInstance, testCase.expected, arguments)
		})
	}
}

func TestBuildArgumentsRequiresBothDirectories(testInstance *testing.T) {
	_, missingSourceError := transfer.BuildArguments(transfer.MirrorOptions{Target: testTargetDirectoryConstant})
	require.Error(testInstance, missingSourceError)

	_, missingTargetError := transfer.BuildArguments(transfer.MirrorOptions{Source: testSourceDirectoryConstant})
	require.Error(testInstance, missingTargetError)
}

func TestMirrorRunsRsyncOnce(testInstance *testing.T) {
	executor := &recordingRsyncExecutor{}
	engine, creationError := transfer.NewRsyncEngine(executor)
	require.NoError(testInstance, creationError)

	outputBuffer := &bytes.Buffer{}
	mirrorError := engine.Mirror(context.Background(), transfer.MirrorOptions{
		Source:       testSourceDirectoryConstant,
		Target:       testTargetDirectoryConstant,
		OutputWriter: outputBuffer,
	})
	require.NoError(testInstance, mirrorError)
	require.Len(testInstance, executor.recordedDetails, 1)
	require.Equal(testInstance, expectedArguments(), executor.recordedDetails[0].Arguments)
	require.Same(testInstance, outputBuffer, executor.recordedDetails[0].OutputWriter)
}

func TestNewRsyncEngineRequiresExecutor(testInstance *testing.T) {
	_, creationError := transfer.NewRsyncEngine(nil)
	require.ErrorIs(testInstance, creationError, transfer.ErrRsyncExecutorNotConfigured)
}

func TestMirrorWithRealRsync(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(testRsyncExecutableConstant); lookupError != nil {
		testInstance.Skip("rsync is not available")
	}

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)
	engine, engineError := transfer.NewRsyncEngine(shellExecutor)
	require.NoError(testInstance, engineError)

	testInstance.Run("dry_run_changes_nothing", func(testInstance *testing.T) {
		sourceDirectory := testInstance.TempDir()
		targetDirectory := testInstance.TempDir()
		writeFile(testInstance, filepath.Join(sourceDirectory, "x.md"))

		require.NoError(testInstance, engine.Mirror(context.Background(), transfer.MirrorOptions{Source: sourceDirectory, Target: targetDirectory, DryRun: true, AllowDelete: true}))
		require.Empty(testInstance, listFiles(testInstance, targetDirectory))
	})

	testInstance.Run("delete_mirrors_source", func(testInstance *testing.T) {
		sourceDirectory := testInstance.TempDir()
		targetDirectory := testInstance.TempDir()
		writeFile(testInstance, filepath.Join(sourceDirectory, "kept.md"))
		writeFile(testInstance, filepath.Join(sourceDirectory, ".DS_Store"))
		writeFile(testInstance, filepath.Join(targetDirectory, "stale.md"))

		require.NoError(testInstance, engine.Mirror(context.Background(), transfer.MirrorOptions{Source: sourceDirectory, Target: targetDirectory, AllowDelete: true}))
		require.Equal(testInstance, []string{"kept.md"}, listFiles(testInstance, targetDirectory))
	})

	testInstance.Run("without_delete_keeps_extra_files", func(testInstance *testing.T) {
		sourceDirectory := testInstance.TempDir()
		targetDirectory := testInstance.TempDir()
		writeFile(testInstance, filepath.Join(sourceDirectory, "new.md"))
		writeFile(testInstance, filepath.Join(targetDirectory, "extra.md"))

		require.NoError(testInstance, engine.Mirror(context.Background(), transfer.MirrorOptions{Source: sourceDirectory, Target: targetDirectory}))
		require.Equal(testInstance, []string{"extra.md", "new.md"}, listFiles(testInstance, targetDirectory))
	})
}

func writeFile(testInstance *testing.T, path string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(path, []byte("content\n"), 0o644))
}

func listFiles(testInstance *testing.T, directory string) []string {
	testInstance.Helper()
	entries, readError := os.ReadDir(directory)
	require.NoError(testInstance, readError)
	names := []string{}
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}
