package execshell_test

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/guardrails/internal/execshell"
)

const (
	testShellExecutableConstant  = "sh"
	testShellCommandFlagConstant = "-c"
)

func TestOSCommandRunnerReportsExitCodeWithoutError(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(testShellExecutableConstant); lookupError != nil {
		testInstance.Skip("sh is not available")
	}

	var streamedOutput bytes.Buffer
	runner := execshell.NewOSCommandRunner()
	executionResult, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: execshell.CommandName(testShellExecutableConstant),
		Details: execshell.CommandDetails{
			Arguments:            []string{testShellCommandFlagConstant, "echo \"$GUARDRAILS_ECHO_VALUE\"; echo oops >&2; exit 3"},
			EnvironmentVariables: map[string]string{"GUARDRAILS_ECHO_VALUE": "streamed"},
			OutputWriter:         &streamedOutput,
		},
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 3, executionResult.ExitCode)
	require.Equal(testInstance, "streamed\n", executionResult.StandardOutput)
	require.Equal(testInstance, "oops\n", executionResult.StandardError)
	require.Equal(testInstance, "streamed\n", streamedOutput.String())
}

func TestOSCommandRunnerReturnsContextErrorWhenCancelled(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(testShellExecutableConstant); lookupError != nil {
		testInstance.Skip("sh is not available")
	}

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(cancelledContext, execshell.ShellCommand{
		Name:    execshell.CommandName(testShellExecutableConstant),
		Details: execshell.CommandDetails{Arguments: []string{testShellCommandFlagConstant, "exit 0"}},
	})

	require.ErrorIs(testInstance, runError, context.Canceled)
}
