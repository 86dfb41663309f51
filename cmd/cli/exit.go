package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/guardrails/internal/execshell"
	"github.com/temirov/guardrails/internal/utils"
)

const (
	successExitCodeConstant  = 0
	failureExitCodeConstant  = 1
	usageErrorPrefixConstant = "Error: "
)

// ExitCode maps an execution error onto a process exit code. Engine failures keep the engine's
// exit code; every other failure exits with 1.
func ExitCode(executionError error) int {
	if executionError == nil {
		return successExitCodeConstant
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) && commandFailure.ExitCode() > 0 {
		return commandFailure.ExitCode()
	}
	return failureExitCodeConstant
}

// ReportError writes the failure to the error stream. Usage errors are followed by the usage
// synopsis and engine failures are reported through the engine's own standard error.
func ReportError(errorWriter io.Writer, command *cobra.Command, executionError error) {
	if executionError == nil {
		return
	}

	if utils.IsUsageError(executionError) {
		writeLine(errorWriter, usageErrorPrefixConstant+executionError.Error())
		if command != nil {
			writeLine(errorWriter, command.UsageString())
		}
		return
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		if engineOutput := strings.TrimSpace(commandFailure.Result.StandardError); len(engineOutput) > 0 {
			writeLine(errorWriter, commandFailure.Result.StandardError)
			return
		}
	}

	writeLine(errorWriter, executionError.Error())
}
