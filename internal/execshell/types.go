package execshell

import (
	"context"
	"io"
)

const (
	commandGitNameConstant   = "git"
	commandRsyncNameConstant = "rsync"
)

// CommandName identifies an external executable.
type CommandName string

// Supported external executables.
const (
	CommandGit   CommandName = CommandName(commandGitNameConstant)
	CommandRsync CommandName = CommandName(commandRsyncNameConstant)
)

// CommandDetails describes the arguments and environment of a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	// OutputWriter additionally receives standard output as it is produced when non-nil.
	OutputWriter io.Writer
}

// ShellCommand couples an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}
