package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	commandLabelArgumentsTemplateConstant   = "%s %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	pathListJoinSeparatorConstant           = ", "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	flagPrefixConstant                      = "-"
	pathSeparatorArgumentConstant           = "--"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	allPathsLabelConstant                   = "all paths"
)

const (
	gitRevParseSubcommandNameConstant  = "rev-parse"
	gitShowTopLevelFlagConstant        = "--show-toplevel"
	gitShortFlagConstant               = "--short"
	gitStatusSubcommandNameConstant    = "status"
	gitListFilesSubcommandNameConstant = "ls-files"
	gitResetSubcommandNameConstant     = "reset"
	gitAddSubcommandNameConstant       = "add"
	gitCommitSubcommandNameConstant    = "commit"
	gitMessageFlagConstant             = "-m"
	rsyncDryRunFlagConstant            = "--dry-run"
	rsyncDeleteFlagConstant            = "--delete"
)

const (
	gitTopLevelStartTemplateConstant               = "Locating repository root from %s"
	gitTopLevelSuccessTemplateConstant             = "Repository root for %s is %s"
	gitTopLevelFailureTemplateConstant             = "%s is not inside a Git repository (exit code %d%s)"
	gitTopLevelExecutionFailureTemplateConstant    = "Unable to locate repository root from %s: %s"
	gitHeadSummaryStartTemplateConstant            = "Reading abbreviated HEAD in %s"
	gitHeadSummarySuccessTemplateConstant          = "HEAD in %s is %s"
	gitHeadSummaryFailureTemplateConstant          = "Failed to read abbreviated HEAD in %s (exit code %d%s)"
	gitHeadSummaryExecutionFailureTemplateConstant = "Unable to read abbreviated HEAD in %s: %s"
	gitStatusStartTemplateConstant                 = "Checking pending changes for %s in %s"
	gitStatusCleanSuccessTemplateConstant          = "No pending changes for %s in %s"
	gitStatusDirtySuccessTemplateConstant          = "Pending changes found for %s in %s"
	gitStatusFailureTemplateConstant               = "Failed to check pending changes for %s in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant      = "Unable to check pending changes for %s in %s: %s"
	gitListFilesStartTemplateConstant              = "Checking whether %s is tracked in %s"
	gitListFilesTrackedSuccessTemplateConstant     = "%s is tracked in %s"
	gitListFilesUntrackedSuccessTemplateConstant   = "%s is not tracked in %s"
	gitListFilesFailureTemplateConstant            = "Failed to check whether %s is tracked in %s (exit code %d%s)"
	gitListFilesExecutionFailureTemplateConstant   = "Unable to check whether %s is tracked in %s: %s"
	gitResetStartTemplateConstant                  = "Clearing the index in %s"
	gitResetSuccessTemplateConstant                = "Cleared the index in %s"
	gitResetFailureTemplateConstant                = "Failed to clear the index in %s (exit code %d%s)"
	gitResetExecutionFailureTemplateConstant       = "Unable to clear the index in %s: %s"
	gitAddStartTemplateConstant                    = "Staging %s in %s"
	gitAddSuccessTemplateConstant                  = "Staged %s in %s"
	gitAddFailureTemplateConstant                  = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant         = "Unable to stage %s in %s: %s"
	gitCommitStartTemplateConstant                 = "Committing %s in %s with message %q"
	gitCommitSuccessTemplateConstant               = "Committed %s in %s"
	gitCommitFailureTemplateConstant               = "Failed to commit %s in %s (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant      = "Unable to commit %s in %s: %s"
	rsyncStartTemplateConstant                     = "Mirroring %s to %s%s"
	rsyncSuccessTemplateConstant                   = "Mirrored %s to %s%s"
	rsyncFailureTemplateConstant                   = "Failed to mirror %s to %s (exit code %d%s)"
	rsyncExecutionFailureTemplateConstant          = "Unable to mirror %s to %s: %s"
	rsyncDryRunSuffixConstant                      = " (dry run)"
	rsyncDeleteSuffixConstant                      = " (deleting extraneous files)"
)

// CommandMessageFormatter renders human readable descriptions of command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command that is about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage describes a command that completed successfully.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildSuccessMessageWithResult describes a successful command using its captured output.
func (formatter CommandMessageFormatter) BuildSuccessMessageWithResult(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage describes a command that could not be executed.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandRsync:
		return formatter.describeRsyncMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitStatusSubcommandNameConstant:
		return formatter.describeGitStatusMessage(command, result, failure, stage)
	case gitListFilesSubcommandNameConstant:
		return formatter.describeGitListFilesMessage(command, result, failure, stage)
	case gitResetSubcommandNameConstant:
		return formatter.describeGitResetMessage(command, result, failure, stage)
	case gitAddSubcommandNameConstant:
		return formatter.describeGitAddMessage(command, result, failure, stage)
	case gitCommitSubcommandNameConstant:
		return formatter.describeGitCommitMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	trimmedOutput := formatter.ensureValue(result.StandardOutput)

	if containsArgument(arguments, gitShowTopLevelFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitTopLevelStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitTopLevelSuccessTemplateConstant, workingDirectory, trimmedOutput)
		case messageStageFailure:
			return fmt.Sprintf(gitTopLevelFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitTopLevelExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	if containsArgument(arguments, gitShortFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitHeadSummaryStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitHeadSummarySuccessTemplateConstant, workingDirectory, trimmedOutput)
		case messageStageFailure:
			return fmt.Sprintf(gitHeadSummaryFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitHeadSummaryExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitStatusMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	paths := formatter.describePaths(command.Details.Arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitStatusStartTemplateConstant, paths, workingDirectory)
	case messageStageSuccess:
		if len(strings.TrimSpace(result.StandardOutput)) == 0 {
			return fmt.Sprintf(gitStatusCleanSuccessTemplateConstant, paths, workingDirectory)
		}
		return fmt.Sprintf(gitStatusDirtySuccessTemplateConstant, paths, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitStatusFailureTemplateConstant, paths, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitStatusExecutionFailureTemplateConstant, paths, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitListFilesMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	paths := formatter.describePaths(command.Details.Arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitListFilesStartTemplateConstant, paths, workingDirectory)
	case messageStageSuccess:
		if len(strings.TrimSpace(result.StandardOutput)) == 0 {
			return fmt.Sprintf(gitListFilesUntrackedSuccessTemplateConstant, paths, workingDirectory)
		}
		return fmt.Sprintf(gitListFilesTrackedSuccessTemplateConstant, paths, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitListFilesFailureTemplateConstant, paths, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitListFilesExecutionFailureTemplateConstant, paths, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitResetMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitResetStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitResetSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitResetFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitResetExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitAddMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	paths := formatter.describePaths(command.Details.Arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitAddStartTemplateConstant, paths, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitAddSuccessTemplateConstant, paths, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitAddFailureTemplateConstant, paths, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitAddExecutionFailureTemplateConstant, paths, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCommitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	paths := formatter.describePaths(command.Details.Arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCommitStartTemplateConstant, paths, workingDirectory, formatter.extractCommitMessage(command.Details.Arguments))
	case messageStageSuccess:
		return fmt.Sprintf(gitCommitSuccessTemplateConstant, paths, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitCommitFailureTemplateConstant, paths, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCommitExecutionFailureTemplateConstant, paths, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeRsyncMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	operands := formatter.extractTrailingOperands(arguments, 2)
	if len(operands) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	source := operands[0]
	target := operands[1]

	modeSuffix := emptyStringConstant
	if containsArgument(arguments, rsyncDeleteFlagConstant) {
		modeSuffix += rsyncDeleteSuffixConstant
	}
	if containsArgument(arguments, rsyncDryRunFlagConstant) {
		modeSuffix += rsyncDryRunSuffixConstant
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(rsyncStartTemplateConstant, source, target, modeSuffix)
	case messageStageSuccess:
		return fmt.Sprintf(rsyncSuccessTemplateConstant, source, target, modeSuffix)
	case messageStageFailure:
		return fmt.Sprintf(rsyncFailureTemplateConstant, source, target, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(rsyncExecutionFailureTemplateConstant, source, target, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf(commandLabelArgumentsTemplateConstant, commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

// describePaths lists the pathspecs following the "--" separator.
func (formatter CommandMessageFormatter) describePaths(arguments []string) string {
	for index, argument := range arguments {
		if argument != pathSeparatorArgumentConstant {
			continue
		}
		paths := arguments[index+1:]
		if len(paths) == 0 {
			return allPathsLabelConstant
		}
		return strings.Join(paths, pathListJoinSeparatorConstant)
	}
	return allPathsLabelConstant
}

func (formatter CommandMessageFormatter) extractTrailingOperands(arguments []string, count int) []string {
	operands := make([]string, 0, count)
	for index := len(arguments) - 1; index >= 0 && len(operands) < count; index-- {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			break
		}
		operands = append([]string{trimmed}, operands...)
	}
	return operands
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractCommitMessage(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == gitMessageFlagConstant && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return fallbackUnknownValueLabelConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
