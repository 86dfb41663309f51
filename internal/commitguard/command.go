package commitguard

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/guardrails/internal/execshell"
	"github.com/temirov/guardrails/internal/gitrepo"
	"github.com/temirov/guardrails/internal/utils"
)

const (
	commandUseConstant                              = "commit-guard \"<message>\" <path> [<path> ...]"
	commandShortDescriptionConstant                 = "Commit exactly the named paths after validating them"
	commandLongDescriptionConstant                  = "commit-guard verifies that every named path exists or is tracked and has pending changes, then clears the index, stages exactly those paths and commits them with the given message. Changes staged for other paths are left unstaged."
	commandExampleConstant                          = "  commit-guard \"fix typo\" README.md\n  commit-guard \"docs: refresh guides\" docs/a.md docs/b.md\n  commit-guard -- \"--force: document the flag\" README.md"
	minimumArgumentCountConstant                    = 2
	argumentCountUsageMessageConstant               = "a commit message and at least one path are required"
	blankMessageUsageMessageConstant                = "commit message must not be empty or whitespace"
	repositoryManagerCreationErrorTemplateConstant  = "unable to construct repository manager: %w"
	workingDirectoryResolutionErrorTemplateConstant = "unable to determine working directory: %w"
	commitSummaryTemplateConstant                   = "Committed %d %s as %s: %s\n"
	commitSummaryWithoutRevisionTemplateConstant    = "Committed %d %s: %s\n"
	singularPathLabelConstant                       = "path"
	pluralPathLabelConstant                         = "paths"
	optionTerminatorConstant                        = "--"
	longOptionPrefixConstant                        = "--"
	optionValueSeparatorConstant                    = "="
	shortHelpOptionConstant                         = "-h"
	helpFlagNameConstant                            = "help"
	optionWhitespaceCharactersConstant              = " \t\r\n"
	unknownOptionUsageTemplateConstant              = "unknown flag: %s (place -- before a message that starts with --)"
)

// CommandExecutor exposes the git execution used by the guarded commit.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommitExecutor performs guarded commits.
type CommitExecutor interface {
	Commit(executionContext context.Context, request Request) (Result, error)
}

// ServiceProvider constructs a CommitExecutor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (CommitExecutor, error)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the commit-guard Cobra command.
type CommandBuilder struct {
	LoggerProvider   LoggerProvider
	Executor         CommandExecutor
	FileSystem       afero.Fs
	WorkingDirectory string
	ServiceProvider  ServiceProvider
}

// Build constructs the commit-guard command. Only options placed before the message are parsed;
// the message and every path after it are taken verbatim.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:                commandUseConstant,
		Short:              commandShortDescriptionConstant,
		Long:               commandLongDescriptionConstant,
		Example:            commandExampleConstant,
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableFlagParsing: true,
		Args:               parseInvocation,
		RunE:               builder.run,
	}
	return command, nil
}

// parseInvocation applies the leading options to the command's flags and validates the
// remaining message and paths. It runs before the persistent pre-run hooks, so options such as
// --log-level are visible to them.
func parseInvocation(command *cobra.Command, arguments []string) error {
	optionArguments, positionalArguments, splitError := splitInvocation(command, arguments)
	if splitError != nil {
		return splitError
	}

	flagSet := command.Flags()
	flagSet.AddFlagSet(command.PersistentFlags())
	flagSet.AddFlagSet(command.InheritedFlags())
	if parseError := flagSet.Parse(optionArguments); parseError != nil {
		return utils.NewUsageError(parseError.Error())
	}
	if helpRequested, _ := flagSet.GetBool(helpFlagNameConstant); helpRequested {
		return pflag.ErrHelp
	}

	return validateArguments(positionalArguments)
}

// splitInvocation separates the options preceding the message from the message and paths.
// A token that starts with "--" and names no known flag is rejected; "--" ends the options.
func splitInvocation(command *cobra.Command, arguments []string) ([]string, []string, error) {
	var optionArguments []string
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		argument := arguments[argumentIndex]
		switch {
		case argument == optionTerminatorConstant:
			return optionArguments, arguments[argumentIndex+1:], nil
		case argument == shortHelpOptionConstant:
			optionArguments = append(optionArguments, argument)
		case isLongOption(argument):
			optionName, _, valueAttached := strings.Cut(strings.TrimPrefix(argument, longOptionPrefixConstant), optionValueSeparatorConstant)
			flag := lookupOption(command, optionName)
			if flag == nil {
				return nil, nil, utils.NewUsageError(fmt.Sprintf(unknownOptionUsageTemplateConstant, argument))
			}
			optionArguments = append(optionArguments, argument)
			if !valueAttached && len(flag.NoOptDefVal) == 0 && argumentIndex+1 < len(arguments) {
				argumentIndex++
				optionArguments = append(optionArguments, arguments[argumentIndex])
			}
		default:
			return optionArguments, arguments[argumentIndex:], nil
		}
	}
	return optionArguments, nil, nil
}

func isLongOption(argument string) bool {
	if !strings.HasPrefix(argument, longOptionPrefixConstant) {
		return false
	}
	optionName, _, _ := strings.Cut(strings.TrimPrefix(argument, longOptionPrefixConstant), optionValueSeparatorConstant)
	return len(optionName) > 0 && !strings.ContainsAny(optionName, optionWhitespaceCharactersConstant)
}

func lookupOption(command *cobra.Command, optionName string) *pflag.Flag {
	if flag := command.Flags().Lookup(optionName); flag != nil {
		return flag
	}
	if flag := command.PersistentFlags().Lookup(optionName); flag != nil {
		return flag
	}
	return command.InheritedFlags().Lookup(optionName)
}

func validateArguments(arguments []string) error {
	if len(arguments) < minimumArgumentCountConstant {
		return utils.NewUsageError(argumentCountUsageMessageConstant)
	}
	if len(strings.TrimSpace(arguments[0])) == 0 {
		return utils.NewUsageError(blankMessageUsageMessageConstant)
	}
	return nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	_, positionalArguments, splitError := splitInvocation(command, arguments)
	if splitError != nil {
		return splitError
	}

	logger := builder.resolveLogger()

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return fmt.Errorf(repositoryManagerCreationErrorTemplateConstant, managerError)
	}

	service, serviceError := builder.resolveService(ServiceDependencies{
		Logger:           logger,
		RepositoryEngine: repositoryManager,
		FileSystem:       builder.resolveFileSystem(),
	})
	if serviceError != nil {
		return serviceError
	}

	request := Request{
		Message:          positionalArguments[0],
		Paths:            append([]string{}, positionalArguments[1:]...),
		WorkingDirectory: workingDirectory,
	}

	result, commitError := service.Commit(command.Context(), request)
	if commitError != nil {
		return commitError
	}

	builder.printSummary(command, request, result)
	return nil
}

func (builder *CommandBuilder) printSummary(command *cobra.Command, request Request, result Result) {
	pathLabel := pluralPathLabelConstant
	if len(result.Paths) == 1 {
		pathLabel = singularPathLabelConstant
	}
	firstMessageLine := strings.SplitN(strings.TrimSpace(request.Message), "\n", 2)[0]
	if len(result.Revision) == 0 {
		fmt.Fprintf(command.OutOrStdout(), commitSummaryWithoutRevisionTemplateConstant, len(result.Paths), pathLabel, firstMessageLine)
		return
	}
	fmt.Fprintf(command.OutOrStdout(), commitSummaryTemplateConstant, len(result.Paths), pathLabel, result.Revision, firstMessageLine)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if len(strings.TrimSpace(builder.WorkingDirectory)) > 0 {
		return builder.WorkingDirectory, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryResolutionErrorTemplateConstant, workingDirectoryError)
	}
	return workingDirectory, nil
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveFileSystem() afero.Fs {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return afero.NewOsFs()
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (CommitExecutor, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}
