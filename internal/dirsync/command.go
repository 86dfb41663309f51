package dirsync

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/guardrails/internal/execshell"
	"github.com/temirov/guardrails/internal/gitrepo"
	"github.com/temirov/guardrails/internal/prompt"
	"github.com/temirov/guardrails/internal/shellprofile"
	"github.com/temirov/guardrails/internal/transfer"
	"github.com/temirov/guardrails/internal/utils"
	pathutils "github.com/temirov/guardrails/internal/utils/path"
)

const (
	commandUseConstant                              = "dirsync [pull|push]"
	commandShortDescriptionConstant                 = "Mirror a documentation cache between its canonical location and the repository"
	commandLongDescriptionConstant                  = "dirsync copies a documentation directory from its canonical source into the repository (pull) or back (push) with rsync. Targets outside <repository>/docs require --force or confirmation. --init persists the resolved source and category in the shell start-up file instead of transferring."
	commandExampleConstant                          = "  dirsync --dry-run\n  dirsync pull --allow-delete\n  dirsync push --category swift\n  dirsync --init --source ~/docs/apple"
	flagAllowDeleteNameConstant                     = "allow-delete"
	flagAllowDeleteUsageConstant                    = "Delete files in the destination that are absent from the origin"
	flagDryRunNameConstant                          = "dry-run"
	flagDryRunUsageConstant                         = "Report what would change without modifying anything"
	flagSourceNameConstant                          = "source"
	flagSourceUsageConstant                         = "Canonical documentation directory (default <DOCS_SOURCE or ~/docs>/<category>)"
	flagTargetNameConstant                          = "target"
	flagTargetUsageConstant                         = "In-repository working copy (default DOCS_TARGET or <repository>/docs/apple)"
	flagCategoryNameConstant                        = "category"
	flagCategoryUsageConstant                       = "Documentation category (default DOCS_CATEGORY or the target's last path segment)"
	flagInitNameConstant                            = "init"
	flagInitUsageConstant                           = "Persist DOCS_SOURCE and DOCS_CATEGORY in the shell start-up file and exit"
	flagForceNameConstant                           = "force"
	flagForceUsageConstant                          = "Skip the confirmation required for targets outside <repository>/docs"
	flagProfileNameConstant                         = "profile"
	flagProfileUsageConstant                        = "Shell start-up file written by --init (default ~/.zshrc for zsh, ~/.bashrc otherwise)"
	flagPullNameConstant                            = "pull"
	flagPullUsageConstant                           = "Copy source into target (default)"
	flagPushNameConstant                            = "push"
	flagPushUsageConstant                           = "Copy target back into source"
	shellVariableNameConstant                       = "SHELL"
	workingDirectoryResolutionErrorTemplateConstant = "unable to determine working directory: %w"
	repositoryManagerCreationErrorTemplateConstant  = "unable to construct repository manager: %w"
	transferEngineCreationErrorTemplateConstant     = "unable to construct transfer engine: %w"
	profilePatcherCreationErrorTemplateConstant     = "unable to construct shell profile patcher: %w"
	homeDirectoryRequiredMessageConstant            = "unable to determine the home directory for the shell start-up file; pass --profile"
	repositoryRootUnavailableMessageConstant        = "Repository root unavailable"
	planResolvedMessageConstant                     = "Resolved synchronization plan"
	logFieldWorkingDirectoryConstant                = "working_directory"
	logFieldRepositoryRootConstant                  = "repository_root"
	logFieldSourceConstant                          = "source"
	logFieldCategoryConstant                        = "category"
	logFieldInitOnlyConstant                        = "init_only"
)

// CommandExecutor exposes the git and rsync execution used by dirsync.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteRsync(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// SynchronizationExecutor performs transfers and persists defaults.
type SynchronizationExecutor interface {
	Synchronize(executionContext context.Context, plan Plan) (SyncResult, error)
	Persist(plan Plan, profilePath string) (PersistResult, error)
}

// ServiceProvider constructs a SynchronizationExecutor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (SynchronizationExecutor, error)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the dirsync Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	Executor              CommandExecutor
	FileSystem            afero.Fs
	WorkingDirectory      string
	EnvironmentLookup     EnvironmentLookup
	HomeDirectoryProvider pathutils.HomeDirectoryProvider
	InteractivityDetector prompt.InteractivityDetector
	ConfigurationProvider func() CommandConfiguration
	ServiceProvider       ServiceProvider
}

type commandOptions struct {
	inputs      Inputs
	profilePath string
}

// Build constructs the dirsync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		Example:       commandExampleConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE:          builder.run,
	}

	command.Flags().Bool(flagAllowDeleteNameConstant, false, flagAllowDeleteUsageConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunUsageConstant)
	command.Flags().String(flagSourceNameConstant, "", flagSourceUsageConstant)
	command.Flags().String(flagTargetNameConstant, "", flagTargetUsageConstant)
	command.Flags().String(flagCategoryNameConstant, "", flagCategoryUsageConstant)
	command.Flags().Bool(flagInitNameConstant, false, flagInitUsageConstant)
	command.Flags().Bool(flagForceNameConstant, false, flagForceUsageConstant)
	command.Flags().String(flagProfileNameConstant, "", flagProfileUsageConstant)
	command.Flags().Bool(flagPullNameConstant, false, flagPullUsageConstant)
	command.Flags().Bool(flagPushNameConstant, false, flagPushUsageConstant)

	command.SetFlagErrorFunc(func(command *cobra.Command, flagError error) error {
		return utils.NewUsageError(flagError.Error())
	})

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command, arguments)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoryRoot, rootError := builder.resolveRepositoryRoot(command.Context(), logger, executor, workingDirectory)
	if rootError != nil {
		return rootError
	}

	environment, environmentError := CaptureEnvironment(builder.resolveEnvironmentLookup())
	if environmentError != nil {
		return environmentError
	}

	homeExpander := pathutils.NewHomeExpanderWithProvider(builder.HomeDirectoryProvider)
	plan, planError := ResolvePlan(options.inputs, environment, Defaults{
		RepositoryRoot:    repositoryRoot,
		WorkingDirectory:  workingDirectory,
		HomeDirectory:     homeExpander.HomeDirectory(),
		DocsDirectory:     configuration.DocsDirectory,
		DefaultCategory:   configuration.DefaultCategory,
		DefaultSourceBase: configuration.DefaultSourceBase,
	})
	if planError != nil {
		return planError
	}

	logger.Debug(
		planResolvedMessageConstant,
		zap.String(logFieldModeConstant, string(plan.Mode)),
		zap.String(logFieldSourceConstant, plan.Source),
		zap.String(logFieldTargetConstant, plan.Target),
		zap.String(logFieldCategoryConstant, plan.Category),
		zap.String(logFieldRepositoryRootConstant, plan.RepositoryRoot),
		zap.Bool(logFieldInitOnlyConstant, plan.InitOnly),
	)

	transferEngine, engineError := transfer.NewRsyncEngine(executor)
	if engineError != nil {
		return fmt.Errorf(transferEngineCreationErrorTemplateConstant, engineError)
	}

	fileSystem := builder.resolveFileSystem()
	profilePatcher, patcherError := shellprofile.NewPatcher(fileSystem)
	if patcherError != nil {
		return fmt.Errorf(profilePatcherCreationErrorTemplateConstant, patcherError)
	}

	service, serviceError := builder.resolveService(ServiceDependencies{
		Logger:                logger,
		TransferEngine:        transferEngine,
		ProfilePatcher:        profilePatcher,
		FileSystem:            fileSystem,
		Prompter:              prompt.NewIOConfirmationPrompter(command.InOrStdin(), command.ErrOrStderr()),
		InteractivityDetector: builder.resolveInteractivityDetector(command.InOrStdin()),
		HomeExpander:          homeExpander,
		Output:                command.OutOrStdout(),
		ErrorOutput:           command.ErrOrStderr(),
		Exclusions:            configuration.TransferExclusions(),
		PathResolver:          pathutils.ResolveSymlinks,
	})
	if serviceError != nil {
		return serviceError
	}

	if plan.InitOnly {
		profilePath, profileError := builder.resolveProfilePath(options.profilePath, configuration.Profile, homeExpander)
		if profileError != nil {
			return profileError
		}
		_, persistError := service.Persist(plan, profilePath)
		return persistError
	}

	_, synchronizationError := service.Synchronize(command.Context(), plan)
	return synchronizationError
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) (commandOptions, error) {
	flagSet := command.Flags()

	pullRequested, _ := flagSet.GetBool(flagPullNameConstant)
	pushRequested, _ := flagSet.GetBool(flagPushNameConstant)
	mode, modeError := ParseInvocation(arguments, pullRequested, pushRequested)
	if modeError != nil {
		return commandOptions{}, modeError
	}

	allowDelete, _ := flagSet.GetBool(flagAllowDeleteNameConstant)
	dryRun, _ := flagSet.GetBool(flagDryRunNameConstant)
	force, _ := flagSet.GetBool(flagForceNameConstant)
	initOnly, _ := flagSet.GetBool(flagInitNameConstant)
	source, _ := flagSet.GetString(flagSourceNameConstant)
	target, _ := flagSet.GetString(flagTargetNameConstant)
	category, _ := flagSet.GetString(flagCategoryNameConstant)
	profilePath, _ := flagSet.GetString(flagProfileNameConstant)

	return commandOptions{
		inputs: Inputs{
			Mode:        mode,
			Source:      source,
			Target:      target,
			Category:    category,
			AllowDelete: allowDelete,
			DryRun:      dryRun,
			Force:       force,
			InitOnly:    initOnly,
		},
		profilePath: strings.TrimSpace(profilePath),
	}, nil
}

// resolveRepositoryRoot returns an empty root when the working directory is not inside a repository
// or git cannot be run; the safety gate treats both alike. Cancellation is still reported.
func (builder *CommandBuilder) resolveRepositoryRoot(executionContext context.Context, logger *zap.Logger, executor CommandExecutor, workingDirectory string) (string, error) {
	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return "", fmt.Errorf(repositoryManagerCreationErrorTemplateConstant, managerError)
	}

	repositoryRoot, rootError := repositoryManager.ResolveRoot(executionContext, workingDirectory)
	if rootError != nil {
		if executionContext != nil && executionContext.Err() != nil {
			return "", executionContext.Err()
		}
		logger.Debug(
			repositoryRootUnavailableMessageConstant,
			zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
			zap.Error(rootError),
		)
		return "", nil
	}
	return repositoryRoot, nil
}

func (builder *CommandBuilder) resolveProfilePath(flagValue string, configuredValue string, homeExpander *pathutils.HomeExpander) (string, error) {
	for _, candidate := range []string{flagValue, configuredValue} {
		if len(candidate) > 0 {
			return homeExpander.Expand(candidate), nil
		}
	}

	homeDirectory := homeExpander.HomeDirectory()
	if len(homeDirectory) == 0 {
		return "", utils.NewUsageError(homeDirectoryRequiredMessageConstant)
	}
	shellPath, _ := builder.resolveEnvironmentLookup()(shellVariableNameConstant)
	return shellprofile.DefaultProfilePath(shellPath, homeDirectory), nil
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

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
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

func (builder *CommandBuilder) resolveEnvironmentLookup() EnvironmentLookup {
	if builder.EnvironmentLookup != nil {
		return builder.EnvironmentLookup
	}
	return os.LookupEnv
}

func (builder *CommandBuilder) resolveInteractivityDetector(input io.Reader) prompt.InteractivityDetector {
	if builder.InteractivityDetector != nil {
		return builder.InteractivityDetector
	}
	if inputFile, isFile := input.(*os.File); isFile {
		return prompt.NewTerminalDetector(inputFile)
	}
	return prompt.StaticDetector(false)
}

func (builder *CommandBuilder) resolveFileSystem() afero.Fs {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return afero.NewOsFs()
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (SynchronizationExecutor, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}
