package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/guardrails/internal/commitguard"
	"github.com/temirov/guardrails/internal/dirsync"
	"github.com/temirov/guardrails/internal/utils"
)

const (
	configFileFlagNameConstant                 = "config"
	configFileFlagUsageConstant                = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                   = "log-level"
	logLevelFlagUsageConstant                  = "Override the configured log level (debug, info, warn, error)."
	logFormatFlagNameConstant                  = "log-format"
	logFormatFlagUsageConstant                 = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant             = "common"
	commonLogLevelConfigKeyConstant            = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant           = commonConfigurationKeyConstant + ".log_format"
	commonLogFileConfigKeyConstant             = commonConfigurationKeyConstant + ".log_file"
	toolsConfigurationKeyConstant              = "tools"
	dirSyncConfigurationKeyConstant            = toolsConfigurationKeyConstant + ".dirsync"
	environmentPrefixConstant                  = "GUARDRAILS"
	configurationSearchPathEnvironmentConstant = environmentPrefixConstant + "_CONFIG_SEARCH_PATH"
	configurationNameConstant                  = "config"
	configurationTypeConstant                  = "yaml"
	configurationDirectoryNameConstant         = "guardrails"
	defaultConfigurationSearchPathConstant     = "."
	configurationInitializedMessageConstant    = "configuration initialized"
	configurationLogLevelFieldConstant         = "log_level"
	configurationLogFormatFieldConstant        = "log_format"
	configurationLogFileFieldConstant          = "log_file"
	configurationFileFieldConstant             = "config_file"
	configurationLoadErrorTemplateConstant     = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant        = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant            = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant          = "unable to build %s command: %w"
	commandInvokedMessageConstant              = "command invoked"
	logFieldCommandNameConstant                = "command_name"
	logFieldArgumentCountConstant              = "argument_count"
	logFieldArgumentsConstant                  = "arguments"
	commitGuardCommandNameConstant             = "commit-guard"
	dirSyncCommandNameConstant                 = "dirsync"
)

// ApplicationConfiguration describes the persisted configuration shared by both binaries.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	// LogFile enables a rotated audit log of every engine invocation when non-empty.
	LogFile string `mapstructure:"log_file"`
}

// ApplicationToolsConfiguration holds per-tool configuration.
type ApplicationToolsConfiguration struct {
	DirSync dirsync.CommandConfiguration `mapstructure:"dirsync"`
}

// Application wires a tool command, the configuration loader, and structured logging.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

type commandFactory func(application *Application) (*cobra.Command, error)

// NewCommitGuardApplication assembles the commit-guard binary.
func NewCommitGuardApplication() (*Application, error) {
	return newApplication(commitGuardCommandNameConstant, func(application *Application) (*cobra.Command, error) {
		builder := commitguard.CommandBuilder{
			LoggerProvider: application.currentLogger,
		}
		return builder.Build()
	})
}

// NewDirSyncApplication assembles the dirsync binary.
func NewDirSyncApplication() (*Application, error) {
	return newApplication(dirSyncCommandNameConstant, func(application *Application) (*cobra.Command, error) {
		builder := dirsync.CommandBuilder{
			LoggerProvider: application.currentLogger,
			ConfigurationProvider: func() dirsync.CommandConfiguration {
				return application.configuration.Tools.DirSync
			},
		}
		return builder.Build()
	})
}

func newApplication(commandName string, factory commandFactory) (*Application, error) {
	application := &Application{
		configurationLoader: utils.NewConfigurationLoader(
			configurationNameConstant,
			configurationTypeConstant,
			environmentPrefixConstant,
			configurationSearchPaths(),
		),
		loggerFactory: utils.NewLoggerFactory(),
		logger:        zap.NewNop(),
	}
	if _, validationError := ValidateEmbeddedConfiguration(); validationError != nil {
		return nil, validationError
	}
	application.configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	cobraCommand, buildError := factory(application)
	if buildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, commandName, buildError)
	}

	cobraCommand.PersistentPreRunE = func(command *cobra.Command, arguments []string) error {
		if initializationError := application.initializeConfiguration(command); initializationError != nil {
			return initializationError
		}
		application.logger.Debug(
			commandInvokedMessageConstant,
			zap.String(logFieldCommandNameConstant, command.Name()),
			zap.Int(logFieldArgumentCountConstant, len(arguments)),
			zap.Strings(logFieldArgumentsConstant, arguments),
		)
		return nil
	}
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.SetFlagErrorFunc(func(command *cobra.Command, flagError error) error {
		return utils.NewUsageError(flagError.Error())
	})

	application.rootCommand = cobraCommand
	return application, nil
}

// RootCommand exposes the tool command for output redirection and argument injection.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// Configuration returns the configuration resolved by the most recent execution.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute runs the tool command with the provided context and flushes the logger.
func (application *Application) Execute(executionContext context.Context) error {
	if executionContext == nil {
		executionContext = context.Background()
	}
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Run executes the tool command, reports any failure to the command's error stream, and returns
// the process exit code.
func (application *Application) Run(executionContext context.Context) int {
	executionError := application.Execute(executionContext)
	if executionError == nil {
		return 0
	}
	ReportError(application.rootCommand.ErrOrStderr(), application.rootCommand, executionError)
	return ExitCode(executionError)
}

func (application *Application) currentLogger() *zap.Logger {
	return application.logger
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		commonLogFileConfigKeyConstant:   "",
	}
	for configurationKey, configurationValue := range dirsync.DefaultConfigurationValues(dirSyncConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	if validationError := validateConfigurationFile(loadedConfiguration.ConfigFileUsed); validationError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, validationError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(utils.LoggerOptions{
		Level:         utils.LogLevel(strings.TrimSpace(application.configuration.Common.LogLevel)),
		Format:        utils.LogFormat(strings.TrimSpace(application.configuration.Common.LogFormat)),
		FilePath:      strings.TrimSpace(application.configuration.Common.LogFile),
		ConsoleWriter: command.ErrOrStderr(),
	})
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationLogFileFieldConstant, application.configuration.Common.LogFile),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

// configurationSearchPaths lists the working directory and the per-user configuration directory,
// or only the directories named by GUARDRAILS_CONFIG_SEARCH_PATH when it is set.
func configurationSearchPaths() []string {
	if overridePaths := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentConstant)); len(overridePaths) > 0 {
		return filepath.SplitList(overridePaths)
	}

	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, configurationDirectoryNameConstant))
	}
	return searchPaths
}

func writeLine(writer io.Writer, text string) {
	if writer == nil {
		return
	}
	fmt.Fprintln(writer, strings.TrimRight(text, "\n"))
}
