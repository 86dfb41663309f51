package dirsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/guardrails/internal/prompt"
	"github.com/temirov/guardrails/internal/shellprofile"
	"github.com/temirov/guardrails/internal/transfer"
	"github.com/temirov/guardrails/internal/utils"
	pathutils "github.com/temirov/guardrails/internal/utils/path"
)

const (
	targetDirectoryPermissionsConstant         = 0o755
	targetWouldBeCreatedTemplateConstant       = "Target directory %s does not exist and would be created\n"
	targetCreatedTemplateConstant              = "Created target directory %s\n"
	targetCreationErrorTemplateConstant        = "unable to create target directory %s: %w"
	targetNotDirectoryErrorTemplateConstant    = "target %s exists and is not a directory"
	pathInspectionErrorTemplateConstant        = "unable to inspect %s: %w"
	safetyWarningTemplateConstant              = "Warning: %s (target %s)\n"
	safetyForcedNoticeConstant                 = "Continuing because --force was given\n"
	safetyDryRunNoticeConstant                 = "Continuing because this is a dry run\n"
	safetyPromptTemplateConstant               = "Sync into %s anyway? [y/N] "
	confirmationErrorTemplateConstant          = "unable to read confirmation: %w"
	transferDirectionTemplateConstant          = "%s: %s -> %s\n"
	pushWithoutDeleteNoticeConstant            = "Push without --allow-delete: files missing from the target are never removed from the source\n"
	nothingToPushTemplateConstant              = "Target %s does not exist; nothing to push\n"
	dryRunNoticeConstant                       = "Dry run: no changes were applied\n"
	transferErrorTemplateConstant              = "transfer failed: %w"
	profileUpdateErrorTemplateConstant         = "unable to update %s in %s: %w"
	profileAppendedTemplateConstant            = "Added %s to %s\n"
	profileReplacedTemplateConstant            = "Updated %s in %s\n"
	profileUnchangedTemplateConstant           = "%s already up to date in %s\n"
	profileReloadHintTemplateConstant          = "Open a new shell or run: source %s\n"
	categoryFromSourceNoticeTemplateConstant   = "Persisting %s=%s, the last segment of %s, instead of category %s\n"
	unpersistableSourceTemplateConstant        = "source %s has no final path segment to persist as %s"
	synchronizationStartedMessageConstant      = "Directory synchronization started"
	synchronizationCompletedMessageConstant    = "Directory synchronization completed"
	safetyGateTriggeredMessageConstant         = "Safety gate triggered"
	profileAssignmentAppliedMessageConstant    = "Shell profile assignment applied"
	logFieldModeConstant                       = "mode"
	logFieldTargetConstant                     = "target"
	logFieldFromConstant                       = "from"
	logFieldToConstant                         = "to"
	logFieldDryRunConstant                     = "dry_run"
	logFieldAllowDeleteConstant                = "allow_delete"
	logFieldReasonConstant                     = "reason"
	logFieldForceConstant                      = "force"
	logFieldProfileConstant                    = "profile"
	logFieldVariableConstant                   = "variable"
	logFieldOutcomeConstant                    = "outcome"
	profilePathRequiredMessageConstant         = "shell profile path required"
	confirmationPrompterMissingMessageConstant = "confirmation prompter not configured"
)

var (
	errProfilePathRequired         = errors.New(profilePathRequiredMessageConstant)
	errConfirmationPrompterMissing = errors.New(confirmationPrompterMissingMessageConstant)
)

// TransferEngine mirrors one directory into another.
type TransferEngine interface {
	Mirror(executionContext context.Context, options transfer.MirrorOptions) error
}

// ProfilePatcher persists a single export line in a shell start-up file.
type ProfilePatcher interface {
	Apply(profilePath string, assignment shellprofile.Assignment) (shellprofile.Outcome, error)
}

// ServiceDependencies describes the collaborators required by Service.
type ServiceDependencies struct {
	Logger                *zap.Logger
	TransferEngine        TransferEngine
	ProfilePatcher        ProfilePatcher
	FileSystem            afero.Fs
	Prompter              prompt.ConfirmationPrompter
	InteractivityDetector prompt.InteractivityDetector
	HomeExpander          *pathutils.HomeExpander
	// Output receives the operator report and the engine's itemized changes.
	Output io.Writer
	// ErrorOutput receives warnings.
	ErrorOutput io.Writer
	// Exclusions replaces the transfer engine's default exclusions when non-nil.
	Exclusions []string
	// PathResolver canonicalizes paths before the safety gate compares them.
	PathResolver PathResolver
}

// SyncResult reports what Synchronize did.
type SyncResult struct {
	From          string
	To            string
	TargetCreated bool
	Transferred   bool
}

// AssignmentOutcome pairs a persisted assignment with how the profile was changed.
type AssignmentOutcome struct {
	Assignment shellprofile.Assignment
	Outcome    shellprofile.Outcome
}

// PersistResult reports what Persist did.
type PersistResult struct {
	ProfilePath string
	Outcomes    []AssignmentOutcome
}

// Service performs guarded directory synchronization and persists resolved defaults.
type Service struct {
	logger                *zap.Logger
	transferEngine        TransferEngine
	profilePatcher        ProfilePatcher
	fileSystem            afero.Fs
	prompter              prompt.ConfirmationPrompter
	interactivityDetector prompt.InteractivityDetector
	homeExpander          *pathutils.HomeExpander
	output                io.Writer
	errorOutput           io.Writer
	exclusions            []string
	safetyEvaluator       SafetyEvaluator
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.TransferEngine == nil {
		return nil, errTransferEngineMissing
	}
	if dependencies.ProfilePatcher == nil {
		return nil, errProfilePatcherMissing
	}
	if dependencies.FileSystem == nil {
		return nil, errFileSystemMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interactivityDetector := dependencies.InteractivityDetector
	if interactivityDetector == nil {
		interactivityDetector = prompt.StaticDetector(false)
	}
	homeExpander := dependencies.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	errorOutput := dependencies.ErrorOutput
	if errorOutput == nil {
		errorOutput = io.Discard
	}

	return &Service{
		logger:                logger,
		transferEngine:        dependencies.TransferEngine,
		profilePatcher:        dependencies.ProfilePatcher,
		fileSystem:            dependencies.FileSystem,
		prompter:              dependencies.Prompter,
		interactivityDetector: interactivityDetector,
		homeExpander:          homeExpander,
		output:                output,
		errorOutput:           errorOutput,
		exclusions:            dependencies.Exclusions,
		safetyEvaluator:       SafetyEvaluator{PathResolver: dependencies.PathResolver},
	}, nil
}

// Synchronize validates the plan, passes the safety gate and runs exactly one directional transfer.
// Nothing is created or transferred until the source is confirmed and the gate is passed. Dry runs
// only warn at the gate since they modify nothing.
func (service *Service) Synchronize(executionContext context.Context, plan Plan) (SyncResult, error) {
	if sourceError := service.ensureSourceDirectory(plan.Source); sourceError != nil {
		return SyncResult{}, sourceError
	}

	if gateError := service.passSafetyGate(plan); gateError != nil {
		return SyncResult{}, gateError
	}

	targetExists, targetError := service.directoryExists(plan.Target)
	if targetError != nil {
		return SyncResult{}, targetError
	}

	from, to := plan.TransferEndpoints()
	result := SyncResult{From: from, To: to}

	if !targetExists {
		if plan.DryRun {
			fmt.Fprintf(service.output, targetWouldBeCreatedTemplateConstant, plan.Target)
		} else {
			if creationError := service.fileSystem.MkdirAll(plan.Target, targetDirectoryPermissionsConstant); creationError != nil {
				return SyncResult{}, fmt.Errorf(targetCreationErrorTemplateConstant, plan.Target, creationError)
			}
			fmt.Fprintf(service.output, targetCreatedTemplateConstant, plan.Target)
			result.TargetCreated = true
			targetExists = true
		}
	}

	fmt.Fprintf(service.output, transferDirectionTemplateConstant, plan.Mode, from, to)
	if plan.Mode == ModePush && !plan.AllowDelete {
		fmt.Fprint(service.output, pushWithoutDeleteNoticeConstant)
	}

	service.logger.Info(
		synchronizationStartedMessageConstant,
		zap.String(logFieldModeConstant, string(plan.Mode)),
		zap.String(logFieldFromConstant, from),
		zap.String(logFieldToConstant, to),
		zap.Bool(logFieldDryRunConstant, plan.DryRun),
		zap.Bool(logFieldAllowDeleteConstant, plan.AllowDelete),
	)

	if plan.Mode == ModePush && !targetExists {
		fmt.Fprintf(service.output, nothingToPushTemplateConstant, plan.Target)
	} else {
		mirrorError := service.transferEngine.Mirror(executionContext, transfer.MirrorOptions{
			Source:       from,
			Target:       to,
			AllowDelete:  plan.AllowDelete,
			DryRun:       plan.DryRun,
			Exclusions:   service.exclusions,
			OutputWriter: service.output,
		})
		if mirrorError != nil {
			return SyncResult{}, fmt.Errorf(transferErrorTemplateConstant, mirrorError)
		}
		result.Transferred = true
	}

	if plan.DryRun {
		fmt.Fprint(service.output, dryRunNoticeConstant)
	}

	service.logger.Info(
		synchronizationCompletedMessageConstant,
		zap.String(logFieldModeConstant, string(plan.Mode)),
		zap.String(logFieldFromConstant, from),
		zap.String(logFieldToConstant, to),
		zap.Bool(logFieldDryRunConstant, plan.DryRun),
	)

	return result, nil
}

// Persist writes the resolved source into the shell start-up file as its parent directory and
// final segment, so that a later resolution without flags yields the same source. Each assignment
// is applied independently; unchanged assignments cause no write.
func (service *Service) Persist(plan Plan, profilePath string) (PersistResult, error) {
	if len(profilePath) == 0 {
		return PersistResult{}, errProfilePathRequired
	}

	cleanedSource := filepath.Clean(plan.Source)
	sourceBase := filepath.Dir(cleanedSource)
	sourceCategory := filepath.Base(cleanedSource)
	if sourceBase == cleanedSource {
		return PersistResult{}, utils.NewUsageError(fmt.Sprintf(unpersistableSourceTemplateConstant, plan.Source, CategoryVariableNameConstant))
	}
	if sourceCategory != plan.Category {
		fmt.Fprintf(service.errorOutput, categoryFromSourceNoticeTemplateConstant, CategoryVariableNameConstant, sourceCategory, cleanedSource, plan.Category)
	}

	assignments := []shellprofile.Assignment{
		{Name: SourceVariableNameConstant, Value: service.homeExpander.Abbreviate(sourceBase)},
		{Name: CategoryVariableNameConstant, Value: sourceCategory},
	}

	result := PersistResult{ProfilePath: profilePath}
	profileChanged := false
	for _, assignment := range assignments {
		outcome, applyError := service.profilePatcher.Apply(profilePath, assignment)
		if applyError != nil {
			return PersistResult{}, fmt.Errorf(profileUpdateErrorTemplateConstant, assignment.Name, profilePath, applyError)
		}

		service.logger.Info(
			profileAssignmentAppliedMessageConstant,
			zap.String(logFieldProfileConstant, profilePath),
			zap.String(logFieldVariableConstant, assignment.Name),
			zap.String(logFieldOutcomeConstant, string(outcome)),
		)

		switch outcome {
		case shellprofile.OutcomeAppended:
			fmt.Fprintf(service.output, profileAppendedTemplateConstant, shellprofile.FormatAssignment(assignment), profilePath)
			profileChanged = true
		case shellprofile.OutcomeReplaced:
			fmt.Fprintf(service.output, profileReplacedTemplateConstant, shellprofile.FormatAssignment(assignment), profilePath)
			profileChanged = true
		default:
			fmt.Fprintf(service.output, profileUnchangedTemplateConstant, assignment.Name, profilePath)
		}
		result.Outcomes = append(result.Outcomes, AssignmentOutcome{Assignment: assignment, Outcome: outcome})
	}

	if profileChanged {
		fmt.Fprintf(service.output, profileReloadHintTemplateConstant, profilePath)
	}
	return result, nil
}

func (service *Service) passSafetyGate(plan Plan) error {
	status := service.safetyEvaluator.Evaluate(plan)
	if !status.RequiresConfirmation {
		return nil
	}

	service.logger.Warn(
		safetyGateTriggeredMessageConstant,
		zap.String(logFieldTargetConstant, plan.Target),
		zap.String(logFieldReasonConstant, status.Reason),
		zap.Bool(logFieldForceConstant, plan.Force),
	)
	fmt.Fprintf(service.errorOutput, safetyWarningTemplateConstant, status.Reason, plan.Target)

	if plan.Force {
		fmt.Fprint(service.errorOutput, safetyForcedNoticeConstant)
		return nil
	}
	if plan.DryRun {
		fmt.Fprint(service.errorOutput, safetyDryRunNoticeConstant)
		return nil
	}

	if !service.interactivityDetector.IsInteractive() {
		return SafetyGateError{Target: plan.Target, Reason: status.Reason}
	}
	if service.prompter == nil {
		return errConfirmationPrompterMissing
	}

	confirmed, confirmationError := service.prompter.Confirm(fmt.Sprintf(safetyPromptTemplateConstant, plan.Target))
	if confirmationError != nil {
		return fmt.Errorf(confirmationErrorTemplateConstant, confirmationError)
	}
	if !confirmed {
		return SafetyGateError{Target: plan.Target, Reason: status.Reason, Declined: true}
	}
	return nil
}

func (service *Service) ensureSourceDirectory(source string) error {
	fileInformation, statError := service.fileSystem.Stat(source)
	if statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return SourceMissingError{Source: source}
		}
		return fmt.Errorf(pathInspectionErrorTemplateConstant, source, statError)
	}
	if !fileInformation.IsDir() {
		return SourceMissingError{Source: source, NotDirectory: true}
	}
	return nil
}

func (service *Service) directoryExists(directory string) (bool, error) {
	fileInformation, statError := service.fileSystem.Stat(directory)
	if statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(pathInspectionErrorTemplateConstant, directory, statError)
	}
	if !fileInformation.IsDir() {
		return false, fmt.Errorf(targetNotDirectoryErrorTemplateConstant, directory)
	}
	return true, nil
}
