package dirsync

import (
	"errors"
	"fmt"
)

const (
	sourceMissingErrorTemplateConstant      = "source directory %s does not exist; set --source or %s"
	sourceNotDirectoryErrorTemplateConstant = "source %s is not a directory; set --source or %s"
	safetyGateErrorTemplateConstant         = "refusing to sync into %s: %s and %s; rerun with --force or set --target"
	confirmationDeclinedOutcomeConstant     = "confirmation was declined"
	confirmationUnavailableOutcomeConstant  = "no terminal is available to confirm"
	transferEngineMissingMessageConstant    = "transfer engine not configured"
	fileSystemMissingMessageConstant        = "file system not configured"
	profilePatcherMissingMessageConstant    = "shell profile patcher not configured"
)

var (
	errTransferEngineMissing = errors.New(transferEngineMissingMessageConstant)
	errFileSystemMissing     = errors.New(fileSystemMissingMessageConstant)
	errProfilePatcherMissing = errors.New(profilePatcherMissingMessageConstant)
)

// SourceMissingError reports that the source directory is absent or not a directory.
type SourceMissingError struct {
	Source       string
	NotDirectory bool
}

// Error explains how to point the tool at an existing source.
func (sourceError SourceMissingError) Error() string {
	if sourceError.NotDirectory {
		return fmt.Sprintf(sourceNotDirectoryErrorTemplateConstant, sourceError.Source, SourceVariableNameConstant)
	}
	return fmt.Sprintf(sourceMissingErrorTemplateConstant, sourceError.Source, SourceVariableNameConstant)
}

// SafetyGateError reports that the safety gate was not passed.
type SafetyGateError struct {
	Target string
	Reason string
	// Declined is true when the operator answered the prompt; false when no prompt could be shown.
	Declined bool
}

// Error includes the guidance for passing the gate.
func (gateError SafetyGateError) Error() string {
	outcome := confirmationUnavailableOutcomeConstant
	if gateError.Declined {
		outcome = confirmationDeclinedOutcomeConstant
	}
	return fmt.Sprintf(safetyGateErrorTemplateConstant, gateError.Target, gateError.Reason, outcome)
}
