package transfer

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/temirov/guardrails/internal/execshell"
)

const (
	rsyncArchiveFlagConstant            = "-a"
	rsyncRecursiveFlagConstant          = "-r"
	rsyncItemizeChangesFlagConstant     = "-i"
	rsyncVerboseFlagConstant            = "-v"
	rsyncDeleteFlagConstant             = "--delete"
	rsyncDryRunFlagConstant             = "--dry-run"
	rsyncExcludeFlagPrefixConstant      = "--exclude="
	trailingSeparatorConstant           = "/"
	rsyncExecutorMissingMessageConstant = "rsync executor not configured"
	sourceRequiredMessageConstant       = "transfer source required"
	targetRequiredMessageConstant       = "transfer target required"
)

// DefaultExclusions lists version-control metadata and operating-system clutter never transferred.
var DefaultExclusions = []string{
	".git/",
	".svn/",
	".hg/",
	".DS_Store",
	"Thumbs.db",
	"._*",
	"desktop.ini",
}

// ErrRsyncExecutorNotConfigured indicates that no rsync executor was supplied.
var ErrRsyncExecutorNotConfigured = errors.New(rsyncExecutorMissingMessageConstant)

var (
	errSourceRequired = errors.New(sourceRequiredMessageConstant)
	errTargetRequired = errors.New(targetRequiredMessageConstant)
)

// RsyncExecutor exposes the subset of shell execution used by RsyncEngine.
type RsyncExecutor interface {
	ExecuteRsync(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// MirrorOptions describes one directional transfer.
type MirrorOptions struct {
	Source      string
	Target      string
	AllowDelete bool
	DryRun      bool
	// Exclusions replaces DefaultExclusions when non-nil.
	Exclusions []string
	// OutputWriter receives the itemized change list as rsync produces it.
	OutputWriter io.Writer
}

// RsyncEngine mirrors directories by invoking rsync once per transfer.
type RsyncEngine struct {
	executor RsyncExecutor
}

// NewRsyncEngine constructs an RsyncEngine backed by the provided executor.
func NewRsyncEngine(executor RsyncExecutor) (*RsyncEngine, error) {
	if executor == nil {
		return nil, ErrRsyncExecutorNotConfigured
	}
	return &RsyncEngine{executor: executor}, nil
}

// Mirror copies the contents of options.Source into options.Target.
func (engine *RsyncEngine) Mirror(executionContext context.Context, options MirrorOptions) error {
	arguments, argumentsError := BuildArguments(options)
	if argumentsError != nil {
		return argumentsError
	}
	_, executionError := engine.executor.ExecuteRsync(executionContext, execshell.CommandDetails{
		Arguments:    arguments,
		OutputWriter: options.OutputWriter,
	})
	return executionError
}

// BuildArguments renders the rsync argument list for the provided options.
// Source and target carry a trailing separator so directory contents are mirrored rather than nested.
func BuildArguments(options MirrorOptions) ([]string, error) {
	if len(strings.TrimSpace(options.Source)) == 0 {
		return nil, errSourceRequired
	}
	if len(strings.TrimSpace(options.Target)) == 0 {
		return nil, errTargetRequired
	}

	exclusions := options.Exclusions
	if exclusions == nil {
		exclusions = DefaultExclusions
	}

	arguments := []string{
		rsyncArchiveFlagConstant,
		rsyncRecursiveFlagConstant,
		rsyncItemizeChangesFlagConstant,
		rsyncVerboseFlagConstant,
	}
	for _, exclusion := range exclusions {
		trimmedExclusion := strings.TrimSpace(exclusion)
		if len(trimmedExclusion) == 0 {
			continue
		}
		arguments = append(arguments, rsyncExcludeFlagPrefixConstant+trimmedExclusion)
	}
	if options.AllowDelete {
		arguments = append(arguments, rsyncDeleteFlagConstant)
	}
	if options.DryRun {
		arguments = append(arguments, rsyncDryRunFlagConstant)
	}

	return append(arguments, withTrailingSeparator(options.Source), withTrailingSeparator(options.Target)), nil
}

func withTrailingSeparator(directory string) string {
	cleanedDirectory := filepath.Clean(directory)
	if strings.HasSuffix(cleanedDirectory, trailingSeparatorConstant) {
		return cleanedDirectory
	}
	return cleanedDirectory + trailingSeparatorConstant
}
