package dirsync

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/guardrails/internal/utils"
	pathutils "github.com/temirov/guardrails/internal/utils/path"
)

const (
	defaultDocsDirectoryConstant              = "docs"
	defaultCategoryConstant                   = "apple"
	defaultSourceBaseConstant                 = "~/docs"
	currentDirectoryReferenceConstant         = "."
	parentDirectoryReferenceConstant          = ".."
	identicalDirectoriesUsageTemplateConstant = "source and target must differ (both resolve to %s)"
	emptyCategoryUsageMessageConstant         = "category must not be empty"
	nestedCategoryUsageTemplateConstant       = "category %q must be a single directory name"
	homeDirectoryUnavailableMessageConstant   = "home directory unavailable"
)

// Inputs carries the values supplied on the command line. Empty strings mean "not provided".
type Inputs struct {
	Mode        Mode
	Source      string
	Target      string
	Category    string
	AllowDelete bool
	DryRun      bool
	Force       bool
	InitOnly    bool
}

// Defaults carries the computed fallbacks used when neither a flag nor the environment provides a value.
type Defaults struct {
	// RepositoryRoot is empty when the working directory is not inside a repository.
	RepositoryRoot    string
	WorkingDirectory  string
	HomeDirectory     string
	DocsDirectory     string
	DefaultCategory   string
	DefaultSourceBase string
}

// Plan is the fully resolved description of one invocation.
type Plan struct {
	Mode           Mode
	Source         string
	Target         string
	Category       string
	AllowDelete    bool
	DryRun         bool
	Force          bool
	InitOnly       bool
	RepositoryRoot string
	// DocsRoot is the in-repository directory targets are expected to live under; empty when the root is unknown.
	DocsRoot string
}

// TransferEndpoints returns the directories copied from and to for the plan's mode.
func (plan Plan) TransferEndpoints() (string, string) {
	if plan.Mode == ModePush {
		return plan.Target, plan.Source
	}
	return plan.Source, plan.Target
}

// ResolvePlan computes the plan from flags, the environment snapshot and computed defaults.
// Each value follows the priority flag, then environment, then default.
func ResolvePlan(inputs Inputs, environment Environment, defaults Defaults) (Plan, error) {
	defaults = defaults.withFallbacks()
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		if len(defaults.HomeDirectory) == 0 {
			return "", errors.New(homeDirectoryUnavailableMessageConstant)
		}
		return defaults.HomeDirectory, nil
	})
	absolutize := func(candidatePath string) string {
		expandedPath := expander.Expand(strings.TrimSpace(candidatePath))
		if filepath.IsAbs(expandedPath) {
			return filepath.Clean(expandedPath)
		}
		return filepath.Join(defaults.WorkingDirectory, expandedPath)
	}

	mode := inputs.Mode
	if len(mode) == 0 {
		mode = ModePull
	}

	var docsRoot string
	if len(defaults.RepositoryRoot) > 0 {
		docsRoot = filepath.Join(defaults.RepositoryRoot, defaults.DocsDirectory)
	}

	var target string
	switch {
	case len(strings.TrimSpace(inputs.Target)) > 0:
		target = absolutize(inputs.Target)
	case len(strings.TrimSpace(environment.Target)) > 0:
		target = absolutize(environment.Target)
	case len(docsRoot) > 0:
		target = filepath.Join(docsRoot, defaults.DefaultCategory)
	default:
		target = filepath.Join(defaults.WorkingDirectory, defaults.DocsDirectory, defaults.DefaultCategory)
	}

	category := firstNonBlank(inputs.Category, environment.Category)
	if len(category) == 0 {
		category = filepath.Base(target)
	}
	if category == string(filepath.Separator) || category == currentDirectoryReferenceConstant {
		return Plan{}, utils.NewUsageError(emptyCategoryUsageMessageConstant)
	}
	if strings.ContainsRune(category, filepath.Separator) || category == parentDirectoryReferenceConstant {
		return Plan{}, utils.NewUsageError(fmt.Sprintf(nestedCategoryUsageTemplateConstant, category))
	}

	var source string
	if len(strings.TrimSpace(inputs.Source)) > 0 {
		source = absolutize(inputs.Source)
	} else {
		sourceBase := firstNonBlank(environment.SourceBase, defaults.DefaultSourceBase)
		source = filepath.Join(absolutize(sourceBase), category)
	}

	if source == target {
		return Plan{}, utils.NewUsageError(fmt.Sprintf(identicalDirectoriesUsageTemplateConstant, source))
	}

	return Plan{
		Mode:           mode,
		Source:         source,
		Target:         target,
		Category:       category,
		AllowDelete:    inputs.AllowDelete,
		DryRun:         inputs.DryRun,
		Force:          inputs.Force,
		InitOnly:       inputs.InitOnly,
		RepositoryRoot: defaults.RepositoryRoot,
		DocsRoot:       docsRoot,
	}, nil
}

func (defaults Defaults) withFallbacks() Defaults {
	resolved := defaults
	if len(strings.TrimSpace(resolved.DocsDirectory)) == 0 {
		resolved.DocsDirectory = defaultDocsDirectoryConstant
	}
	if len(strings.TrimSpace(resolved.DefaultCategory)) == 0 {
		resolved.DefaultCategory = defaultCategoryConstant
	}
	if len(strings.TrimSpace(resolved.DefaultSourceBase)) == 0 {
		resolved.DefaultSourceBase = defaultSourceBaseConstant
	}
	if len(strings.TrimSpace(resolved.WorkingDirectory)) == 0 {
		resolved.WorkingDirectory = currentDirectoryReferenceConstant
	}
	return resolved
}

func firstNonBlank(candidates ...string) string {
	for _, candidate := range candidates {
		if trimmedCandidate := strings.TrimSpace(candidate); len(trimmedCandidate) > 0 {
			return trimmedCandidate
		}
	}
	return ""
}
