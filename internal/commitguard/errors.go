package commitguard

import (
	"errors"
	"fmt"
	"strings"
)

const (
	messageRequiredMessageConstant          = "commit message must not be empty"
	pathsRequiredMessageConstant            = "at least one path is required"
	repositoryEngineMissingMessageConstant  = "repository engine not configured"
	fileSystemMissingMessageConstant        = "file system not configured"
	missingPathsHeadingConstant             = "the following paths do not exist or are not tracked:"
	pristinePathsHeadingConstant            = "the following paths have no pending changes:"
	pathListingLineTemplateConstant         = "\n  %s"
	unknownPathStateHeadingTemplateConstant = "the following paths are %s:"
)

// ErrMessageRequired indicates that the commit message was empty after trimming.
var ErrMessageRequired = errors.New(messageRequiredMessageConstant)

// ErrPathsRequired indicates that no paths were requested.
var ErrPathsRequired = errors.New(pathsRequiredMessageConstant)

var (
	errRepositoryEngineMissing = errors.New(repositoryEngineMissingMessageConstant)
	errFileSystemMissing       = errors.New(fileSystemMissingMessageConstant)
)

// PathState classifies a requested path before committing.
type PathState string

// Recognized path states.
const (
	PathStateMissing  PathState = PathState("missing")
	PathStatePristine PathState = PathState("pristine")
	PathStateEligible PathState = PathState("eligible")
)

// PathValidationError lists every path that blocked the commit, in request order.
type PathValidationError struct {
	State PathState
	Paths []string
}

// Error renders a heading followed by one indented line per offending path.
func (validationError PathValidationError) Error() string {
	var builder strings.Builder
	switch validationError.State {
	case PathStateMissing:
		builder.WriteString(missingPathsHeadingConstant)
	case PathStatePristine:
		builder.WriteString(pristinePathsHeadingConstant)
	default:
		builder.WriteString(fmt.Sprintf(unknownPathStateHeadingTemplateConstant, validationError.State))
	}
	for _, path := range validationError.Paths {
		builder.WriteString(fmt.Sprintf(pathListingLineTemplateConstant, path))
	}
	return builder.String()
}
