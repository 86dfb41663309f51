package dirsync

import (
	"fmt"
	"strings"

	"github.com/temirov/guardrails/internal/utils"
)

const (
	unknownModeUsageTemplateConstant    = "unknown mode %q (expected pull or push)"
	extraArgumentsUsageTemplateConstant = "unexpected arguments: %s"
	conflictingModesUsageConstant       = "pull and push are mutually exclusive"
	argumentListSeparatorConstant       = " "
)

// Mode selects the transfer direction.
type Mode string

// Recognized transfer directions.
const (
	ModePull Mode = Mode("pull")
	ModePush Mode = Mode("push")
)

// ParseInvocation resolves the transfer direction from an optional leading positional token and the
// --pull/--push flags. Without either, the direction is pull.
func ParseInvocation(positionalArguments []string, pullRequested bool, pushRequested bool) (Mode, error) {
	if pullRequested && pushRequested {
		return "", utils.NewUsageError(conflictingModesUsageConstant)
	}

	if len(positionalArguments) == 0 {
		if pushRequested {
			return ModePush, nil
		}
		return ModePull, nil
	}

	if len(positionalArguments) > 1 {
		return "", utils.NewUsageError(fmt.Sprintf(extraArgumentsUsageTemplateConstant, strings.Join(positionalArguments[1:], argumentListSeparatorConstant)))
	}

	positionalMode := Mode(positionalArguments[0])
	switch positionalMode {
	case ModePull:
		if pushRequested {
			return "", utils.NewUsageError(conflictingModesUsageConstant)
		}
	case ModePush:
		if pullRequested {
			return "", utils.NewUsageError(conflictingModesUsageConstant)
		}
	default:
		return "", utils.NewUsageError(fmt.Sprintf(unknownModeUsageTemplateConstant, positionalArguments[0]))
	}
	return positionalMode, nil
}
