package dirsync

import (
	"fmt"

	pathutils "github.com/temirov/guardrails/internal/utils/path"
)

const (
	safetyReasonRepositoryRootUnknownConstant     = "repository root could not be determined"
	safetyReasonTargetOutsideDocsTemplateConstant = "target is not inside %s"
)

// SafetyStatus conveys whether the target may be written without confirmation.
type SafetyStatus struct {
	RequiresConfirmation bool
	Reason               string
}

// PathResolver maps a path onto the form used for containment checks.
type PathResolver func(path string) string

// SafetyEvaluator decides whether a plan's target needs operator confirmation.
// An unknown repository root and a target outside the docs root are treated alike.
type SafetyEvaluator struct {
	// PathResolver is applied to the docs root and the target before comparing them; nil compares them as given.
	PathResolver PathResolver
}

// Evaluate reports whether the plan's target lies strictly inside the repository docs root.
func (evaluator SafetyEvaluator) Evaluate(plan Plan) SafetyStatus {
	if len(plan.RepositoryRoot) == 0 || len(plan.DocsRoot) == 0 {
		return SafetyStatus{RequiresConfirmation: true, Reason: safetyReasonRepositoryRootUnknownConstant}
	}
	docsRoot, target := plan.DocsRoot, plan.Target
	if evaluator.PathResolver != nil {
		docsRoot, target = evaluator.PathResolver(docsRoot), evaluator.PathResolver(target)
	}
	if !pathutils.IsStrictlyNestedPath(docsRoot, target) {
		return SafetyStatus{RequiresConfirmation: true, Reason: fmt.Sprintf(safetyReasonTargetOutsideDocsTemplateConstant, plan.DocsRoot)}
	}
	return SafetyStatus{}
}
