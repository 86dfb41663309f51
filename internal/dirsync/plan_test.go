package dirsync_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/guardrails/internal/dirsync"
	"github.com/temirov/guardrails/internal/utils"
)

const (
	testHomeDirectoryConstant    = "/home/agent"
	testRepositoryRootConstant   = "/home/agent/project"
	testWorkingDirectoryConstant = "/home/agent/project/src"
)

func newTestDefaults() dirsync.Defaults {
	return dirsync.Defaults{
		RepositoryRoot:    testRepositoryRootConstant,
		WorkingDirectory:  testWorkingDirectoryConstant,
		HomeDirectory:     testHomeDirectoryConstant,
		DocsDirectory:     "docs",
		DefaultCategory:   "apple",
		DefaultSourceBase: "~/docs",
	}
}

func TestResolvePlanPriority(testInstance *testing.T) {
	testCases := []struct {
		name             string
		inputs           dirsync.Inputs
		environment      dirsync.Environment
		defaults         dirsync.Defaults
		expectedSource   string
		expectedTarget   string
		expectedCategory string
		expectedDocsRoot string
	}{
		{
			name:             "computed_defaults",
			defaults:         newTestDefaults(),
			expectedSource:   "/home/agent/docs/apple",
			expectedTarget:   "/home/agent/project/docs/apple",
			expectedCategory: "apple",
			expectedDocsRoot: "/home/agent/project/docs",
		},
		{
			name:             "environment_overrides_defaults",
			environment:      dirsync.Environment{SourceBase: "/srv/cache", Target: "/home/agent/project/docs/swift", Category: "swiftui"},
			defaults:         newTestDefaults(),
			expectedSource:   "/srv/cache/swiftui",
			expectedTarget:   "/home/agent/project/docs/swift",
			expectedCategory: "swiftui",
			expectedDocsRoot: "/home/agent/project/docs",
		},
		{
			name:             "category_follows_environment_target",
			environment:      dirsync.Environment{Target: "/home/agent/project/docs/kotlin"},
			defaults:         newTestDefaults(),
			expectedSource:   "/home/agent/docs/kotlin",
			expectedTarget:   "/home/agent/project/docs/kotlin",
			expectedCategory: "kotlin",
			expectedDocsRoot: "/home/agent/project/docs",
		},
		{
			name:             "flags_override_environment",
			inputs:           dirsync.Inputs{Source: "~/cache/apple", Target: "../docs/local", Category: "web"},
			environment:      dirsync.Environment{SourceBase: "/srv/cache", Target: "/tmp/elsewhere", Category: "swiftui"},
			defaults:         newTestDefaults(),
			expectedSource:   "/home/agent/cache/apple",
			expectedTarget:   "/home/agent/project/docs/local",
			expectedCategory: "web",
			expectedDocsRoot: "/home/agent/project/docs",
		},
		{
			name:             "environment_source_base_with_tilde",
			environment:      dirsync.Environment{SourceBase: "~/shared"},
			defaults:         newTestDefaults(),
			expectedSource:   "/home/agent/shared/apple",
			expectedTarget:   "/home/agent/project/docs/apple",
			expectedCategory: "apple",
			expectedDocsRoot: "/home/agent/project/docs",
		},
		{
			name:   "unknown_repository_root_uses_working_directory",
			inputs: dirsync.Inputs{},
			defaults: dirsync.Defaults{
				WorkingDirectory: "/tmp/scratch",
				HomeDirectory:    testHomeDirectoryConstant,
			},
			expectedSource:   "/home/agent/docs/apple",
			expectedTarget:   "/tmp/scratch/docs/apple",
			expectedCategory: "apple",
			expectedDocsRoot: "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			plan, resolveError := dirsync.ResolvePlan(testCase.inputs, testCase.environment, testCase.defaults)
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedSource, plan.Source)
			require.Equal(testInstance, testCase.expectedTarget, plan.Target)
			require.Equal(testInstance, testCase.expectedCategory, plan.Category)
			require.Equal(testInstance, testCase.expectedDocsRoot, plan.DocsRoot)
			require.Equal(testInstance, dirsync.ModePull, plan.Mode)
		})
	}
}

func TestResolvePlanCarriesSwitches(testInstance *testing.T) {
	inputs := dirsync.Inputs{Mode: dirsync.ModePush, AllowDelete: true, DryRun: true, Force: true, InitOnly: true}
	plan, resolveError := dirsync.ResolvePlan(inputs, dirsync.Environment{}, newTestDefaults())
	require.NoError(testInstance, resolveError)

	require.Equal(testInstance, dirsync.ModePush, plan.Mode)
	require.True(testInstance, plan.AllowDelete)
	require.True(testInstance, plan.DryRun)
	require.True(testInstance, plan.Force)
	require.True(testInstance, plan.InitOnly)

	from, to := plan.TransferEndpoints()
	require.Equal(testInstance, plan.Target, from)
	require.Equal(testInstance, plan.Source, to)
}

func TestResolvePlanRejectsInvalidCombinations(testInstance *testing.T) {
	testCases := []struct {
		name   string
		inputs dirsync.Inputs
	}{
		{name: "source_equals_target", inputs: dirsync.Inputs{Source: "/tmp/a", Target: "/tmp/a/"}},
		{name: "nested_category", inputs: dirsync.Inputs{Category: "apple/swift"}},
		{name: "parent_category", inputs: dirsync.Inputs{Category: ".."}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, resolveError := dirsync.ResolvePlan(testCase.inputs, dirsync.Environment{}, newTestDefaults())
			require.Error(testInstance, resolveError)
			require.True(testInstance, utils.IsUsageError(resolveError))
		})
	}
}
