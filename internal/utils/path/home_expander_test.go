package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/guardrails/internal/utils/path"
)

const (
	testHomeDirectoryConstant           = "/home/operator"
	testExpandTildeCaseNameConstant     = "tilde_prefix"
	testExpandBareTildeCaseNameConstant = "bare_tilde"
	testExpandHomeVariableCaseConstant  = "home_variable_prefix"
	testExpandAbsoluteCaseNameConstant  = "absolute_path_unchanged"
	testExpandRelativeCaseNameConstant  = "tilde_user_form_unchanged"
	testAbbreviateNestedCaseConstant    = "nested_under_home"
	testAbbreviateHomeCaseConstant      = "home_itself"
	testAbbreviateOutsideCaseConstant   = "outside_home"
	testAbbreviateSiblingCaseConstant   = "sibling_prefix_is_not_home"
)

func newTestExpander() *pathutils.HomeExpander {
	return pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})
}

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: testExpandTildeCaseNameConstant, input: "~/docs/apple", expected: filepath.Join(testHomeDirectoryConstant, "docs", "apple")},
		{name: testExpandBareTildeCaseNameConstant, input: "~", expected: testHomeDirectoryConstant},
		{name: testExpandHomeVariableCaseConstant, input: "$HOME/docs", expected: filepath.Join(testHomeDirectoryConstant, "docs")},
		{name: testExpandAbsoluteCaseNameConstant, input: "/srv/docs", expected: "/srv/docs"},
		{name: testExpandRelativeCaseNameConstant, input: "~other/docs", expected: "~other/docs"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, newTestExpander().Expand(testCase.input))
		})
	}
}

func TestHomeExpanderAbbreviate(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: testAbbreviateNestedCaseConstant, input: "/home/operator/docs/apple", expected: "$HOME/docs/apple"},
		{name: testAbbreviateHomeCaseConstant, input: "/home/operator", expected: "$HOME"},
		{name: testAbbreviateOutsideCaseConstant, input: "/srv/docs", expected: "/srv/docs"},
		{name: testAbbreviateSiblingCaseConstant, input: "/home/operator2/docs", expected: "/home/operator2/docs"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, newTestExpander().Abbreviate(testCase.input))
		})
	}
}

func TestHomeExpanderLeavesPathsWhenHomeUnknown(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})

	require.Equal(testInstance, "~/docs", expander.Expand("~/docs"))
	require.Equal(testInstance, "/home/operator/docs", expander.Abbreviate("/home/operator/docs"))
	require.Empty(testInstance, expander.HomeDirectory())
}

func TestIsNestedPath(testInstance *testing.T) {
	require.True(testInstance, pathutils.IsNestedPath("/repo/docs", "/repo/docs/apple"))
	require.True(testInstance, pathutils.IsNestedPath("/repo/docs", "/repo/docs"))
	require.False(testInstance, pathutils.IsNestedPath("/repo/docs", "/repo/docs-old/apple"))
	require.False(testInstance, pathutils.IsNestedPath("", "/repo/docs"))
	require.True(testInstance, pathutils.IsStrictlyNestedPath("/repo/docs", "/repo/docs/apple"))
	require.False(testInstance, pathutils.IsStrictlyNestedPath("/repo/docs", "/repo/docs/"))
}
