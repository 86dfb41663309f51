package prompt_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/guardrails/internal/prompt"
)

const testPromptTextConstant = "Proceed anyway? [y/N] "

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("terminal closed")
}

func TestIOConfirmationPrompterConfirm(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "short_affirmative", input: "y\n", expected: true},
		{name: "long_affirmative_mixed_case", input: "  YeS \n", expected: true},
		{name: "affirmative_without_newline", input: "yes", expected: true},
		{name: "negative", input: "n\n", expected: false},
		{name: "other_word", input: "sure\n", expected: false},
		{name: "empty_input", input: "", expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputBuffer := &strings.Builder{}
			prompter := prompt.NewIOConfirmationPrompter(strings.NewReader(testCase.input), outputBuffer)

			confirmed, confirmError := prompter.Confirm(testPromptTextConstant)
			require.NoError(testInstance, confirmError)
			require.Equal(testInstance, testCase.expected, confirmed)
			require.Equal(testInstance, testPromptTextConstant, outputBuffer.String())
		})
	}
}

func TestIOConfirmationPrompterPropagatesReadErrors(testInstance *testing.T) {
	prompter := prompt.NewIOConfirmationPrompter(failingReader{}, nil)

	confirmed, confirmError := prompter.Confirm(testPromptTextConstant)
	require.Error(testInstance, confirmError)
	require.False(testInstance, confirmed)
}

func TestTerminalDetectorTreatsRegularFilesAsNonInteractive(testInstance *testing.T) {
	regularFile, createError := os.Create(filepath.Join(testInstance.TempDir(), "input.txt"))
	require.NoError(testInstance, createError)
	defer regularFile.Close()

	require.False(testInstance, prompt.NewTerminalDetector(regularFile).IsInteractive())
	require.True(testInstance, prompt.StaticDetector(true).IsInteractive())
}
