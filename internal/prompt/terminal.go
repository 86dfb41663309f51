package prompt

import (
	"os"

	"golang.org/x/term"
)

// InteractivityDetector reports whether the operator can answer prompts.
type InteractivityDetector interface {
	IsInteractive() bool
}

// TerminalDetector treats a terminal attached to the input file as interactive.
type TerminalDetector struct {
	input *os.File
}

// NewTerminalDetector constructs a detector for the provided input, standard input when nil.
func NewTerminalDetector(input *os.File) TerminalDetector {
	if input == nil {
		input = os.Stdin
	}
	return TerminalDetector{input: input}
}

// IsInteractive reports whether the input is attached to a terminal.
func (detector TerminalDetector) IsInteractive() bool {
	if detector.input == nil {
		return false
	}
	return term.IsTerminal(int(detector.input.Fd()))
}

// StaticDetector reports a fixed interactivity, for callers that already know the answer.
type StaticDetector bool

// IsInteractive returns the fixed value.
func (detector StaticDetector) IsInteractive() bool {
	return bool(detector)
}
