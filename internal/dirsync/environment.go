package dirsync

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Recognized environment variable names.
const (
	SourceVariableNameConstant   = "DOCS_SOURCE"
	TargetVariableNameConstant   = "DOCS_TARGET"
	CategoryVariableNameConstant = "DOCS_CATEGORY"

	environmentDecodeErrorTemplateConstant = "unable to decode environment: %w"
)

// Environment is the snapshot of recognized environment overrides.
type Environment struct {
	// SourceBase is the directory holding one subdirectory per category.
	SourceBase string `mapstructure:"DOCS_SOURCE"`
	Target     string `mapstructure:"DOCS_TARGET"`
	Category   string `mapstructure:"DOCS_CATEGORY"`
}

// EnvironmentLookup reports the value of a variable and whether it is set.
type EnvironmentLookup func(name string) (string, bool)

// CaptureEnvironment snapshots the recognized variables through the lookup. Blank values are treated as unset.
func CaptureEnvironment(lookup EnvironmentLookup) (Environment, error) {
	snapshot := map[string]string{}
	if lookup != nil {
		for _, variableName := range []string{SourceVariableNameConstant, TargetVariableNameConstant, CategoryVariableNameConstant} {
			value, present := lookup(variableName)
			if !present || len(strings.TrimSpace(value)) == 0 {
				continue
			}
			snapshot[variableName] = strings.TrimSpace(value)
		}
	}
	return DecodeEnvironment(snapshot)
}

// DecodeEnvironment maps a variable snapshot onto Environment.
func DecodeEnvironment(snapshot map[string]string) (Environment, error) {
	var environment Environment
	if decodeError := mapstructure.Decode(snapshot, &environment); decodeError != nil {
		return Environment{}, fmt.Errorf(environmentDecodeErrorTemplateConstant, decodeError)
	}
	return environment, nil
}
