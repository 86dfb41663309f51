package dirsync

import (
	"strings"

	"github.com/temirov/guardrails/internal/transfer"
)

const (
	configurationDocsDirectoryKeyConstant     = "docs_directory"
	configurationDefaultCategoryKeyConstant   = "default_category"
	configurationDefaultSourceBaseKeyConstant = "default_source_base"
	configurationProfileKeyConstant           = "profile"
	configurationExclusionsKeyConstant        = "exclusions"
	configurationKeySeparatorConstant         = "."
)

// CommandConfiguration captures persisted configuration for dirsync.
type CommandConfiguration struct {
	DocsDirectory     string `mapstructure:"docs_directory"`
	DefaultCategory   string `mapstructure:"default_category"`
	DefaultSourceBase string `mapstructure:"default_source_base"`
	// Profile overrides the shell start-up file written by --init. Empty selects it from $SHELL.
	Profile string `mapstructure:"profile"`
	// Exclusions are appended to the built-in version-control and clutter exclusions.
	Exclusions []string `mapstructure:"exclusions"`
}

// DefaultCommandConfiguration returns baseline configuration values for dirsync.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		DocsDirectory:     defaultDocsDirectoryConstant,
		DefaultCategory:   defaultCategoryConstant,
		DefaultSourceBase: defaultSourceBaseConstant,
		Profile:           "",
		Exclusions:        nil,
	}
}

// DefaultConfigurationValues produces Viper defaults for dirsync rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationDocsDirectoryKeyConstant:     defaults.DocsDirectory,
		prefix + configurationDefaultCategoryKeyConstant:   defaults.DefaultCategory,
		prefix + configurationDefaultSourceBaseKeyConstant: defaults.DefaultSourceBase,
		prefix + configurationProfileKeyConstant:           defaults.Profile,
		prefix + configurationExclusionsKeyConstant:        []string{},
	}
}

// Sanitize trims configured values and drops empty exclusions.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.DocsDirectory = strings.TrimSpace(configuration.DocsDirectory)
	sanitized.DefaultCategory = strings.TrimSpace(configuration.DefaultCategory)
	sanitized.DefaultSourceBase = strings.TrimSpace(configuration.DefaultSourceBase)
	sanitized.Profile = strings.TrimSpace(configuration.Profile)

	sanitized.Exclusions = nil
	for _, exclusion := range configuration.Exclusions {
		trimmedExclusion := strings.TrimSpace(exclusion)
		if len(trimmedExclusion) == 0 {
			continue
		}
		sanitized.Exclusions = append(sanitized.Exclusions, trimmedExclusion)
	}
	return sanitized
}

// TransferExclusions returns the built-in exclusions followed by the configured ones.
func (configuration CommandConfiguration) TransferExclusions() []string {
	exclusions := append([]string{}, transfer.DefaultExclusions...)
	return append(exclusions, configuration.Sanitize().Exclusions...)
}
