package cli

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	embeddedConfigurationParseErrorTemplateConstant = "embedded default configuration is invalid: %w"
	configurationFileReadErrorTemplateConstant      = "unable to read configuration file %s: %w"
	configurationFileParseErrorTemplateConstant     = "configuration file %s is invalid: %w"
	yamlExtensionConstant                           = ".yaml"
	ymlExtensionConstant                            = ".yml"
)

//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns the embedded default configuration data and type identifier.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	duplicatedContent := make([]byte, len(embeddedDefaultConfigurationContent))
	copy(duplicatedContent, embeddedDefaultConfigurationContent)
	return duplicatedContent, configurationTypeConstant
}

// ValidateEmbeddedConfiguration decodes the embedded defaults strictly, rejecting keys the
// application does not recognize.
func ValidateEmbeddedConfiguration() (ApplicationConfiguration, error) {
	configuration, decodeError := decodeConfigurationDocument(embeddedDefaultConfigurationContent)
	if decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf(embeddedConfigurationParseErrorTemplateConstant, decodeError)
	}
	return configuration, nil
}

// validateConfigurationFile rejects unknown or mistyped keys in a YAML configuration file. Other
// formats are left to viper.
func validateConfigurationFile(configurationFilePath string) error {
	if len(configurationFilePath) == 0 {
		return nil
	}
	switch strings.ToLower(filepath.Ext(configurationFilePath)) {
	case yamlExtensionConstant, ymlExtensionConstant:
	default:
		return nil
	}

	content, readError := os.ReadFile(configurationFilePath)
	if readError != nil {
		return fmt.Errorf(configurationFileReadErrorTemplateConstant, configurationFilePath, readError)
	}
	if _, decodeError := decodeConfigurationDocument(content); decodeError != nil {
		return fmt.Errorf(configurationFileParseErrorTemplateConstant, configurationFilePath, decodeError)
	}
	return nil
}

func decodeConfigurationDocument(content []byte) (ApplicationConfiguration, error) {
	var document configurationDocument
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if decodeError := decoder.Decode(&document); decodeError != nil && !errors.Is(decodeError, io.EOF) {
		return ApplicationConfiguration{}, decodeError
	}
	return document.toApplicationConfiguration(), nil
}

type configurationDocument struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
		LogFile   string `yaml:"log_file"`
	} `yaml:"common"`
	Tools struct {
		DirSync struct {
			DocsDirectory     string   `yaml:"docs_directory"`
			DefaultCategory   string   `yaml:"default_category"`
			DefaultSourceBase string   `yaml:"default_source_base"`
			Profile           string   `yaml:"profile"`
			Exclusions        []string `yaml:"exclusions"`
		} `yaml:"dirsync"`
	} `yaml:"tools"`
}

func (document configurationDocument) toApplicationConfiguration() ApplicationConfiguration {
	var configuration ApplicationConfiguration
	configuration.Common.LogLevel = document.Common.LogLevel
	configuration.Common.LogFormat = document.Common.LogFormat
	configuration.Common.LogFile = document.Common.LogFile
	configuration.Tools.DirSync.DocsDirectory = document.Tools.DirSync.DocsDirectory
	configuration.Tools.DirSync.DefaultCategory = document.Tools.DirSync.DefaultCategory
	configuration.Tools.DirSync.DefaultSourceBase = document.Tools.DirSync.DefaultSourceBase
	configuration.Tools.DirSync.Profile = document.Tools.DirSync.Profile
	configuration.Tools.DirSync.Exclusions = document.Tools.DirSync.Exclusions
	return configuration
}
