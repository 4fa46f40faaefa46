package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	readmeSnippetTestNameConstant    = "readme_package_configuration"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"

	expectedLogLevelConstant        = "info"
	expectedLogFormatConstant       = "structured"
	expectedApplicationPathConstant = "applications/browser"
	expectedOutputPathConstant      = "../target/"
	expectedIncludePatternConstant  = "theia-extensions/*"
	expectedRegistryConfigConstant  = "configs/verdaccio.config.yaml"
	expectedRegistryPortConstant    = 4873
	expectedRegistryStorageConstant = "verdaccio-storage"
)

type readmeApplicationConfiguration struct {
	Common readmeCommonConfiguration `yaml:"common"`
	Tools  readmeToolsConfiguration  `yaml:"tools"`
}

type readmeCommonConfiguration struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type readmeToolsConfiguration struct {
	Package readmePackageConfiguration `yaml:"package"`
}

type readmePackageConfiguration struct {
	ApplicationPath           string   `yaml:"app"`
	OutputPath                string   `yaml:"output"`
	IncludePatterns           []string `yaml:"include_extensions"`
	ExcludePatterns           []string `yaml:"exclude_extensions"`
	RegistryConfigurationPath string   `yaml:"verdaccio_config"`
	RegistryPort              int      `yaml:"verdaccio_port"`
	RegistryStoragePath       string   `yaml:"verdaccio_storage"`
	EnableDebugLogging        bool     `yaml:"debug"`
}

func TestReadmePackageConfigurationParses(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	snippetContent := strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])

	testInstance.Run(readmeSnippetTestNameConstant, func(subtest *testing.T) {
		var applicationConfiguration readmeApplicationConfiguration
		unmarshalError := yaml.Unmarshal([]byte(snippetContent), &applicationConfiguration)
		require.NoError(subtest, unmarshalError)

		require.Equal(subtest, expectedLogLevelConstant, applicationConfiguration.Common.LogLevel)
		require.Equal(subtest, expectedLogFormatConstant, applicationConfiguration.Common.LogFormat)

		packageConfiguration := applicationConfiguration.Tools.Package
		require.Equal(subtest, expectedApplicationPathConstant, packageConfiguration.ApplicationPath)
		require.Equal(subtest, expectedOutputPathConstant, packageConfiguration.OutputPath)
		require.Equal(subtest, []string{expectedIncludePatternConstant}, packageConfiguration.IncludePatterns)
		require.Empty(subtest, packageConfiguration.ExcludePatterns)
		require.Equal(subtest, expectedRegistryConfigConstant, packageConfiguration.RegistryConfigurationPath)
		require.Equal(subtest, expectedRegistryPortConstant, packageConfiguration.RegistryPort)
		require.Equal(subtest, expectedRegistryStorageConstant, packageConfiguration.RegistryStoragePath)
		require.False(subtest, packageConfiguration.EnableDebugLogging)
	})
}
