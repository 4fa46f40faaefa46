package bundle

import "strings"

const (
	applicationConfigurationKeyConstant     = "app"
	outputConfigurationKeyConstant          = "output"
	includePatternsConfigurationKeyConstant = "include_extensions"
	excludePatternsConfigurationKeyConstant = "exclude_extensions"
	registryConfigConfigurationKeyConstant  = "verdaccio_config"
	registryPortConfigurationKeyConstant    = "verdaccio_port"
	registryStorageConfigurationKeyConstant = "verdaccio_storage"
	debugConfigurationKeyConstant           = "debug"

	defaultApplicationPathConstant     = "applications/browser"
	defaultOutputPathConstant          = "../target/"
	defaultIncludePatternConstant      = "theia-extensions/*"
	defaultRegistryConfigPathConstant  = "configs/verdaccio.config.yaml"
	defaultRegistryPortConstant        = 4873
	defaultRegistryStoragePathConstant = "verdaccio-storage"
	configurationKeySeparatorConstant  = "."
)

// Configuration captures persisted configuration for the packaging pipeline.
type Configuration struct {
	ApplicationPath           string   `mapstructure:"app"`
	OutputPath                string   `mapstructure:"output"`
	IncludePatterns           []string `mapstructure:"include_extensions"`
	ExcludePatterns           []string `mapstructure:"exclude_extensions"`
	RegistryConfigurationPath string   `mapstructure:"verdaccio_config"`
	RegistryPort              int      `mapstructure:"verdaccio_port"`
	RegistryStoragePath       string   `mapstructure:"verdaccio_storage"`
	EnableDebugLogging        bool     `mapstructure:"debug"`
}

// DefaultConfiguration returns baseline configuration values for the packaging pipeline.
func DefaultConfiguration() Configuration {
	return Configuration{
		ApplicationPath:           defaultApplicationPathConstant,
		OutputPath:                defaultOutputPathConstant,
		IncludePatterns:           []string{defaultIncludePatternConstant},
		ExcludePatterns:           []string{},
		RegistryConfigurationPath: defaultRegistryConfigPathConstant,
		RegistryPort:              defaultRegistryPortConstant,
		RegistryStoragePath:       defaultRegistryStoragePathConstant,
		EnableDebugLogging:        false,
	}
}

// DefaultConfigurationValues produces Viper defaults for the packaging pipeline.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + applicationConfigurationKeyConstant:     defaults.ApplicationPath,
		rootKey + configurationKeySeparatorConstant + outputConfigurationKeyConstant:          defaults.OutputPath,
		rootKey + configurationKeySeparatorConstant + includePatternsConfigurationKeyConstant: defaults.IncludePatterns,
		rootKey + configurationKeySeparatorConstant + excludePatternsConfigurationKeyConstant: defaults.ExcludePatterns,
		rootKey + configurationKeySeparatorConstant + registryConfigConfigurationKeyConstant:  defaults.RegistryConfigurationPath,
		rootKey + configurationKeySeparatorConstant + registryPortConfigurationKeyConstant:    defaults.RegistryPort,
		rootKey + configurationKeySeparatorConstant + registryStorageConfigurationKeyConstant: defaults.RegistryStoragePath,
		rootKey + configurationKeySeparatorConstant + debugConfigurationKeyConstant:           defaults.EnableDebugLogging,
	}
}

// Sanitize trims configured values and backfills defaults for empty entries.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()

	sanitized := configuration
	sanitized.ApplicationPath = fallbackWhenBlank(configuration.ApplicationPath, defaults.ApplicationPath)
	sanitized.OutputPath = fallbackWhenBlank(configuration.OutputPath, defaults.OutputPath)
	sanitized.RegistryConfigurationPath = strings.TrimSpace(configuration.RegistryConfigurationPath)
	sanitized.RegistryStoragePath = fallbackWhenBlank(configuration.RegistryStoragePath, defaults.RegistryStoragePath)
	sanitized.IncludePatterns = trimPatterns(configuration.IncludePatterns)
	if len(sanitized.IncludePatterns) == 0 {
		sanitized.IncludePatterns = append([]string{}, defaults.IncludePatterns...)
	}
	sanitized.ExcludePatterns = trimPatterns(configuration.ExcludePatterns)
	if sanitized.RegistryPort <= 0 {
		sanitized.RegistryPort = defaults.RegistryPort
	}
	return sanitized
}

func fallbackWhenBlank(candidateValue string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(candidateValue)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}

func trimPatterns(patterns []string) []string {
	trimmedPatterns := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if len(trimmedPattern) == 0 {
			continue
		}
		trimmedPatterns = append(trimmedPatterns, trimmedPattern)
	}
	return trimmedPatterns
}
