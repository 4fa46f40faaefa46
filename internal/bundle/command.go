package bundle

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/appack/internal/application"
	"github.com/temirov/appack/internal/execshell"
	"github.com/temirov/appack/internal/extensions"
	"github.com/temirov/appack/internal/registry"
	"github.com/temirov/appack/internal/ui"
	"github.com/temirov/appack/internal/utils"
	flagutils "github.com/temirov/appack/internal/utils/flags"
)

const (
	commandUseConstant              = "package"
	commandShortDescriptionConstant = "Package the application against an ephemeral registry"
	commandLongDescriptionConstant  = "package publishes workspace extension packages to a temporary verdaccio registry, copies the application skeleton into the output directory, installs dependencies against the registry, and prunes non-essential files from the result."

	applicationFlagNameConstant      = "app"
	applicationFlagShorthandConstant = "a"
	applicationFlagUsageConstant     = "Application package to build"

	outputFlagNameConstant      = "output"
	outputFlagShorthandConstant = "o"
	outputFlagUsageConstant     = "Output directory for the packaged application"

	includeFlagNameConstant      = "includeExtensions"
	includeFlagShorthandConstant = "i"
	includeFlagUsageConstant     = "Glob patterns selecting extension packages to publish"

	excludeFlagNameConstant      = "excludeExtensions"
	excludeFlagShorthandConstant = "e"
	excludeFlagUsageConstant     = "Glob patterns excluding extension packages from publishing"

	registryConfigFlagNameConstant      = "verdaccioConfig"
	registryConfigFlagShorthandConstant = "c"
	registryConfigFlagUsageConstant     = "Verdaccio configuration file path"

	registryPortFlagNameConstant      = "verdaccioPort"
	registryPortFlagShorthandConstant = "p"
	registryPortFlagUsageConstant     = "Verdaccio listen port"

	registryStorageFlagNameConstant      = "verdaccioStorage"
	registryStorageFlagShorthandConstant = "s"
	registryStorageFlagUsageConstant     = "Verdaccio storage directory"

	debugFlagNameConstant      = "debug"
	debugFlagShorthandConstant = "d"
	debugFlagUsageConstant     = "Inherit child process output"

	workingDirectoryErrorTemplateConstant = "unable to determine working directory: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// PipelineRunner executes the packaging pipeline for a configuration.
type PipelineRunner interface {
	Run(executionContext context.Context, configuration Configuration) error
}

// ServiceProvider constructs a pipeline runner from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) PipelineRunner

// CommandBuilder assembles the package Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() Configuration
	HumanReadableLoggingProvider func() bool
	ServiceProvider              ServiceProvider
	WorkingDirectory             string

	debugFlagValue bool
}

// Build constructs the package command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	defaults := DefaultConfiguration()

	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}

	commandFlags := command.Flags()
	commandFlags.StringP(applicationFlagNameConstant, applicationFlagShorthandConstant, defaults.ApplicationPath, applicationFlagUsageConstant)
	commandFlags.StringP(outputFlagNameConstant, outputFlagShorthandConstant, defaults.OutputPath, outputFlagUsageConstant)
	commandFlags.StringSliceP(includeFlagNameConstant, includeFlagShorthandConstant, defaults.IncludePatterns, includeFlagUsageConstant)
	commandFlags.StringSliceP(excludeFlagNameConstant, excludeFlagShorthandConstant, defaults.ExcludePatterns, excludeFlagUsageConstant)
	commandFlags.StringP(registryConfigFlagNameConstant, registryConfigFlagShorthandConstant, defaults.RegistryConfigurationPath, registryConfigFlagUsageConstant)
	commandFlags.IntP(registryPortFlagNameConstant, registryPortFlagShorthandConstant, defaults.RegistryPort, registryPortFlagUsageConstant)
	commandFlags.StringP(registryStorageFlagNameConstant, registryStorageFlagShorthandConstant, defaults.RegistryStoragePath, registryStorageFlagUsageConstant)
	flagutils.AddToggleFlag(commandFlags, &builder.debugFlagValue, debugFlagNameConstant, debugFlagShorthandConstant, defaults.EnableDebugLogging, debugFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration, configurationError := builder.resolveOptions(command)
	if configurationError != nil {
		return configurationError
	}

	logger := builder.resolveLogger()

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	shellExecutor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	dependencies := ServiceDependencies{
		Logger:                logger,
		RegistryLauncher:      registryLauncherAdapter{launcher: registry.NewLauncher(logger)},
		CredentialProvisioner: credentialProvisionerAdapter{provisioner: registry.NewCredentialProvisioner(logger, workingDirectory)},
		DiscoverExtensions:    extensions.DiscoverPackageDirectories,
		ExtensionPublisher:    extensions.NewPublisher(logger, shellExecutor),
		Materializer:          application.NewMaterializer(logger),
		Builder:               application.NewBuilder(logger, shellExecutor),
		Minifier:              application.NewMinifier(logger, shellExecutor),
		OutputWriter:          utils.NewFlushingWriter(command.OutOrStdout()),
		WorkingDirectory:      workingDirectory,
	}

	pipelineRunner := builder.resolveService(dependencies)
	return pipelineRunner.Run(command.Context(), configuration)
}

func (builder *CommandBuilder) resolveOptions(command *cobra.Command) (Configuration, error) {
	configuration := builder.resolveConfiguration()

	commandFlags := command.Flags()
	if commandFlags.Changed(applicationFlagNameConstant) {
		configuration.ApplicationPath, _ = commandFlags.GetString(applicationFlagNameConstant)
	}
	if commandFlags.Changed(outputFlagNameConstant) {
		configuration.OutputPath, _ = commandFlags.GetString(outputFlagNameConstant)
	}
	if commandFlags.Changed(includeFlagNameConstant) {
		configuration.IncludePatterns, _ = commandFlags.GetStringSlice(includeFlagNameConstant)
	}
	if commandFlags.Changed(excludeFlagNameConstant) {
		configuration.ExcludePatterns, _ = commandFlags.GetStringSlice(excludeFlagNameConstant)
	}
	if commandFlags.Changed(registryConfigFlagNameConstant) {
		configuration.RegistryConfigurationPath, _ = commandFlags.GetString(registryConfigFlagNameConstant)
	}
	if commandFlags.Changed(registryPortFlagNameConstant) {
		configuration.RegistryPort, _ = commandFlags.GetInt(registryPortFlagNameConstant)
	}
	if commandFlags.Changed(registryStorageFlagNameConstant) {
		configuration.RegistryStoragePath, _ = commandFlags.GetString(registryStorageFlagNameConstant)
	}
	if commandFlags.Changed(debugFlagNameConstant) {
		configuration.EnableDebugLogging = builder.debugFlagValue
	}

	return configuration.Sanitize(), nil
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if len(builder.WorkingDirectory) > 0 {
		return builder.WorkingDirectory, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}
	return workingDirectory, nil
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (*execshell.ShellExecutor, error) {
	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if creationError != nil {
		return nil, creationError
	}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		shellExecutor.SetEventObserver(ui.NewConsoleCommandEventLogger(logger))
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) PipelineRunner {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}

type registryLauncherAdapter struct {
	launcher *registry.Launcher
}

func (adapter registryLauncherAdapter) Launch(executionContext context.Context, options registry.LaunchOptions) (RegistryHandle, error) {
	registryHandle, launchError := adapter.launcher.Launch(executionContext, options)
	if launchError != nil {
		return nil, launchError
	}
	return registryHandle, nil
}

type credentialProvisionerAdapter struct {
	provisioner *registry.CredentialProvisioner
}

func (adapter credentialProvisionerAdapter) Provision(registryEndpoint string) (CredentialHandle, error) {
	credentialHandle, provisionError := adapter.provisioner.Provision(registryEndpoint)
	if provisionError != nil {
		return nil, provisionError
	}
	return credentialHandle, nil
}
