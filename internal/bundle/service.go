package bundle

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/appack/internal/cleanup"
	"github.com/temirov/appack/internal/registry"
)

const (
	registryProcessResourceNameConstant = "registry_process"
	registryStorageResourceNameConstant = "registry_storage"
	credentialFileResourceNameConstant  = "credential_file"

	registryLaunchErrorTemplateConstant      = "registry launch failed: %w"
	credentialProvisionErrorTemplateConstant = "credential provisioning failed: %w"
	extensionDiscoveryErrorTemplateConstant  = "extension discovery failed: %w"
	extensionPublishErrorTemplateConstant    = "extension publishing failed: %w"
	applicationMaterializeErrorTemplate      = "application materialization failed: %w"
	applicationBuildErrorTemplateConstant    = "application build failed: %w"
	applicationMinifyErrorTemplateConstant   = "application pruning failed: %w"
	successMessageTemplateConstant           = "Packaged application ready. Start it with: yarn --cwd %s start\n"
	discoveredExtensionsMessageConstant      = "Discovered extension packages"
	extensionCountFieldNameConstant          = "count"
	extensionPathsFieldNameConstant          = "paths"
)

// RegistryHandle exposes the release operations of a launched registry.
type RegistryHandle interface {
	Endpoint() string
	Stop() error
	RemoveStorage() error
}

// RegistryLauncher starts the ephemeral registry.
type RegistryLauncher interface {
	Launch(executionContext context.Context, options registry.LaunchOptions) (RegistryHandle, error)
}

// CredentialHandle restores the credential file to its pre-pipeline state.
type CredentialHandle interface {
	Restore() error
}

// CredentialProvisioner writes the temporary registry credential file.
type CredentialProvisioner interface {
	Provision(registryEndpoint string) (CredentialHandle, error)
}

// ExtensionDiscoverer expands include and exclude patterns into package directories.
type ExtensionDiscoverer func(includePatterns []string, excludePatterns []string) ([]string, error)

// ExtensionPublisher publishes package directories to the registry.
type ExtensionPublisher interface {
	Publish(executionContext context.Context, packageDirectories []string, registryEndpoint string, debug bool) error
}

// ApplicationMaterializer copies the application skeleton into the output directory.
type ApplicationMaterializer interface {
	Materialize(applicationDirectory string, outputDirectory string, workingDirectory string) error
}

// ApplicationBuilder installs the materialized application's dependencies.
type ApplicationBuilder interface {
	Build(executionContext context.Context, outputDirectory string, registryEndpoint string, debug bool) error
}

// ApplicationMinifier prunes non-essential files from the built application.
type ApplicationMinifier interface {
	Minify(executionContext context.Context, outputDirectory string, debug bool) error
}

// ServiceDependencies collects the collaborators driving the packaging pipeline.
type ServiceDependencies struct {
	Logger                *zap.Logger
	RegistryLauncher      RegistryLauncher
	CredentialProvisioner CredentialProvisioner
	DiscoverExtensions    ExtensionDiscoverer
	ExtensionPublisher    ExtensionPublisher
	Materializer          ApplicationMaterializer
	Builder               ApplicationBuilder
	Minifier              ApplicationMinifier
	OutputWriter          io.Writer
	WorkingDirectory      string
}

// Service sequences the packaging pipeline steps.
type Service struct {
	dependencies ServiceDependencies
}

// NewService assembles a Service from its dependencies.
func NewService(dependencies ServiceDependencies) *Service {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Service{dependencies: dependencies}
}

// Run executes the pipeline: launch registry, provision credentials, publish
// extensions, materialize the skeleton, install, and prune. Ephemeral
// resources are registered with a guard released on every exit path, and an
// interrupt listener triggers the same teardown on SIGINT or SIGTERM.
func (service *Service) Run(executionContext context.Context, configuration Configuration) error {
	resourceGuard := cleanup.NewResourceGuard(service.dependencies.Logger)
	defer resourceGuard.ReleaseAll()

	interruptListener := cleanup.NewInterruptListener(resourceGuard, service.dependencies.Logger)
	stopListening := interruptListener.Start()
	defer stopListening()

	registryHandle, launchError := service.dependencies.RegistryLauncher.Launch(executionContext, registry.LaunchOptions{
		ConfigurationPath: configuration.RegistryConfigurationPath,
		PortNumber:        configuration.RegistryPort,
		StoragePath:       configuration.RegistryStoragePath,
		Debug:             configuration.EnableDebugLogging,
	})
	if launchError != nil {
		return fmt.Errorf(registryLaunchErrorTemplateConstant, launchError)
	}
	resourceGuard.Register(registryProcessResourceNameConstant, registryHandle.Stop)
	resourceGuard.Register(registryStorageResourceNameConstant, registryHandle.RemoveStorage)

	credentialHandle, provisionError := service.dependencies.CredentialProvisioner.Provision(registryHandle.Endpoint())
	if provisionError != nil {
		return fmt.Errorf(credentialProvisionErrorTemplateConstant, provisionError)
	}
	resourceGuard.Register(credentialFileResourceNameConstant, credentialHandle.Restore)

	packageDirectories, discoveryError := service.dependencies.DiscoverExtensions(configuration.IncludePatterns, configuration.ExcludePatterns)
	if discoveryError != nil {
		return fmt.Errorf(extensionDiscoveryErrorTemplateConstant, discoveryError)
	}
	service.dependencies.Logger.Info(discoveredExtensionsMessageConstant,
		zap.Int(extensionCountFieldNameConstant, len(packageDirectories)),
		zap.Strings(extensionPathsFieldNameConstant, packageDirectories),
	)

	if publishError := service.dependencies.ExtensionPublisher.Publish(executionContext, packageDirectories, registryHandle.Endpoint(), configuration.EnableDebugLogging); publishError != nil {
		return fmt.Errorf(extensionPublishErrorTemplateConstant, publishError)
	}

	if materializeError := service.dependencies.Materializer.Materialize(configuration.ApplicationPath, configuration.OutputPath, service.dependencies.WorkingDirectory); materializeError != nil {
		return fmt.Errorf(applicationMaterializeErrorTemplate, materializeError)
	}

	if buildError := service.dependencies.Builder.Build(executionContext, configuration.OutputPath, registryHandle.Endpoint(), configuration.EnableDebugLogging); buildError != nil {
		return fmt.Errorf(applicationBuildErrorTemplateConstant, buildError)
	}

	if minifyError := service.dependencies.Minifier.Minify(executionContext, configuration.OutputPath, configuration.EnableDebugLogging); minifyError != nil {
		return fmt.Errorf(applicationMinifyErrorTemplateConstant, minifyError)
	}

	if service.dependencies.OutputWriter != nil {
		fmt.Fprintf(service.dependencies.OutputWriter, successMessageTemplateConstant, configuration.OutputPath)
	}
	return nil
}
