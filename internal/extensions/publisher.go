package extensions

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/appack/internal/execshell"
	"github.com/temirov/appack/internal/manifest"
)

const (
	publishSubcommandConstant         = "publish"
	registryFlagNameConstant          = "--registry"
	newVersionFlagNameConstant        = "--new-version"
	publishErrorTemplateConstant      = "unable to publish extension %s: %w"
	publishingMessageConstant         = "Publishing extension"
	extensionPathFieldNameConstant    = "path"
	extensionVersionFieldNameConstant = "version"
)

// CommandExecutor runs yarn invocations for the publisher.
type CommandExecutor interface {
	ExecuteYarn(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Publisher publishes extension packages to a registry endpoint one at a time.
type Publisher struct {
	logger          *zap.Logger
	commandExecutor CommandExecutor
}

// NewPublisher assembles a Publisher.
func NewPublisher(logger *zap.Logger, commandExecutor CommandExecutor) *Publisher {
	return &Publisher{logger: logger, commandExecutor: commandExecutor}
}

// Publish pushes every package directory to the registry endpoint using the
// version declared in its manifest. The first failing publish aborts the run.
func (publisher *Publisher) Publish(executionContext context.Context, packageDirectories []string, registryEndpoint string, debug bool) error {
	for _, packageDirectory := range packageDirectories {
		packageManifest, manifestError := manifest.LoadFromDirectory(packageDirectory)
		if manifestError != nil {
			return fmt.Errorf(publishErrorTemplateConstant, packageDirectory, manifestError)
		}

		packageVersion, versionError := packageManifest.Version()
		if versionError != nil {
			return fmt.Errorf(publishErrorTemplateConstant, packageDirectory, versionError)
		}

		publisher.logger.Info(publishingMessageConstant,
			zap.String(extensionPathFieldNameConstant, packageDirectory),
			zap.String(extensionVersionFieldNameConstant, packageVersion),
		)

		publishDetails := execshell.CommandDetails{
			Arguments:              []string{publishSubcommandConstant, registryFlagNameConstant, registryEndpoint, newVersionFlagNameConstant, packageVersion},
			WorkingDirectory:       packageDirectory,
			InheritStandardStreams: debug,
		}
		if _, publishError := publisher.commandExecutor.ExecuteYarn(executionContext, publishDetails); publishError != nil {
			return fmt.Errorf(publishErrorTemplateConstant, packageDirectory, publishError)
		}
	}
	return nil
}
