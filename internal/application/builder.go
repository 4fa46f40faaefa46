package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/appack/internal/execshell"
)

const (
	installSubcommandConstant       = "install"
	installRegistryFlagNameConstant = "--registry"
	networkTimeoutFlagNameConstant  = "--network-timeout"
	networkTimeoutValueConstant     = "600000"
	installErrorTemplateConstant    = "unable to install dependencies in %s: %w"
)

// CommandExecutor runs yarn invocations for the builder and minifier.
type CommandExecutor interface {
	ExecuteYarn(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Builder installs the materialized application's dependencies against the
// ephemeral registry.
type Builder struct {
	logger          *zap.Logger
	commandExecutor CommandExecutor
}

// NewBuilder assembles a Builder.
func NewBuilder(logger *zap.Logger, commandExecutor CommandExecutor) *Builder {
	return &Builder{logger: logger, commandExecutor: commandExecutor}
}

// Build runs yarn install in the output directory pointed at the registry
// endpoint. The network timeout is extended to tolerate large dependency
// graphs.
func (builder *Builder) Build(executionContext context.Context, outputDirectory string, registryEndpoint string, debug bool) error {
	installDetails := execshell.CommandDetails{
		Arguments:              []string{installSubcommandConstant, installRegistryFlagNameConstant, registryEndpoint, networkTimeoutFlagNameConstant, networkTimeoutValueConstant},
		WorkingDirectory:       outputDirectory,
		InheritStandardStreams: debug,
	}
	if _, installError := builder.commandExecutor.ExecuteYarn(executionContext, installDetails); installError != nil {
		return fmt.Errorf(installErrorTemplateConstant, outputDirectory, installError)
	}
	return nil
}
