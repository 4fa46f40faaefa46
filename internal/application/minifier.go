package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/appack/internal/execshell"
)

const (
	autocleanSubcommandConstant = "autoclean"
	autocleanInitFlagConstant   = "--init"
	autocleanForceFlagConstant  = "--force"
	minifyErrorTemplateConstant = "unable to prune non-essential files in %s: %w"
)

// Minifier strips non-essential files from the installed application.
type Minifier struct {
	logger          *zap.Logger
	commandExecutor CommandExecutor
}

// NewMinifier assembles a Minifier.
func NewMinifier(logger *zap.Logger, commandExecutor CommandExecutor) *Minifier {
	return &Minifier{logger: logger, commandExecutor: commandExecutor}
}

// Minify runs yarn autoclean twice in the output directory: once to write the
// pruning configuration and once to apply it. Either failure aborts.
func (minifier *Minifier) Minify(executionContext context.Context, outputDirectory string, debug bool) error {
	autocleanStages := [][]string{
		{autocleanSubcommandConstant, autocleanInitFlagConstant},
		{autocleanSubcommandConstant, autocleanForceFlagConstant},
	}

	for _, stageArguments := range autocleanStages {
		stageDetails := execshell.CommandDetails{
			Arguments:              stageArguments,
			WorkingDirectory:       outputDirectory,
			InheritStandardStreams: debug,
		}
		if _, stageError := minifier.commandExecutor.ExecuteYarn(executionContext, stageDetails); stageError != nil {
			return fmt.Errorf(minifyErrorTemplateConstant, outputDirectory, stageError)
		}
	}
	return nil
}
