package clean

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/appack/internal/bundle"
	"github.com/temirov/appack/internal/registry"
)

const (
	commandUseConstant              = "clean"
	commandShortDescriptionConstant = "Remove leftover packaging artifacts"
	commandLongDescriptionConstant  = "clean deletes the packaged output directory, the verdaccio storage directory, and the temporary npm credential file when a previous run left them behind."

	workingDirectoryErrorTemplateConstant = "unable to determine working directory: %w"
	removalErrorTemplateConstant          = "unable to remove %s: %w"
	credentialReadErrorTemplateConstant   = "unable to inspect credential file %s: %w"

	removedArtifactMessageConstant    = "Removed artifact"
	retainedCredentialMessageConstant = "Credential file not written by this tool, leaving in place"
	artifactPathFieldNameConstant     = "path"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the clean Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() bundle.Configuration
	WorkingDirectory      string
}

// Build constructs the clean command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(*cobra.Command, []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	for _, artifactPath := range []string{configuration.OutputPath, configuration.RegistryStoragePath} {
		if removeError := os.RemoveAll(artifactPath); removeError != nil {
			return fmt.Errorf(removalErrorTemplateConstant, artifactPath, removeError)
		}
		logger.Info(removedArtifactMessageConstant, zap.String(artifactPathFieldNameConstant, artifactPath))
	}

	return builder.removeManagedCredentialFile(logger, workingDirectory)
}

// removeManagedCredentialFile deletes the credential file only when its
// content carries the auth token this tool writes; user-owned files stay.
func (builder *CommandBuilder) removeManagedCredentialFile(logger *zap.Logger, workingDirectory string) error {
	credentialFilePath := filepath.Join(workingDirectory, registry.CredentialFileName)

	credentialContent, readError := os.ReadFile(credentialFilePath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return nil
		}
		return fmt.Errorf(credentialReadErrorTemplateConstant, credentialFilePath, readError)
	}

	if !registry.IsManagedCredentialContent(credentialContent) {
		logger.Info(retainedCredentialMessageConstant, zap.String(artifactPathFieldNameConstant, credentialFilePath))
		return nil
	}

	if removeError := os.Remove(credentialFilePath); removeError != nil {
		return fmt.Errorf(removalErrorTemplateConstant, credentialFilePath, removeError)
	}
	logger.Info(removedArtifactMessageConstant, zap.String(artifactPathFieldNameConstant, credentialFilePath))
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() bundle.Configuration {
	if builder.ConfigurationProvider == nil {
		return bundle.DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider != nil {
		if logger := builder.LoggerProvider(); logger != nil {
			return logger
		}
	}
	return zap.NewNop()
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
