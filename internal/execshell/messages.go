package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageSignaled
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericSignaledTemplateConstant         = "%s was aborted by a signal"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
)

const (
	yarnPublishSubcommandNameConstant   = "publish"
	yarnInstallSubcommandNameConstant   = "install"
	yarnAutocleanSubcommandNameConstant = "autoclean"
	yarnNewVersionFlagConstant          = "--new-version"
)

const (
	yarnPublishStartTemplateConstant            = "Publishing package from %s at version %s"
	yarnPublishSuccessTemplateConstant          = "Published package from %s at version %s"
	yarnPublishFailureTemplateConstant          = "Failed to publish package from %s (exit code %d%s)"
	yarnPublishExecutionFailureTemplateConstant = "Unable to publish package from %s: %s"
	yarnInstallStartTemplateConstant            = "Installing dependencies in %s"
	yarnInstallSuccessTemplateConstant          = "Installed dependencies in %s"
	yarnInstallFailureTemplateConstant          = "Failed to install dependencies in %s (exit code %d%s)"
	yarnInstallExecutionFailureTemplateConstant = "Unable to install dependencies in %s: %s"
	yarnAutocleanStartTemplateConstant          = "Pruning non-essential files in %s"
	yarnAutocleanSuccessTemplateConstant        = "Pruned non-essential files in %s"
	yarnAutocleanFailureTemplateConstant        = "Failed to prune non-essential files in %s (exit code %d%s)"
	yarnAutocleanExecutionFailureConstant       = "Unable to prune non-essential files in %s: %s"
	unknownVersionLabelConstant                 = "unknown version"
	defaultWorkingDirectoryLabelConstant        = "current directory"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildSignaledMessage formats the message describing a command terminated by a signal.
func (formatter CommandMessageFormatter) BuildSignaledMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSignaled)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if stage == messageStageSignaled {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	if command.Name == CommandYarn {
		return formatter.describeYarnMessage(command, result, failure, stage)
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeYarnMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case yarnPublishSubcommandNameConstant:
		return formatter.describeYarnPublishMessage(command, result, failure, stage)
	case yarnInstallSubcommandNameConstant:
		return formatter.describeYarnInstallMessage(command, result, failure, stage)
	case yarnAutocleanSubcommandNameConstant:
		return formatter.describeYarnAutocleanMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeYarnPublishMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	publishedVersion := formatter.extractFlagValue(command.Details.Arguments, yarnNewVersionFlagConstant)
	if len(publishedVersion) == 0 {
		publishedVersion = unknownVersionLabelConstant
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(yarnPublishStartTemplateConstant, workingDirectory, publishedVersion)
	case messageStageSuccess:
		return fmt.Sprintf(yarnPublishSuccessTemplateConstant, workingDirectory, publishedVersion)
	case messageStageFailure:
		return fmt.Sprintf(yarnPublishFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(yarnPublishExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeYarnInstallMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(yarnInstallStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(yarnInstallSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(yarnInstallFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(yarnInstallExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeYarnAutocleanMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(yarnAutocleanStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(yarnAutocleanSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(yarnAutocleanFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(yarnAutocleanExecutionFailureConstant, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageSignaled:
		return fmt.Sprintf(genericSignaledTemplateConstant, commandLabel)
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) extractFlagValue(arguments []string, flagName string) string {
	for argumentIndex, argumentValue := range arguments {
		if argumentValue != flagName {
			continue
		}
		if argumentIndex+1 < len(arguments) {
			return strings.TrimSpace(arguments[argumentIndex+1])
		}
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
