package execshell

import (
	"errors"
	"fmt"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandFailedErrorTemplateConstant        = "%s exited with code %d"
	commandSignaledErrorTemplateConstant      = "aborted: %s terminated by a signal"
	commandExecutionErrorTemplateConstant     = "%s could not be executed: %v"
)

// ErrLoggerNotConfigured reports a ShellExecutor constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured reports a ShellExecutor constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandFailedError reports a command that completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command and its exit code.
func (failure CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailedErrorTemplateConstant, failure.Command.Name, failure.Result.ExitCode)
}

// CommandSignaledError reports a command terminated by an operating system signal.
type CommandSignaledError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the signaled command.
func (failure CommandSignaledError) Error() string {
	return fmt.Sprintf(commandSignaledErrorTemplateConstant, failure.Command.Name)
}

// CommandExecutionError reports a command that could not be launched at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the launch failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, failure.Command.Name, failure.Cause)
}

// Unwrap exposes the underlying launch error.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}
