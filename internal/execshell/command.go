package execshell

const (
	yarnCommandNameConstant      = "yarn"
	verdaccioCommandNameConstant = "verdaccio"
)

// CommandName identifies a supported executable.
type CommandName string

// Supported executables.
const (
	CommandYarn      CommandName = CommandName(yarnCommandNameConstant)
	CommandVerdaccio CommandName = CommandName(verdaccioCommandNameConstant)
)

// CommandDetails describes a single tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	// InheritStandardStreams connects the child's output streams to the
	// parent process instead of capturing them. Used by the debug flag.
	InheritStandardStreams bool
}

// ShellCommand combines a CommandName with specific invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
	// Signaled reports that the child terminated because of a signal rather
	// than exiting on its own.
	Signaled bool
}
