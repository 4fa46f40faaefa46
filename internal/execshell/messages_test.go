package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/appack/internal/execshell"
)

func TestCommandMessageFormatterDescribesYarnSubcommands(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	testCases := []struct {
		name            string
		command         execshell.ShellCommand
		expectedStart   string
		expectedSuccess string
	}{
		{
			name: "publish",
			command: execshell.ShellCommand{
				Name: execshell.CommandYarn,
				Details: execshell.CommandDetails{
					Arguments:        []string{"publish", "--registry", "http://localhost:4873", "--new-version", "1.2.3"},
					WorkingDirectory: "/workspace/extensions/example",
				},
			},
			expectedStart:   "Publishing package from /workspace/extensions/example at version 1.2.3",
			expectedSuccess: "Published package from /workspace/extensions/example at version 1.2.3",
		},
		{
			name: "install",
			command: execshell.ShellCommand{
				Name: execshell.CommandYarn,
				Details: execshell.CommandDetails{
					Arguments:        []string{"install", "--registry", "http://localhost:4873"},
					WorkingDirectory: "/workspace/target",
				},
			},
			expectedStart:   "Installing dependencies in /workspace/target",
			expectedSuccess: "Installed dependencies in /workspace/target",
		},
		{
			name: "autoclean",
			command: execshell.ShellCommand{
				Name: execshell.CommandYarn,
				Details: execshell.CommandDetails{
					Arguments:        []string{"autoclean", "--force"},
					WorkingDirectory: "/workspace/target",
				},
			},
			expectedStart:   "Pruning non-essential files in /workspace/target",
			expectedSuccess: "Pruned non-essential files in /workspace/target",
		},
		{
			name: "generic",
			command: execshell.ShellCommand{
				Name:    execshell.CommandVerdaccio,
				Details: execshell.CommandDetails{Arguments: []string{"--listen", "4873"}},
			},
			expectedStart:   "Running verdaccio --listen 4873",
			expectedSuccess: "Completed verdaccio --listen 4873",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedStart, formatter.BuildStartedMessage(testCase.command))
			require.Equal(testInstance, testCase.expectedSuccess, formatter.BuildSuccessMessage(testCase.command))
		})
	}
}

func TestCommandMessageFormatterDescribesFailures(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	installCommand := execshell.ShellCommand{
		Name: execshell.CommandYarn,
		Details: execshell.CommandDetails{
			Arguments:        []string{"install"},
			WorkingDirectory: "/workspace/target",
		},
	}

	failureMessage := formatter.BuildFailureMessage(installCommand, execshell.ExecutionResult{ExitCode: 2, StandardError: "network unreachable"})
	require.Equal(testInstance, "Failed to install dependencies in /workspace/target (exit code 2: network unreachable)", failureMessage)

	signaledMessage := formatter.BuildSignaledMessage(installCommand)
	require.Equal(testInstance, "yarn install (in /workspace/target) was aborted by a signal", signaledMessage)
}
