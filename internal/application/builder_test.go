package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/appack/internal/application"
	"github.com/temirov/appack/internal/execshell"
)

const (
	testOutputDirectoryConstant  = "/workspace/target"
	testRegistryEndpointConstant = "http://localhost:4873"
)

type fakeCommandExecutor struct {
	recordedDetails []execshell.CommandDetails
	failures        []error
}

func (executor *fakeCommandExecutor) ExecuteYarn(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	invocationIndex := len(executor.recordedDetails) - 1
	if invocationIndex < len(executor.failures) && executor.failures[invocationIndex] != nil {
		return execshell.ExecutionResult{ExitCode: 1}, executor.failures[invocationIndex]
	}
	return execshell.ExecutionResult{}, nil
}

func TestBuildRunsInstallAgainstRegistry(testInstance *testing.T) {
	commandExecutor := &fakeCommandExecutor{}
	builder := application.NewBuilder(zap.NewNop(), commandExecutor)

	require.NoError(testInstance, builder.Build(context.Background(), testOutputDirectoryConstant, testRegistryEndpointConstant, true))

	require.Len(testInstance, commandExecutor.recordedDetails, 1)
	installDetails := commandExecutor.recordedDetails[0]
	require.Equal(testInstance, []string{"install", "--registry", testRegistryEndpointConstant, "--network-timeout", "600000"}, installDetails.Arguments)
	require.Equal(testInstance, testOutputDirectoryConstant, installDetails.WorkingDirectory)
	require.True(testInstance, installDetails.InheritStandardStreams)
}

func TestBuildPropagatesInstallFailure(testInstance *testing.T) {
	commandExecutor := &fakeCommandExecutor{failures: []error{errors.New("install failed")}}
	builder := application.NewBuilder(zap.NewNop(), commandExecutor)

	require.Error(testInstance, builder.Build(context.Background(), testOutputDirectoryConstant, testRegistryEndpointConstant, false))
}
