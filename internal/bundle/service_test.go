package bundle_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/appack/internal/bundle"
	"github.com/temirov/appack/internal/registry"
)

const (
	testRegistryEndpointConstant     = "http://localhost:4873"
	testWorkingDirectoryConstant     = "/workspace"
	testOutputDirectoryConstant      = "../target/"
	testApplicationDirectoryConstant = "applications/browser"

	stepLaunchConstant      = "launch"
	stepProvisionConstant   = "provision"
	stepDiscoverConstant    = "discover"
	stepPublishConstant     = "publish"
	stepMaterializeConstant = "materialize"
	stepBuildConstant       = "build"
	stepMinifyConstant      = "minify"

	teardownStopConstant          = "stop_registry"
	teardownRemoveStorageConstant = "remove_storage"
	teardownRestoreConstant       = "restore_credentials"
)

type pipelineRecorder struct {
	steps    []string
	failStep string
}

func (recorder *pipelineRecorder) record(stepName string) error {
	recorder.steps = append(recorder.steps, stepName)
	if recorder.failStep == stepName {
		return errors.New(stepName + " exploded")
	}
	return nil
}

type fakeRegistryHandle struct {
	recorder *pipelineRecorder
}

func (handle fakeRegistryHandle) Endpoint() string { return testRegistryEndpointConstant }
func (handle fakeRegistryHandle) Stop() error      { return handle.recorder.record(teardownStopConstant) }
func (handle fakeRegistryHandle) RemoveStorage() error {
	return handle.recorder.record(teardownRemoveStorageConstant)
}

type fakeRegistryLauncher struct {
	recorder        *pipelineRecorder
	recordedOptions registry.LaunchOptions
}

func (launcher *fakeRegistryLauncher) Launch(_ context.Context, options registry.LaunchOptions) (bundle.RegistryHandle, error) {
	launcher.recordedOptions = options
	if recordError := launcher.recorder.record(stepLaunchConstant); recordError != nil {
		return nil, recordError
	}
	return fakeRegistryHandle{recorder: launcher.recorder}, nil
}

type fakeCredentialHandle struct {
	recorder *pipelineRecorder
}

func (handle fakeCredentialHandle) Restore() error {
	return handle.recorder.record(teardownRestoreConstant)
}

type fakeCredentialProvisioner struct {
	recorder         *pipelineRecorder
	recordedEndpoint string
}

func (provisioner *fakeCredentialProvisioner) Provision(registryEndpoint string) (bundle.CredentialHandle, error) {
	provisioner.recordedEndpoint = registryEndpoint
	if recordError := provisioner.recorder.record(stepProvisionConstant); recordError != nil {
		return nil, recordError
	}
	return fakeCredentialHandle{recorder: provisioner.recorder}, nil
}

type fakeExtensionPublisher struct {
	recorder         *pipelineRecorder
	recordedDirs     []string
	recordedEndpoint string
}

func (publisher *fakeExtensionPublisher) Publish(_ context.Context, packageDirectories []string, registryEndpoint string, _ bool) error {
	publisher.recordedDirs = packageDirectories
	publisher.recordedEndpoint = registryEndpoint
	return publisher.recorder.record(stepPublishConstant)
}

type fakeMaterializer struct {
	recorder *pipelineRecorder
}

func (materializer *fakeMaterializer) Materialize(string, string, string) error {
	return materializer.recorder.record(stepMaterializeConstant)
}

type fakeBuilder struct {
	recorder *pipelineRecorder
}

func (builder *fakeBuilder) Build(context.Context, string, string, bool) error {
	return builder.recorder.record(stepBuildConstant)
}

type fakeMinifier struct {
	recorder *pipelineRecorder
}

func (minifier *fakeMinifier) Minify(context.Context, string, bool) error {
	return minifier.recorder.record(stepMinifyConstant)
}

func buildServiceFixture(recorder *pipelineRecorder, outputBuffer *bytes.Buffer) *bundle.Service {
	return bundle.NewService(bundle.ServiceDependencies{
		Logger:                zap.NewNop(),
		RegistryLauncher:      &fakeRegistryLauncher{recorder: recorder},
		CredentialProvisioner: &fakeCredentialProvisioner{recorder: recorder},
		DiscoverExtensions: func([]string, []string) ([]string, error) {
			if recordError := recorder.record(stepDiscoverConstant); recordError != nil {
				return nil, recordError
			}
			return []string{"/workspace/theia-extensions/core"}, nil
		},
		ExtensionPublisher: &fakeExtensionPublisher{recorder: recorder},
		Materializer:       &fakeMaterializer{recorder: recorder},
		Builder:            &fakeBuilder{recorder: recorder},
		Minifier:           &fakeMinifier{recorder: recorder},
		OutputWriter:       outputBuffer,
		WorkingDirectory:   testWorkingDirectoryConstant,
	})
}

func testConfiguration() bundle.Configuration {
	configuration := bundle.DefaultConfiguration()
	configuration.OutputPath = testOutputDirectoryConstant
	configuration.ApplicationPath = testApplicationDirectoryConstant
	return configuration
}

func TestServiceRunsStepsInOrderAndReleasesResources(testInstance *testing.T) {
	recorder := &pipelineRecorder{}
	outputBuffer := &bytes.Buffer{}
	service := buildServiceFixture(recorder, outputBuffer)

	require.NoError(testInstance, service.Run(context.Background(), testConfiguration()))

	require.Equal(testInstance, []string{
		stepLaunchConstant,
		stepProvisionConstant,
		stepDiscoverConstant,
		stepPublishConstant,
		stepMaterializeConstant,
		stepBuildConstant,
		stepMinifyConstant,
		teardownStopConstant,
		teardownRemoveStorageConstant,
		teardownRestoreConstant,
	}, recorder.steps)
	require.Contains(testInstance, outputBuffer.String(), "yarn --cwd "+testOutputDirectoryConstant+" start")
}

func TestServiceReleasesRegisteredResourcesOnStepFailure(testInstance *testing.T) {
	testCases := []struct {
		name              string
		failStep          string
		expectedTeardowns []string
	}{
		{
			name:              "launch_failure_releases_nothing",
			failStep:          stepLaunchConstant,
			expectedTeardowns: nil,
		},
		{
			name:              "provision_failure_releases_registry",
			failStep:          stepProvisionConstant,
			expectedTeardowns: []string{teardownStopConstant, teardownRemoveStorageConstant},
		},
		{
			name:              "discovery_failure_releases_all",
			failStep:          stepDiscoverConstant,
			expectedTeardowns: []string{teardownStopConstant, teardownRemoveStorageConstant, teardownRestoreConstant},
		},
		{
			name:              "publish_failure_releases_all",
			failStep:          stepPublishConstant,
			expectedTeardowns: []string{teardownStopConstant, teardownRemoveStorageConstant, teardownRestoreConstant},
		},
		{
			name:              "materialize_failure_releases_all",
			failStep:          stepMaterializeConstant,
			expectedTeardowns: []string{teardownStopConstant, teardownRemoveStorageConstant, teardownRestoreConstant},
		},
		{
			name:              "build_failure_releases_all",
			failStep:          stepBuildConstant,
			expectedTeardowns: []string{teardownStopConstant, teardownRemoveStorageConstant, teardownRestoreConstant},
		},
		{
			name:              "minify_failure_releases_all",
			failStep:          stepMinifyConstant,
			expectedTeardowns: []string{teardownStopConstant, teardownRemoveStorageConstant, teardownRestoreConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recorder := &pipelineRecorder{failStep: testCase.failStep}
			outputBuffer := &bytes.Buffer{}
			service := buildServiceFixture(recorder, outputBuffer)

			require.Error(testInstance, service.Run(context.Background(), testConfiguration()))

			teardownSteps := recorder.steps[indexOfStep(recorder.steps, testCase.failStep)+1:]
			require.Equal(testInstance, testCase.expectedTeardowns, normalizeEmpty(teardownSteps))
			require.Empty(testInstance, outputBuffer.String())
		})
	}
}

func TestServicePassesConfigurationToLauncherAndPublisher(testInstance *testing.T) {
	recorder := &pipelineRecorder{}
	launcher := &fakeRegistryLauncher{recorder: recorder}
	provisioner := &fakeCredentialProvisioner{recorder: recorder}
	publisher := &fakeExtensionPublisher{recorder: recorder}

	service := bundle.NewService(bundle.ServiceDependencies{
		Logger:                zap.NewNop(),
		RegistryLauncher:      launcher,
		CredentialProvisioner: provisioner,
		DiscoverExtensions: func(includePatterns []string, excludePatterns []string) ([]string, error) {
			return []string{"/workspace/theia-extensions/core"}, nil
		},
		ExtensionPublisher: publisher,
		Materializer:       &fakeMaterializer{recorder: recorder},
		Builder:            &fakeBuilder{recorder: recorder},
		Minifier:           &fakeMinifier{recorder: recorder},
		WorkingDirectory:   testWorkingDirectoryConstant,
	})

	configuration := testConfiguration()
	configuration.RegistryPort = 4873
	configuration.RegistryStoragePath = "verdaccio-storage"
	require.NoError(testInstance, service.Run(context.Background(), configuration))

	require.Equal(testInstance, configuration.RegistryConfigurationPath, launcher.recordedOptions.ConfigurationPath)
	require.Equal(testInstance, configuration.RegistryPort, launcher.recordedOptions.PortNumber)
	require.Equal(testInstance, configuration.RegistryStoragePath, launcher.recordedOptions.StoragePath)
	require.Equal(testInstance, testRegistryEndpointConstant, provisioner.recordedEndpoint)
	require.Equal(testInstance, testRegistryEndpointConstant, publisher.recordedEndpoint)
	require.Equal(testInstance, []string{"/workspace/theia-extensions/core"}, publisher.recordedDirs)
}

func indexOfStep(steps []string, target string) int {
	for stepIndex, stepName := range steps {
		if stepName == target {
			return stepIndex
		}
	}
	return -1
}

func normalizeEmpty(steps []string) []string {
	if len(steps) == 0 {
		return nil
	}
	return steps
}
