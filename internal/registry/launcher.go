package registry

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	registryBinaryNameConstant         = "verdaccio"
	configurationFlagNameConstant      = "--config"
	listenFlagNameConstant             = "--listen"
	storageEnvironmentVariableConstant = "VERDACCIO_STORAGE_PATH"
	environmentEntryTemplateConstant   = "%s=%s"

	readinessInitialIntervalConstant = 250 * time.Millisecond
	readinessMaxIntervalConstant     = time.Second
	readinessMaxElapsedConstant      = 30 * time.Second
	readinessDialTimeoutConstant     = time.Second

	tcpNetworkNameConstant = "tcp"

	storagePathErrorTemplateConstant   = "unable to resolve storage directory %s: %w"
	launchErrorTemplateConstant        = "unable to start registry process: %w"
	readinessErrorTemplateConstant     = "registry endpoint %s not reachable after %s: %w"
	registryStartedMessageConstant     = "Registry process started"
	registryStoppedMessageConstant     = "Registry process stopped"
	processIdentifierFieldNameConstant = "pid"
	endpointFieldNameConstant          = "endpoint"
	storageFieldNameConstant           = "storage"
)

// LaunchOptions configure a registry launch.
type LaunchOptions struct {
	ConfigurationPath string
	PortNumber        int
	StoragePath       string
	Debug             bool
}

// Handle represents a running registry process and its backing storage.
type Handle struct {
	endpoint    string
	storagePath string
	process     *exec.Cmd
	logger      *zap.Logger
}

// Endpoint returns the HTTP URL of the running registry.
func (handle *Handle) Endpoint() string {
	return handle.endpoint
}

// StoragePath returns the absolute path of the registry's storage directory.
func (handle *Handle) StoragePath() string {
	return handle.storagePath
}

// Stop kills the registry process and waits for it to exit.
func (handle *Handle) Stop() error {
	if handle.process == nil || handle.process.Process == nil {
		return nil
	}

	// The process may have exited already; a failed kill is not actionable.
	_ = handle.process.Process.Kill()
	_ = handle.process.Wait()

	handle.logger.Debug(registryStoppedMessageConstant, zap.String(endpointFieldNameConstant, handle.endpoint))
	return nil
}

// RemoveStorage recursively deletes the registry's storage directory.
func (handle *Handle) RemoveStorage() error {
	return os.RemoveAll(handle.storagePath)
}

// Launcher starts registry processes and waits for them to accept connections.
type Launcher struct {
	logger     *zap.Logger
	binaryName string
}

// NewLauncher creates a registry launcher using the verdaccio binary from PATH.
func NewLauncher(logger *zap.Logger) *Launcher {
	return &Launcher{logger: logger, binaryName: registryBinaryNameConstant}
}

// SetBinaryName overrides the registry binary. Intended for tests.
func (launcher *Launcher) SetBinaryName(binaryName string) {
	launcher.binaryName = binaryName
}

// Launch spawns the registry process and blocks until its TCP port accepts
// connections. On readiness failure the spawned process is killed and the
// storage directory removed before the error is returned.
func (launcher *Launcher) Launch(executionContext context.Context, options LaunchOptions) (*Handle, error) {
	absoluteStoragePath, storagePathError := filepath.Abs(options.StoragePath)
	if storagePathError != nil {
		return nil, fmt.Errorf(storagePathErrorTemplateConstant, options.StoragePath, storagePathError)
	}

	registryProcess := exec.CommandContext(executionContext, launcher.binaryName, buildCommandArguments(options)...)
	registryProcess.Env = append(os.Environ(), fmt.Sprintf(environmentEntryTemplateConstant, storageEnvironmentVariableConstant, absoluteStoragePath))
	if options.Debug {
		registryProcess.Stdout = os.Stdout
		registryProcess.Stderr = os.Stderr
	}

	if startError := registryProcess.Start(); startError != nil {
		return nil, fmt.Errorf(launchErrorTemplateConstant, startError)
	}

	registryHandle := &Handle{
		endpoint:    Endpoint(options.PortNumber),
		storagePath: absoluteStoragePath,
		process:     registryProcess,
		logger:      launcher.logger,
	}

	dialAddress := DialAddress(options.PortNumber)
	readinessError := waitForEndpoint(executionContext, dialAddress, readinessInitialIntervalConstant, readinessMaxIntervalConstant, readinessMaxElapsedConstant)
	if readinessError != nil {
		_ = registryHandle.Stop()
		_ = registryHandle.RemoveStorage()
		return nil, readinessError
	}

	launcher.logger.Debug(registryStartedMessageConstant,
		zap.Int(processIdentifierFieldNameConstant, registryProcess.Process.Pid),
		zap.String(endpointFieldNameConstant, registryHandle.endpoint),
		zap.String(storageFieldNameConstant, absoluteStoragePath),
	)
	return registryHandle, nil
}

func buildCommandArguments(options LaunchOptions) []string {
	commandArguments := []string{}
	if len(options.ConfigurationPath) > 0 {
		commandArguments = append(commandArguments, configurationFlagNameConstant, options.ConfigurationPath)
	}
	if options.PortNumber > 0 {
		commandArguments = append(commandArguments, listenFlagNameConstant, strconv.Itoa(options.PortNumber))
	}
	return commandArguments
}

func waitForEndpoint(executionContext context.Context, dialAddress string, initialInterval time.Duration, maxInterval time.Duration, maxElapsed time.Duration) error {
	probeEndpoint := func() error {
		connection, dialError := net.DialTimeout(tcpNetworkNameConstant, dialAddress, readinessDialTimeoutConstant)
		if dialError != nil {
			return dialError
		}
		return connection.Close()
	}

	retryPolicy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(initialInterval),
		backoff.WithMaxInterval(maxInterval),
		backoff.WithMaxElapsedTime(maxElapsed),
	)
	if retryError := backoff.Retry(probeEndpoint, backoff.WithContext(retryPolicy, executionContext)); retryError != nil {
		return fmt.Errorf(readinessErrorTemplateConstant, dialAddress, maxElapsed, retryError)
	}
	return nil
}
