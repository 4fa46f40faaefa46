package cleanup

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

const (
	interruptReceivedMessageConstant = "interrupt received, releasing resources"
	logFieldSignalNameConstant       = "signal_name"
	interruptExitCodeConstant        = 1
	signalChannelCapacityConstant    = 1
)

// ExitFunction terminates the process with the provided exit code.
type ExitFunction func(exitCode int)

// InterruptListener releases a ResourceGuard's resources when the process receives
// an interrupt or termination signal.
type InterruptListener struct {
	guard        *ResourceGuard
	logger       *zap.Logger
	exitFunction ExitFunction
	signals      chan os.Signal
}

// NewInterruptListener constructs a listener bound to the provided guard.
func NewInterruptListener(guard *ResourceGuard, logger *zap.Logger) *InterruptListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterruptListener{
		guard:        guard,
		logger:       logger,
		exitFunction: os.Exit,
		signals:      make(chan os.Signal, signalChannelCapacityConstant),
	}
}

// SetExitFunction replaces the process termination behavior, primarily for tests.
func (listener *InterruptListener) SetExitFunction(exitFunction ExitFunction) {
	if exitFunction == nil {
		return
	}
	listener.exitFunction = exitFunction
}

// Start subscribes to interrupt signals and returns a function that cancels the subscription.
func (listener *InterruptListener) Start() func() {
	signal.Notify(listener.signals, os.Interrupt, syscall.SIGTERM)

	completed := make(chan struct{})
	go func() {
		defer close(completed)
		receivedSignal, channelOpen := <-listener.signals
		if !channelOpen {
			return
		}
		listener.handleInterrupt(receivedSignal)
	}()

	return func() {
		signal.Stop(listener.signals)
		close(listener.signals)
		<-completed
	}
}

func (listener *InterruptListener) handleInterrupt(receivedSignal os.Signal) {
	listener.logger.Warn(
		interruptReceivedMessageConstant,
		zap.String(logFieldSignalNameConstant, receivedSignal.String()),
	)
	if listener.guard != nil {
		listener.guard.ReleaseAll()
	}
	listener.exitFunction(interruptExitCodeConstant)
}
