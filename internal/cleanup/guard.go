package cleanup

import (
	"sync"

	"go.uber.org/zap"
)

const (
	resourceReleasedMessageConstant      = "released resource"
	resourceReleaseFailedMessageConstant = "resource release failed"
	logFieldResourceNameConstant         = "resource_name"
)

// ReleaseFunction releases a single ephemeral resource.
type ReleaseFunction func() error

type registeredResource struct {
	name    string
	release ReleaseFunction
}

// ResourceGuard owns an ordered collection of disposable resources.
//
// Registered resources are released exactly once, in registration order,
// regardless of individual release failures. ReleaseAll is safe to invoke from
// both the pipeline's deferred teardown and an interrupt handler.
type ResourceGuard struct {
	logger      *zap.Logger
	mutex       sync.Mutex
	resources   []registeredResource
	releaseOnce sync.Once
}

// NewResourceGuard constructs a guard that reports release outcomes to the provided logger.
func NewResourceGuard(logger *zap.Logger) *ResourceGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceGuard{logger: logger}
}

// Register appends a named resource to the guard's release sequence.
func (guard *ResourceGuard) Register(resourceName string, release ReleaseFunction) {
	if release == nil {
		return
	}

	guard.mutex.Lock()
	defer guard.mutex.Unlock()
	guard.resources = append(guard.resources, registeredResource{name: resourceName, release: release})
}

// ReleaseAll invokes every registered release function exactly once in registration order.
//
// Individual failures are logged and do not prevent the remaining resources
// from being released. Subsequent invocations are no-ops.
func (guard *ResourceGuard) ReleaseAll() {
	guard.releaseOnce.Do(func() {
		guard.mutex.Lock()
		resourcesToRelease := append([]registeredResource{}, guard.resources...)
		guard.mutex.Unlock()

		for _, resource := range resourcesToRelease {
			releaseError := resource.release()
			if releaseError != nil {
				guard.logger.Warn(
					resourceReleaseFailedMessageConstant,
					zap.String(logFieldResourceNameConstant, resource.name),
					zap.Error(releaseError),
				)
				continue
			}
			guard.logger.Debug(
				resourceReleasedMessageConstant,
				zap.String(logFieldResourceNameConstant, resource.name),
			)
		}
	})
}
