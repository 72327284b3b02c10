package upload

import (
	"github.com/Carmen-Shannon/oxygen-core/common"
)

// DefaultStagingBankSize is the per-frame-slot staging capacity used when
// no override is configured.
const DefaultStagingBankSize = common.SizeBytes(16 << 20) // 16 MiB

// CoordinatorBuilderOption configures the coordinator during construction.
type CoordinatorBuilderOption func(*coordinator)

// WithStagingBankSize sets the byte capacity of each frame slot's staging
// bank.
//
// Parameters:
//   - size: the bank capacity in bytes (0 keeps the default)
//
// Returns:
//   - CoordinatorBuilderOption: the option to pass to NewCoordinator
func WithStagingBankSize(size common.SizeBytes) CoordinatorBuilderOption {
	return func(c *coordinator) {
		if size > 0 {
			c.bankSize = size
		}
	}
}

// WithFramesInFlight overrides the frames-in-flight count inherited from
// the backend's reclaimer.
//
// Parameters:
//   - n: the frames-in-flight count (0 keeps the inherited value)
//
// Returns:
//   - CoordinatorBuilderOption: the option to pass to NewCoordinator
func WithFramesInFlight(n uint32) CoordinatorBuilderOption {
	return func(c *coordinator) {
		if n > 0 {
			c.framesInFlight = n
		}
	}
}
