package frame

// loopConfig holds the tunables set by builder options.
type loopConfig struct {
	workers           int
	notificationDepth int
}

// LoopBuilderOption configures a frame loop during construction.
type LoopBuilderOption func(*loopConfig)

// WithWorkers sets the offload worker pool size.
//
// Parameters:
//   - n: the maximum concurrent workers (values < 1 keep the default)
//
// Returns:
//   - LoopBuilderOption: the option to pass to NewLoop
func WithWorkers(n int) LoopBuilderOption {
	return func(c *loopConfig) {
		if n >= 1 {
			c.workers = n
		}
	}
}

// WithNotificationDepth sets the offload result queue depth.
//
// Parameters:
//   - n: the queue capacity (values < 1 keep the default)
//
// Returns:
//   - LoopBuilderOption: the option to pass to NewLoop
func WithNotificationDepth(n int) LoopBuilderOption {
	return func(c *loopConfig) {
		if n >= 1 {
			c.notificationDepth = n
		}
	}
}
