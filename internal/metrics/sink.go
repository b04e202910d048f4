package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or propagate errors.
// If the metrics backend is unavailable, implementations log warnings and continue.
type Sink interface {
	// Scheduler loop
	SchedulerTickCompleted(duration time.Duration, jobsTriggered int)
	JobExecuted(jobType, status string, duration time.Duration)

	// Monitor loop
	MonitorTickCompleted(duration time.Duration, databasesChecked int)
	MonitorCheckCompleted(database string, changed bool, duration time.Duration)
	MonitorCheckFailed(database string)

	// Notification channels
	NotificationDelivered(channel string, duration time.Duration)
	NotificationFailed(channel string)

	// Storage layer
	StoreError(operation string)
}

// Outcome constants for the notifications counter.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
)
