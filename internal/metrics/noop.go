package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) SchedulerTickCompleted(duration time.Duration, jobsTriggered int)          {}
func (n *NoopSink) JobExecuted(jobType, status string, duration time.Duration)                {}
func (n *NoopSink) MonitorTickCompleted(duration time.Duration, databasesChecked int)         {}
func (n *NoopSink) MonitorCheckCompleted(database string, changed bool, duration time.Duration) {
}
func (n *NoopSink) MonitorCheckFailed(database string)                          {}
func (n *NoopSink) NotificationDelivered(channel string, duration time.Duration) {}
func (n *NoopSink) NotificationFailed(channel string)                           {}
func (n *NoopSink) StoreError(operation string)                                 {}
