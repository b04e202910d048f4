package metrics

import (
	"log"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	// Scheduler loop
	schedulerTicksTotal    prometheus.Counter
	schedulerTickDuration  prometheus.Histogram
	jobsTriggeredTotal     prometheus.Counter
	jobsExecutedTotal      *prometheus.CounterVec
	jobDuration            prometheus.Histogram

	// Monitor loop
	monitorTicksTotal        prometheus.Counter
	monitorTickDuration      prometheus.Histogram
	monitorChecksTotal       *prometheus.CounterVec
	monitorCheckFailuresTotal *prometheus.CounterVec
	monitorCheckDuration     prometheus.Histogram

	// Notifications
	notificationsTotal   *prometheus.CounterVec
	notificationDuration prometheus.Histogram

	// Storage
	storeErrorsTotal *prometheus.CounterVec
}

// NewPrometheusSink creates a new Prometheus metrics sink.
// Metrics that fail to register keep working locally; the failure is logged.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{}
	s.initSchedulerMetrics(reg)
	s.initMonitorMetrics(reg)
	s.initNotificationMetrics(reg)
	s.initStoreMetrics(reg)
	return s
}

func (s *PrometheusSink) initSchedulerMetrics(reg prometheus.Registerer) {
	s.schedulerTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schemadoc_scheduler_ticks_total",
		Help: "Total number of scheduler ticks processed.",
	})
	s.schedulerTickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schemadoc_scheduler_tick_duration_seconds",
		Help:    "Duration of each scheduler tick in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	})
	s.jobsTriggeredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schemadoc_scheduler_jobs_triggered_total",
		Help: "Total number of due jobs triggered.",
	})
	s.jobsExecutedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schemadoc_jobs_executed_total",
		Help: "Total number of job executions by type and terminal status.",
	}, []string{"job_type", "status"})
	s.jobDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schemadoc_job_duration_seconds",
		Help:    "Job handler execution time in seconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	})

	s.register(reg, s.schedulerTicksTotal, "schemadoc_scheduler_ticks_total")
	s.register(reg, s.schedulerTickDuration, "schemadoc_scheduler_tick_duration_seconds")
	s.register(reg, s.jobsTriggeredTotal, "schemadoc_scheduler_jobs_triggered_total")
	s.register(reg, s.jobsExecutedTotal, "schemadoc_jobs_executed_total")
	s.register(reg, s.jobDuration, "schemadoc_job_duration_seconds")
}

func (s *PrometheusSink) initMonitorMetrics(reg prometheus.Registerer) {
	s.monitorTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schemadoc_monitor_ticks_total",
		Help: "Total number of monitor ticks processed.",
	})
	s.monitorTickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schemadoc_monitor_tick_duration_seconds",
		Help:    "Duration of each monitor tick in seconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	})
	s.monitorChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schemadoc_monitor_checks_total",
		Help: "Total number of completed schema checks by database and drift outcome.",
	}, []string{"database", "changed"})
	s.monitorCheckFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schemadoc_monitor_check_failures_total",
		Help: "Total number of schema checks that failed to complete.",
	}, []string{"database"})
	s.monitorCheckDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schemadoc_monitor_check_duration_seconds",
		Help:    "Duration of one database schema check in seconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60},
	})

	s.register(reg, s.monitorTicksTotal, "schemadoc_monitor_ticks_total")
	s.register(reg, s.monitorTickDuration, "schemadoc_monitor_tick_duration_seconds")
	s.register(reg, s.monitorChecksTotal, "schemadoc_monitor_checks_total")
	s.register(reg, s.monitorCheckFailuresTotal, "schemadoc_monitor_check_failures_total")
	s.register(reg, s.monitorCheckDuration, "schemadoc_monitor_check_duration_seconds")
}

func (s *PrometheusSink) initNotificationMetrics(reg prometheus.Registerer) {
	s.notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schemadoc_notifications_total",
		Help: "Total number of notification deliveries by channel and outcome.",
	}, []string{"channel", "outcome"})
	s.notificationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schemadoc_notification_duration_seconds",
		Help:    "Successful notification delivery latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	s.register(reg, s.notificationsTotal, "schemadoc_notifications_total")
	s.register(reg, s.notificationDuration, "schemadoc_notification_duration_seconds")
}

func (s *PrometheusSink) initStoreMetrics(reg prometheus.Registerer) {
	s.storeErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schemadoc_store_errors_total",
		Help: "Total number of storage-layer errors by operation.",
	}, []string{"operation"})

	s.register(reg, s.storeErrorsTotal, "schemadoc_store_errors_total")
}

// register attempts to register a collector, logging any errors without propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

func (s *PrometheusSink) SchedulerTickCompleted(duration time.Duration, jobsTriggered int) {
	s.schedulerTicksTotal.Inc()
	s.schedulerTickDuration.Observe(duration.Seconds())
	s.jobsTriggeredTotal.Add(float64(jobsTriggered))
}

func (s *PrometheusSink) JobExecuted(jobType, status string, duration time.Duration) {
	s.jobsExecutedTotal.WithLabelValues(jobType, status).Inc()
	s.jobDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) MonitorTickCompleted(duration time.Duration, databasesChecked int) {
	s.monitorTicksTotal.Inc()
	s.monitorTickDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) MonitorCheckCompleted(database string, changed bool, duration time.Duration) {
	s.monitorChecksTotal.WithLabelValues(database, strconv.FormatBool(changed)).Inc()
	s.monitorCheckDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) MonitorCheckFailed(database string) {
	s.monitorCheckFailuresTotal.WithLabelValues(database).Inc()
}

func (s *PrometheusSink) NotificationDelivered(channel string, duration time.Duration) {
	s.notificationsTotal.WithLabelValues(channel, OutcomeDelivered).Inc()
	s.notificationDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) NotificationFailed(channel string) {
	s.notificationsTotal.WithLabelValues(channel, OutcomeFailed).Inc()
}

func (s *PrometheusSink) StoreError(operation string) {
	s.storeErrorsTotal.WithLabelValues(operation).Inc()
}

// Compile-time interface assertion
var _ Sink = (*PrometheusSink)(nil)
