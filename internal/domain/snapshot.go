package domain

import "time"

// ObjectCounts tallies schema objects by type. The field order is the
// order count deltas appear in change summaries.
type ObjectCounts struct {
	Tables     int
	Views      int
	Procedures int
	Functions  int
}

// MonitoringSnapshot is one fingerprint-and-counts observation of a
// monitored database. Snapshots are immutable once written and pruned
// by count per (database, connection) pair.
type MonitoringSnapshot struct {
	ID int64

	Database     string
	ConnectionID string

	TakenAt     time.Time
	Fingerprint string
	Counts      ObjectCounts

	ChangeDetected bool
	Summary        string
}
