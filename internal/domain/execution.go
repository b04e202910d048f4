package domain

import "time"

type ExecutionStatus string

const (
	ExecutionStatusRunning ExecutionStatus = "running"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusError   ExecutionStatus = "error"
)

// ExecutionRecord is one historical run of a job. Exactly one record is
// opened per triggered execution and it reaches exactly one terminal
// status.
type ExecutionRecord struct {
	ID    int64
	JobID string

	StartedAt   time.Time
	CompletedAt *time.Time

	Status ExecutionStatus
	Result Payload
	Error  string
}
