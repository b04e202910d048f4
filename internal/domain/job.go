package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// JobDefinition is a named, scheduled unit of work. The job type must
// match a registered handler; Config is passed to that handler verbatim.
type JobDefinition struct {
	ID string

	Name         string
	Type         string
	ScheduleSpec string
	Config       Payload

	Enabled bool

	CreatedAt time.Time
	LastRunAt *time.Time
	NextRunAt *time.Time
	RunCount  int64
}

// NewJobID derives a job's identity from its name and creation time, so
// the id is stable for a given definition and opaque to callers.
func NewJobID(name string, createdAt time.Time) string {
	sum := sha256.Sum256([]byte(name + createdAt.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}
