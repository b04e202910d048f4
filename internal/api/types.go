package api

import (
	"time"

	"github.com/schemadoc/schemadoc/internal/domain"
)

type CreateJobRequest struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Schedule string         `json:"schedule"`
	Config   domain.Payload `json:"config,omitempty"`
}

type JobResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Schedule  string         `json:"schedule"`
	Config    domain.Payload `json:"config,omitempty"`
	Enabled   bool           `json:"enabled"`
	CreatedAt string         `json:"created_at"`
	LastRunAt string         `json:"last_run_at,omitempty"`
	NextRunAt string         `json:"next_run_at,omitempty"`
	RunCount  int64          `json:"run_count"`
}

type ExecutionResponse struct {
	ID          int64          `json:"id"`
	JobID       string         `json:"job_id"`
	StartedAt   string         `json:"started_at"`
	CompletedAt string         `json:"completed_at,omitempty"`
	Status      string         `json:"status"`
	Result      domain.Payload `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type SnapshotResponse struct {
	ID             int64  `json:"id"`
	Database       string `json:"database"`
	ConnectionID   string `json:"connection_id"`
	TakenAt        string `json:"taken_at"`
	Fingerprint    string `json:"fingerprint"`
	Tables         int    `json:"tables"`
	Views          int    `json:"views"`
	Procedures     int    `json:"procedures"`
	Functions      int    `json:"functions"`
	ChangeDetected bool   `json:"change_detected"`
	Summary        string `json:"summary,omitempty"`
}

type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type ListExecutionsResponse struct {
	Executions []ExecutionResponse `json:"executions"`
}

type ListSnapshotsResponse struct {
	Snapshots []SnapshotResponse `json:"snapshots"`
}

// NotificationConfig is the wire shape of GET/PUT
// /api/v1/notifications/config. It mirrors the settings file blocks.
type NotificationConfig struct {
	Email    EmailConfig   `json:"email"`
	Webhooks WebhookConfig `json:"webhooks"`
}

type EmailConfig struct {
	Enabled  bool     `json:"enabled"`
	SMTPHost string   `json:"smtp_host"`
	SMTPPort int      `json:"smtp_port"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	From     string   `json:"from"`
	To       []string `json:"to"`
}

type WebhookConfig struct {
	Enabled bool     `json:"enabled"`
	URLs    []string `json:"urls"`
	Secret  string   `json:"secret"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (c NotificationConfig) toDomain() domain.NotificationSettings {
	return domain.NotificationSettings{
		Email: domain.EmailSettings{
			Enabled:  c.Email.Enabled,
			SMTPHost: c.Email.SMTPHost,
			SMTPPort: c.Email.SMTPPort,
			Username: c.Email.Username,
			Password: c.Email.Password,
			From:     c.Email.From,
			To:       c.Email.To,
		},
		Webhooks: domain.WebhookSettings{
			Enabled: c.Webhooks.Enabled,
			URLs:    c.Webhooks.URLs,
			Secret:  c.Webhooks.Secret,
		},
	}
}

func notificationConfigFrom(n domain.NotificationSettings) NotificationConfig {
	return NotificationConfig{
		Email: EmailConfig{
			Enabled:  n.Email.Enabled,
			SMTPHost: n.Email.SMTPHost,
			SMTPPort: n.Email.SMTPPort,
			Username: n.Email.Username,
			Password: n.Email.Password,
			From:     n.Email.From,
			To:       n.Email.To,
		},
		Webhooks: WebhookConfig{
			Enabled: n.Webhooks.Enabled,
			URLs:    n.Webhooks.URLs,
			Secret:  n.Webhooks.Secret,
		},
	}
}

func jobResponseFrom(job domain.JobDefinition) JobResponse {
	return JobResponse{
		ID:        job.ID,
		Name:      job.Name,
		Type:      job.Type,
		Schedule:  job.ScheduleSpec,
		Config:    job.Config,
		Enabled:   job.Enabled,
		CreatedAt: formatTime(job.CreatedAt),
		LastRunAt: formatTimePtr(job.LastRunAt),
		NextRunAt: formatTimePtr(job.NextRunAt),
		RunCount:  job.RunCount,
	}
}

func executionResponseFrom(rec domain.ExecutionRecord) ExecutionResponse {
	return ExecutionResponse{
		ID:          rec.ID,
		JobID:       rec.JobID,
		StartedAt:   formatTime(rec.StartedAt),
		CompletedAt: formatTimePtr(rec.CompletedAt),
		Status:      string(rec.Status),
		Result:      rec.Result,
		Error:       rec.Error,
	}
}

func snapshotResponseFrom(snap domain.MonitoringSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:             snap.ID,
		Database:       snap.Database,
		ConnectionID:   snap.ConnectionID,
		TakenAt:        formatTime(snap.TakenAt),
		Fingerprint:    snap.Fingerprint,
		Tables:         snap.Counts.Tables,
		Views:          snap.Counts.Views,
		Procedures:     snap.Counts.Procedures,
		Functions:      snap.Counts.Functions,
		ChangeDetected: snap.ChangeDetected,
		Summary:        snap.Summary,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
