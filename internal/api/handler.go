// Package api serves the admin HTTP surface: job management, execution
// history, monitoring snapshots and notification settings. Reads come
// straight from the store; job mutations go through the scheduler so
// the running loop stays in sync with what is persisted.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/schemadoc/schemadoc/internal/domain"
	"github.com/schemadoc/schemadoc/internal/scheduler"
)

// Prefix is the path prefix every endpoint lives under.
const Prefix = "/api/v1"

// Pagination defaults and limits for history listings.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

type Store interface {
	ListJobs(ctx context.Context) ([]domain.JobDefinition, error)
	GetJob(ctx context.Context, id string) (domain.JobDefinition, error)
	ListExecutions(ctx context.Context, jobID string, limit int) ([]domain.ExecutionRecord, error)
	ListSnapshots(ctx context.Context, database, connectionID string, limit int) ([]domain.MonitoringSnapshot, error)
}

// Scheduler is the job mutation surface. Writes never go straight to
// the store: routing them through the scheduler keeps its in-memory
// schedule consistent with the persisted definitions.
type Scheduler interface {
	AddJob(ctx context.Context, name, typeName, scheduleSpec string, config domain.Payload) (domain.JobDefinition, error)
	RemoveJob(ctx context.Context, id string) error
	SetJobEnabled(ctx context.Context, id string, enabled bool) error
}

// Notifier exposes the dispatcher's runtime notification settings.
type Notifier interface {
	Settings() domain.NotificationSettings
	UpdateSettings(settings domain.NotificationSettings)
}

// SettingsStore persists notification settings across restarts.
type SettingsStore interface {
	SaveNotifications(n domain.NotificationSettings) error
}

// HealthChecker provides database health status for the health endpoint.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	store     Store
	scheduler Scheduler
	notifier  Notifier
	settings  SettingsStore
	db        HealthChecker
}

func NewHandler(store Store, sched Scheduler) *Handler {
	return &Handler{store: store, scheduler: sched}
}

// WithNotifications wires the notification config endpoints. Updates are
// persisted through settings first, then applied to the live notifier.
func (h *Handler) WithNotifications(notifier Notifier, settings SettingsStore) *Handler {
	h.notifier = notifier
	h.settings = settings
	return h
}

// WithHealthChecker sets the database health checker for verbose health
// responses.
func (h *Handler) WithHealthChecker(db HealthChecker) *Handler {
	h.db = db
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, ok := strings.CutPrefix(r.URL.Path, Prefix)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case path == "/health" && r.Method == http.MethodGet:
		h.health(w, r)

	case path == "/jobs" && r.Method == http.MethodPost:
		h.createJob(w, r)

	case path == "/jobs" && r.Method == http.MethodGet:
		h.listJobs(w, r)

	case strings.HasSuffix(path, "/executions") && r.Method == http.MethodGet:
		h.listExecutions(w, r, path)

	case strings.HasSuffix(path, "/enable") && r.Method == http.MethodPost:
		h.setJobEnabled(w, r, path, true)

	case strings.HasSuffix(path, "/disable") && r.Method == http.MethodPost:
		h.setJobEnabled(w, r, path, false)

	case strings.HasPrefix(path, "/jobs/") && r.Method == http.MethodGet:
		h.getJob(w, r, path)

	case strings.HasPrefix(path, "/jobs/") && r.Method == http.MethodDelete:
		h.deleteJob(w, r, path)

	case path == "/snapshots" && r.Method == http.MethodGet:
		h.listSnapshots(w, r)

	case path == "/notifications/config" && r.Method == http.MethodGet:
		h.getNotificationConfig(w, r)

	case path == "/notifications/config" && r.Method == http.MethodPut:
		h.putNotificationConfig(w, r)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// HealthResponse represents the health endpoint response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	verbose := r.URL.Query().Get("verbose") == "true"

	if !verbose || h.db == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	resp := HealthResponse{
		Status:     "ok",
		Components: make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.Components["store"] = "unhealthy: " + err.Error()
	} else {
		resp.Components["store"] = "healthy"
	}

	statusCode := http.StatusOK
	if resp.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, resp)
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := validateCreateJob(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.scheduler.AddJob(r.Context(), req.Name, req.Type, req.Schedule, req.Config)
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidJob) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("api: create job error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	writeJSON(w, http.StatusCreated, jobResponseFrom(job))
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.ListJobs(r.Context())
	if err != nil {
		log.Printf("api: list jobs error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	resp := ListJobsResponse{Jobs: make([]JobResponse, len(jobs))}
	for i, job := range jobs {
		resp.Jobs[i] = jobResponseFrom(job)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request, path string) {
	id, ok := jobIDFromPath(path, "")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	job, err := h.store.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("api: get job error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	writeJSON(w, http.StatusOK, jobResponseFrom(job))
}

func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request, path string) {
	id, ok := jobIDFromPath(path, "")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := h.scheduler.RemoveJob(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("api: delete job error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete job")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setJobEnabled(w http.ResponseWriter, r *http.Request, path string, enabled bool) {
	action := "disable"
	if enabled {
		action = "enable"
	}
	id, ok := jobIDFromPath(path, action)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := h.scheduler.SetJobEnabled(r.Context(), id, enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("api: %s job error: %v", action, err)
		writeError(w, http.StatusInternalServerError, "failed to "+action+" job")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listExecutions(w http.ResponseWriter, r *http.Request, path string) {
	id, ok := jobIDFromPath(path, "executions")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// History of an unknown job is a 404, not an empty list.
	if _, err := h.store.GetJob(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("api: get job error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list executions")
		return
	}

	executions, err := h.store.ListExecutions(r.Context(), id, limit)
	if err != nil {
		log.Printf("api: list executions error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list executions")
		return
	}

	resp := ListExecutionsResponse{Executions: make([]ExecutionResponse, len(executions))}
	for i, rec := range executions {
		resp.Executions[i] = executionResponseFrom(rec)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	database := r.URL.Query().Get("database")
	connectionID := r.URL.Query().Get("connection")

	snapshots, err := h.store.ListSnapshots(r.Context(), database, connectionID, limit)
	if err != nil {
		log.Printf("api: list snapshots error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}

	resp := ListSnapshotsResponse{Snapshots: make([]SnapshotResponse, len(snapshots))}
	for i, snap := range snapshots {
		resp.Snapshots[i] = snapshotResponseFrom(snap)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getNotificationConfig(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil || h.settings == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, notificationConfigFrom(h.notifier.Settings()))
}

func (h *Handler) putNotificationConfig(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil || h.settings == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var cfg NotificationConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := validateNotificationConfig(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := cfg.toDomain()

	// Persist before applying: a rejected write must not leave the live
	// dispatcher on settings that vanish at the next restart.
	if err := h.settings.SaveNotifications(settings); err != nil {
		log.Printf("api: save notification config error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save notification config")
		return
	}
	h.notifier.UpdateSettings(settings)

	log.Printf("api: notification config updated (email=%v webhooks=%v)",
		settings.Email.Enabled, settings.Webhooks.Enabled)
	writeJSON(w, http.StatusOK, notificationConfigFrom(settings))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: json encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// jobIDFromPath extracts the id segment from /jobs/{id} paths, or from
// /jobs/{id}/{action} when action is non-empty.
func jobIDFromPath(path, action string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case action == "" && len(parts) == 2 && parts[0] == "jobs" && parts[1] != "":
		return parts[1], true
	case action != "" && len(parts) == 3 && parts[0] == "jobs" && parts[1] != "" && parts[2] == action:
		return parts[1], true
	}
	return "", false
}

// parseLimit extracts and validates the limit query parameter. Returns
// DefaultLimit if limit is absent or zero, and an error if the value is
// negative, non-numeric or exceeds MaxLimit.
func parseLimit(r *http.Request) (int, error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return DefaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, err
	}
	if limit < 0 {
		return 0, strconv.ErrRange
	}
	if limit > MaxLimit {
		return 0, &limitExceededError{max: MaxLimit}
	}
	if limit == 0 {
		return DefaultLimit, nil
	}
	return limit, nil
}

type limitExceededError struct {
	max int
}

func (e *limitExceededError) Error() string {
	return "limit exceeds maximum of " + strconv.Itoa(e.max)
}
