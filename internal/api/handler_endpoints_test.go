package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/schemadoc/schemadoc/internal/domain"
	"github.com/schemadoc/schemadoc/internal/scheduler"
)

// mockHandlerStore implements api.Store for handler tests.
type mockHandlerStore struct {
	mu sync.Mutex

	listJobsFn       func(ctx context.Context) ([]domain.JobDefinition, error)
	getJobFn         func(ctx context.Context, id string) (domain.JobDefinition, error)
	listExecutionsFn func(ctx context.Context, jobID string, limit int) ([]domain.ExecutionRecord, error)
	listSnapshotsFn  func(ctx context.Context, database, connectionID string, limit int) ([]domain.MonitoringSnapshot, error)
}

func (s *mockHandlerStore) ListJobs(ctx context.Context) ([]domain.JobDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listJobsFn != nil {
		return s.listJobsFn(ctx)
	}
	return nil, nil
}

func (s *mockHandlerStore) GetJob(ctx context.Context, id string) (domain.JobDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getJobFn != nil {
		return s.getJobFn(ctx, id)
	}
	return domain.JobDefinition{ID: id, Name: "stub"}, nil
}

func (s *mockHandlerStore) ListExecutions(ctx context.Context, jobID string, limit int) ([]domain.ExecutionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listExecutionsFn != nil {
		return s.listExecutionsFn(ctx, jobID, limit)
	}
	return nil, nil
}

func (s *mockHandlerStore) ListSnapshots(ctx context.Context, database, connectionID string, limit int) ([]domain.MonitoringSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listSnapshotsFn != nil {
		return s.listSnapshotsFn(ctx, database, connectionID, limit)
	}
	return nil, nil
}

// mockScheduler implements api.Scheduler for handler tests. The default
// AddJob echoes the request back as a stored definition.
type mockScheduler struct {
	mu sync.Mutex

	addJobFn        func(ctx context.Context, name, typeName, scheduleSpec string, config domain.Payload) (domain.JobDefinition, error)
	removeJobFn     func(ctx context.Context, id string) error
	setJobEnabledFn func(ctx context.Context, id string, enabled bool) error

	enabledCalls map[string]bool
}

func (s *mockScheduler) AddJob(ctx context.Context, name, typeName, scheduleSpec string, config domain.Payload) (domain.JobDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addJobFn != nil {
		return s.addJobFn(ctx, name, typeName, scheduleSpec, config)
	}
	return domain.JobDefinition{
		ID:           "job-1",
		Name:         name,
		Type:         typeName,
		ScheduleSpec: scheduleSpec,
		Config:       config,
		Enabled:      true,
		CreatedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}, nil
}

func (s *mockScheduler) RemoveJob(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeJobFn != nil {
		return s.removeJobFn(ctx, id)
	}
	return nil
}

func (s *mockScheduler) SetJobEnabled(ctx context.Context, id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setJobEnabledFn != nil {
		return s.setJobEnabledFn(ctx, id, enabled)
	}
	if s.enabledCalls == nil {
		s.enabledCalls = make(map[string]bool)
	}
	s.enabledCalls[id] = enabled
	return nil
}

// mockNotifier implements api.Notifier for handler tests.
type mockNotifier struct {
	mu       sync.Mutex
	settings domain.NotificationSettings
	updates  int
}

func (n *mockNotifier) Settings() domain.NotificationSettings {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.settings
}

func (n *mockNotifier) UpdateSettings(settings domain.NotificationSettings) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settings = settings
	n.updates++
}

// mockSettingsStore implements api.SettingsStore for handler tests.
type mockSettingsStore struct {
	mu      sync.Mutex
	saveErr error
	saved   []domain.NotificationSettings
}

func (s *mockSettingsStore) SaveNotifications(n domain.NotificationSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, n)
	return nil
}

// mockHealthChecker implements HealthChecker for handler tests.
type mockHealthChecker struct {
	mu     sync.Mutex
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func newTestHandler(store *mockHandlerStore, sched *mockScheduler) *Handler {
	return NewHandler(store, sched)
}

// --- CreateJob Tests ---

func TestHandler_CreateJob_Success(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	body := `{
		"name": "nightly-docs",
		"type": "schema_documentation",
		"schedule": "02:30",
		"config": {"database": "Sales"}
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp JobResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Name != "nightly-docs" {
		t.Errorf("Name = %q, want nightly-docs", resp.Name)
	}
	if resp.Type != "schema_documentation" {
		t.Errorf("Type = %q, want schema_documentation", resp.Type)
	}
	if resp.Schedule != "02:30" {
		t.Errorf("Schedule = %q, want 02:30", resp.Schedule)
	}
	if !resp.Enabled {
		t.Error("Enabled should be true")
	}
	if resp.ID == "" {
		t.Error("ID should not be empty")
	}
	if !strings.Contains(string(resp.Config), "Sales") {
		t.Errorf("Config should carry the request payload, got %s", resp.Config)
	}
}

func TestHandler_CreateJob_MissingName(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	body := `{"type": "schema_documentation", "schedule": "daily"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.Contains(resp.Error, "name") {
		t.Errorf("error should mention name: %q", resp.Error)
	}
}

func TestHandler_CreateJob_InvalidSchedule(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	body := `{"name": "j", "type": "schema_documentation", "schedule": "sometimes"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.Contains(resp.Error, "invalid schedule") {
		t.Errorf("error should mention invalid schedule: %q", resp.Error)
	}
}

func TestHandler_CreateJob_UnknownTypeIsBadRequest(t *testing.T) {
	sched := &mockScheduler{
		addJobFn: func(ctx context.Context, name, typeName, scheduleSpec string, config domain.Payload) (domain.JobDefinition, error) {
			return domain.JobDefinition{}, fmt.Errorf("%w: no handler registered for job type %q", scheduler.ErrInvalidJob, typeName)
		},
	}
	handler := newTestHandler(&mockHandlerStore{}, sched)

	body := `{"name": "j", "type": "nope", "schedule": "daily"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandler_CreateJob_InvalidJSON(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader("{invalid"))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandler_CreateJob_SchedulerError(t *testing.T) {
	sched := &mockScheduler{
		addJobFn: func(ctx context.Context, name, typeName, scheduleSpec string, config domain.Payload) (domain.JobDefinition, error) {
			return domain.JobDefinition{}, errors.New("database error")
		},
	}
	handler := newTestHandler(&mockHandlerStore{}, sched)

	body := `{"name": "j", "type": "schema_documentation", "schedule": "daily"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestHandler_CreateJob_BodyTooLarge(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	largeBody := strings.Repeat("a", 1<<20+1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(largeBody))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge && w.Code != http.StatusBadRequest {
		t.Errorf("expected 413 or 400, got %d", w.Code)
	}
}

// --- ListJobs Tests ---

func TestHandler_ListJobs_Success(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	next := now.Add(time.Hour)
	store := &mockHandlerStore{
		listJobsFn: func(ctx context.Context) ([]domain.JobDefinition, error) {
			return []domain.JobDefinition{
				{
					ID:           "job-1",
					Name:         "nightly-docs",
					Type:         "schema_documentation",
					ScheduleSpec: "daily",
					Enabled:      true,
					CreatedAt:    now,
					NextRunAt:    &next,
					RunCount:     3,
				},
			}, nil
		},
	}
	handler := newTestHandler(store, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var resp ListJobsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(resp.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(resp.Jobs))
	}
	job := resp.Jobs[0]
	if job.Name != "nightly-docs" {
		t.Errorf("Name = %q, want nightly-docs", job.Name)
	}
	if job.NextRunAt != "2024-03-01T11:00:00Z" {
		t.Errorf("NextRunAt = %q, want 2024-03-01T11:00:00Z", job.NextRunAt)
	}
	if job.LastRunAt != "" {
		t.Errorf("LastRunAt should be omitted for a never-run job, got %q", job.LastRunAt)
	}
	if job.RunCount != 3 {
		t.Errorf("RunCount = %d, want 3", job.RunCount)
	}
}

func TestHandler_ListJobs_Empty(t *testing.T) {
	store := &mockHandlerStore{
		listJobsFn: func(ctx context.Context) ([]domain.JobDefinition, error) {
			return []domain.JobDefinition{}, nil
		},
	}
	handler := newTestHandler(store, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	// Verify response is empty array, not null
	if !strings.Contains(w.Body.String(), `"jobs":[]`) {
		t.Errorf("Jobs should be an empty array, got %s", w.Body.String())
	}
}

func TestHandler_ListJobs_StoreError(t *testing.T) {
	store := &mockHandlerStore{
		listJobsFn: func(ctx context.Context) ([]domain.JobDefinition, error) {
			return nil, errors.New("db error")
		},
	}
	handler := newTestHandler(store, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

// --- GetJob Tests ---

func TestHandler_GetJob_Success(t *testing.T) {
	store := &mockHandlerStore{
		getJobFn: func(ctx context.Context, id string) (domain.JobDefinition, error) {
			return domain.JobDefinition{ID: id, Name: "nightly-docs", Enabled: true}, nil
		},
	}
	handler := newTestHandler(store, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/abc123", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp JobResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.ID != "abc123" {
		t.Errorf("ID = %q, want abc123", resp.ID)
	}
}

func TestHandler_GetJob_NotFound(t *testing.T) {
	store := &mockHandlerStore{
		getJobFn: func(ctx context.Context, id string) (domain.JobDefinition, error) {
			return domain.JobDefinition{}, sql.ErrNoRows
		},
	}
	handler := newTestHandler(store, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// --- DeleteJob Tests ---

func TestHandler_DeleteJob_Success(t *testing.T) {
	var removed string
	sched := &mockScheduler{
		removeJobFn: func(ctx context.Context, id string) error {
			removed = id
			return nil
		},
	}
	handler := newTestHandler(&mockHandlerStore{}, sched)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/jobs/abc123", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if removed != "abc123" {
		t.Errorf("removed job = %q, want abc123", removed)
	}
}

func TestHandler_DeleteJob_NotFound(t *testing.T) {
	sched := &mockScheduler{
		removeJobFn: func(ctx context.Context, id string) error {
			return fmt.Errorf("delete job: %w", sql.ErrNoRows)
		},
	}
	handler := newTestHandler(&mockHandlerStore{}, sched)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/jobs/missing", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHandler_DeleteJob_SchedulerError(t *testing.T) {
	sched := &mockScheduler{
		removeJobFn: func(ctx context.Context, id string) error {
			return errors.New("db error")
		},
	}
	handler := newTestHandler(&mockHandlerStore{}, sched)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/jobs/abc123", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

// --- Enable/Disable Tests ---

func TestHandler_EnableDisableJob(t *testing.T) {
	sched := &mockScheduler{}
	handler := newTestHandler(&mockHandlerStore{}, sched)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/abc123/enable", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("enable: expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if got, ok := sched.enabledCalls["abc123"]; !ok || !got {
		t.Errorf("enable: scheduler should be called with enabled=true, got %v (called=%v)", got, ok)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/jobs/abc123/disable", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("disable: expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if got := sched.enabledCalls["abc123"]; got {
		t.Error("disable: scheduler should be called with enabled=false")
	}
}

func TestHandler_EnableJob_NotFound(t *testing.T) {
	sched := &mockScheduler{
		setJobEnabledFn: func(ctx context.Context, id string, enabled bool) error {
			return fmt.Errorf("set job enabled: %w", sql.ErrNoRows)
		},
	}
	handler := newTestHandler(&mockHandlerStore{}, sched)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/missing/enable", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// --- ListExecutions Tests ---

func TestHandler_ListExecutions_Success(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	done := now.Add(2 * time.Second)
	var gotLimit int

	store := &mockHandlerStore{
		listExecutionsFn: func(ctx context.Context, jobID string, limit int) ([]domain.ExecutionRecord, error) {
			if jobID != "abc123" {
				t.Errorf("jobID = %q, want abc123", jobID)
			}
			gotLimit = limit
			return []domain.ExecutionRecord{
				{
					ID:          1,
					JobID:       jobID,
					StartedAt:   now,
					CompletedAt: &done,
					Status:      domain.ExecutionStatusSuccess,
					Result:      domain.Payload(`{"documented_tables":42}`),
				},
			}, nil
		},
	}
	handler := newTestHandler(store, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/abc123/executions", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotLimit != DefaultLimit {
		t.Errorf("limit = %d, want default %d", gotLimit, DefaultLimit)
	}

	var resp ListExecutionsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Executions) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(resp.Executions))
	}
	exec := resp.Executions[0]
	if exec.Status != "success" {
		t.Errorf("Status = %q, want success", exec.Status)
	}
	if exec.CompletedAt != "2024-03-01T10:00:02Z" {
		t.Errorf("CompletedAt = %q, want 2024-03-01T10:00:02Z", exec.CompletedAt)
	}
}

func TestHandler_ListExecutions_JobNotFound(t *testing.T) {
	store := &mockHandlerStore{
		getJobFn: func(ctx context.Context, id string) (domain.JobDefinition, error) {
			return domain.JobDefinition{}, sql.ErrNoRows
		},
	}
	handler := newTestHandler(store, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing/executions", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHandler_ListExecutions_LimitTooLarge(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/abc123/executions?limit=501", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// --- ListSnapshots Tests ---

func TestHandler_ListSnapshots_Success(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &mockHandlerStore{
		listSnapshotsFn: func(ctx context.Context, database, connectionID string, limit int) ([]domain.MonitoringSnapshot, error) {
			if database != "Sales" || connectionID != "prod-sales" {
				t.Errorf("filters = (%q, %q), want (Sales, prod-sales)", database, connectionID)
			}
			if limit != 10 {
				t.Errorf("limit = %d, want 10", limit)
			}
			return []domain.MonitoringSnapshot{
				{
					ID:             7,
					Database:       database,
					ConnectionID:   connectionID,
					TakenAt:        now,
					Fingerprint:    "fp-1",
					Counts:         domain.ObjectCounts{Tables: 12, Views: 3},
					ChangeDetected: true,
					Summary:        "tables: +1",
				},
			}, nil
		},
	}
	handler := newTestHandler(store, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots?database=Sales&connection=prod-sales&limit=10", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ListSnapshotsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(resp.Snapshots))
	}
	snap := resp.Snapshots[0]
	if snap.Tables != 12 || !snap.ChangeDetected || snap.Summary != "tables: +1" {
		t.Errorf("snapshot mismatch: %+v", snap)
	}
}

func TestHandler_ListSnapshots_Empty(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"snapshots":[]`) {
		t.Errorf("Snapshots should be an empty array, got %s", w.Body.String())
	}
}

// --- Notification Config Tests ---

func TestHandler_GetNotificationConfig(t *testing.T) {
	notifier := &mockNotifier{
		settings: domain.NotificationSettings{
			Email: domain.EmailSettings{
				Enabled:  true,
				SMTPHost: "smtp.example.com",
				SMTPPort: 587,
				From:     "schemadoc@example.com",
				To:       []string{"dba@example.com"},
			},
		},
	}
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{}).
		WithNotifications(notifier, &mockSettingsStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/config", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp NotificationConfig
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Email.Enabled || resp.Email.SMTPHost != "smtp.example.com" {
		t.Errorf("email config mismatch: %+v", resp.Email)
	}
}

func TestHandler_NotificationConfig_NotWired(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/config", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 when notifications are not wired, got %d", w.Code)
	}
}

func TestHandler_PutNotificationConfig_PersistsAndApplies(t *testing.T) {
	notifier := &mockNotifier{}
	settings := &mockSettingsStore{}
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{}).
		WithNotifications(notifier, settings)

	body := `{
		"email": {"enabled": false},
		"webhooks": {"enabled": true, "urls": ["https://hooks.example.com/schemadoc"], "secret": "sig"}
	}`

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/config", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(settings.saved) != 1 {
		t.Fatalf("expected 1 persisted update, got %d", len(settings.saved))
	}
	if notifier.updates != 1 {
		t.Fatalf("expected 1 notifier update, got %d", notifier.updates)
	}
	if !notifier.settings.Webhooks.Enabled || len(notifier.settings.Webhooks.URLs) != 1 {
		t.Errorf("notifier settings mismatch: %+v", notifier.settings)
	}
}

func TestHandler_PutNotificationConfig_InvalidIsNotSaved(t *testing.T) {
	notifier := &mockNotifier{}
	settings := &mockSettingsStore{}
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{}).
		WithNotifications(notifier, settings)

	// Email enabled without recipients.
	body := `{"email": {"enabled": true, "smtp_host": "smtp.example.com", "smtp_port": 587, "from": "schemadoc@example.com"}}`

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/config", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if len(settings.saved) != 0 {
		t.Error("invalid config must not be persisted")
	}
	if notifier.updates != 0 {
		t.Error("invalid config must not reach the notifier")
	}
}

func TestHandler_PutNotificationConfig_SaveFailureDoesNotApply(t *testing.T) {
	notifier := &mockNotifier{}
	settings := &mockSettingsStore{saveErr: errors.New("disk full")}
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{}).
		WithNotifications(notifier, settings)

	body := `{"webhooks": {"enabled": true, "urls": ["https://hooks.example.com/a"]}}`

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/config", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
	if notifier.updates != 0 {
		t.Error("failed persist must not update the live notifier")
	}
}

// --- Health Tests ---

func TestHandler_Health_Simple(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want ok", resp.Status)
	}
}

func TestHandler_Health_Verbose_Healthy(t *testing.T) {
	db := &mockHealthChecker{}
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{}).WithHealthChecker(db)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health?verbose=true", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Components["store"] != "healthy" {
		t.Errorf("store = %q, want healthy", resp.Components["store"])
	}
}

func TestHandler_Health_Verbose_Unhealthy(t *testing.T) {
	db := &mockHealthChecker{
		pingFn: func(ctx context.Context) error {
			return errors.New("connection refused")
		},
	}
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{}).WithHealthChecker(db)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health?verbose=true", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}

	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", resp.Status)
	}
}

// --- Routing Tests ---

func TestHandler_NotFound(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHandler_OutsidePrefix(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 outside %s, got %d", Prefix, w.Code)
	}
}

func TestHandler_MethodNotAllowedFallsThrough(t *testing.T) {
	handler := newTestHandler(&mockHandlerStore{}, &mockScheduler{})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unsupported method, got %d", w.Code)
	}
}
