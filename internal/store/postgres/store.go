package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/schemadoc/schemadoc/internal/api"
	"github.com/schemadoc/schemadoc/internal/domain"
	"github.com/schemadoc/schemadoc/internal/monitor"
	"github.com/schemadoc/schemadoc/internal/scheduler"
)

// snapshotRetention bounds the history kept per (database, connection)
// pair. InsertSnapshot prunes past it in the same transaction.
const snapshotRetention = 100

// Store implements the scheduler, monitor and API store interfaces on
// PostgreSQL, for deployments that run the daemon next to an existing
// database instead of the embedded sqlite file.
type Store struct {
	db *sqlx.DB
}

// New wraps an already-connected database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects with the given DSN and pings the server.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	return New(db), nil
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("migrate postgres store: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PingContext verifies the server is still reachable.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type jobRow struct {
	ID           string     `db:"id"`
	Name         string     `db:"name"`
	JobType      string     `db:"job_type"`
	ScheduleSpec string     `db:"schedule_spec"`
	Config       []byte     `db:"config"`
	Enabled      bool       `db:"enabled"`
	CreatedAt    time.Time  `db:"created_at"`
	LastRunAt    *time.Time `db:"last_run_at"`
	NextRunAt    *time.Time `db:"next_run_at"`
	RunCount     int64      `db:"run_count"`
}

func (r jobRow) toDomain() domain.JobDefinition {
	return domain.JobDefinition{
		ID:           r.ID,
		Name:         r.Name,
		Type:         r.JobType,
		ScheduleSpec: r.ScheduleSpec,
		Config:       domain.Payload(r.Config),
		Enabled:      r.Enabled,
		CreatedAt:    r.CreatedAt,
		LastRunAt:    r.LastRunAt,
		NextRunAt:    r.NextRunAt,
		RunCount:     r.RunCount,
	}
}

type executionRow struct {
	ID          int64      `db:"id"`
	JobID       string     `db:"job_id"`
	StartedAt   time.Time  `db:"started_at"`
	CompletedAt *time.Time `db:"completed_at"`
	Status      string     `db:"status"`
	Result      []byte     `db:"result"`
	Error       *string    `db:"error_message"`
}

func (r executionRow) toDomain() domain.ExecutionRecord {
	rec := domain.ExecutionRecord{
		ID:          r.ID,
		JobID:       r.JobID,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Status:      domain.ExecutionStatus(r.Status),
		Result:      domain.Payload(r.Result),
	}
	if r.Error != nil {
		rec.Error = *r.Error
	}
	return rec
}

type snapshotRow struct {
	ID             int64     `db:"id"`
	DatabaseName   string    `db:"database_name"`
	ConnectionID   string    `db:"connection_id"`
	TakenAt        time.Time `db:"taken_at"`
	Fingerprint    string    `db:"fingerprint"`
	TableCount     int       `db:"table_count"`
	ViewCount      int       `db:"view_count"`
	ProcedureCount int       `db:"procedure_count"`
	FunctionCount  int       `db:"function_count"`
	ChangeDetected bool      `db:"change_detected"`
	Summary        string    `db:"summary"`
}

func (r snapshotRow) toDomain() domain.MonitoringSnapshot {
	return domain.MonitoringSnapshot{
		ID:           r.ID,
		Database:     r.DatabaseName,
		ConnectionID: r.ConnectionID,
		TakenAt:      r.TakenAt,
		Fingerprint:  r.Fingerprint,
		Counts: domain.ObjectCounts{
			Tables:     r.TableCount,
			Views:      r.ViewCount,
			Procedures: r.ProcedureCount,
			Functions:  r.FunctionCount,
		},
		ChangeDetected: r.ChangeDetected,
		Summary:        r.Summary,
	}
}

func (s *Store) InsertJob(ctx context.Context, job domain.JobDefinition) error {
	_, err := s.db.ExecContext(ctx, queryInsertJob,
		job.ID, job.Name, job.Type, job.ScheduleSpec, jsonArg(job.Config),
		job.Enabled, job.CreatedAt, job.LastRunAt, job.NextRunAt, job.RunCount)
	return err
}

func (s *Store) ListJobs(ctx context.Context) ([]domain.JobDefinition, error) {
	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, queryListJobs); err != nil {
		return nil, err
	}
	jobs := make([]domain.JobDefinition, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, r.toDomain())
	}
	return jobs, nil
}

func (s *Store) ListEnabledJobs(ctx context.Context) ([]domain.JobDefinition, error) {
	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, queryListEnabledJobs); err != nil {
		return nil, err
	}
	jobs := make([]domain.JobDefinition, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, r.toDomain())
	}
	return jobs, nil
}

// GetJob returns sql.ErrNoRows when no job has the given id.
func (s *Store) GetJob(ctx context.Context, id string) (domain.JobDefinition, error) {
	var row jobRow
	if err := s.db.GetContext(ctx, &row, queryGetJob, id); err != nil {
		return domain.JobDefinition{}, err
	}
	return row.toDomain(), nil
}

// DeleteJob removes the job and its execution history in one
// transaction. Returns sql.ErrNoRows when the job does not exist.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, queryDeleteJobHistory, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, queryDeleteJob, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

// SetJobEnabled returns sql.ErrNoRows when the job does not exist.
func (s *Store) SetJobEnabled(ctx context.Context, id string, enabled bool) error {
	res, err := s.db.ExecContext(ctx, querySetJobEnabled, enabled, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) RecordJobRun(ctx context.Context, jobID string, lastRunAt, nextRunAt time.Time) error {
	_, err := s.db.ExecContext(ctx, queryRecordJobRun, lastRunAt, nextRunAt, jobID)
	return err
}

func (s *Store) InsertExecution(ctx context.Context, rec domain.ExecutionRecord) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, queryInsertExecution,
		rec.JobID, rec.StartedAt, rec.CompletedAt, string(rec.Status),
		jsonArg(rec.Result), nullIfEmpty(rec.Error))
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) CompleteExecution(ctx context.Context, executionID int64, completedAt time.Time, status domain.ExecutionStatus, result domain.Payload, errorMessage string) error {
	_, err := s.db.ExecContext(ctx, queryCompleteExecution,
		completedAt, string(status), jsonArg(result), nullIfEmpty(errorMessage), executionID)
	return err
}

// ListExecutions returns the most recent executions for a job, newest
// first, capped by limit.
func (s *Store) ListExecutions(ctx context.Context, jobID string, limit int) ([]domain.ExecutionRecord, error) {
	var rows []executionRow
	if err := s.db.SelectContext(ctx, &rows, queryListExecutions, jobID, limit); err != nil {
		return nil, err
	}
	records := make([]domain.ExecutionRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toDomain())
	}
	return records, nil
}

// LatestSnapshot returns sql.ErrNoRows when the pair has no snapshots.
func (s *Store) LatestSnapshot(ctx context.Context, database, connectionID string) (domain.MonitoringSnapshot, error) {
	var row snapshotRow
	if err := s.db.GetContext(ctx, &row, queryLatestSnapshot, database, connectionID); err != nil {
		return domain.MonitoringSnapshot{}, err
	}
	return row.toDomain(), nil
}

// InsertSnapshot stores snap and prunes rows beyond the retention bound
// for the same (database, connection) pair in the same transaction.
func (s *Store) InsertSnapshot(ctx context.Context, snap domain.MonitoringSnapshot) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.GetContext(ctx, &id, queryInsertSnapshot,
		snap.Database, snap.ConnectionID, snap.TakenAt, snap.Fingerprint,
		snap.Counts.Tables, snap.Counts.Views, snap.Counts.Procedures, snap.Counts.Functions,
		snap.ChangeDetected, snap.Summary)
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, queryPruneSnapshots, snap.Database, snap.ConnectionID, snapshotRetention); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSnapshots returns snapshots newest first, capped by limit. Empty
// database or connectionID filters match everything.
func (s *Store) ListSnapshots(ctx context.Context, database, connectionID string, limit int) ([]domain.MonitoringSnapshot, error) {
	var rows []snapshotRow
	if err := s.db.SelectContext(ctx, &rows, queryListSnapshots, database, connectionID, limit); err != nil {
		return nil, err
	}
	snaps := make([]domain.MonitoringSnapshot, 0, len(rows))
	for _, r := range rows {
		snaps = append(snaps, r.toDomain())
	}
	return snaps, nil
}

// jsonArg binds a payload as JSONB text, or NULL when empty. lib/pq
// would otherwise send []byte as bytea, which JSONB columns reject.
func jsonArg(p domain.Payload) any {
	if p.IsEmpty() {
		return nil
	}
	return string(p)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Compile-time interface assertions
var (
	_ scheduler.Store   = (*Store)(nil)
	_ monitor.Store     = (*Store)(nil)
	_ api.Store         = (*Store)(nil)
	_ api.HealthChecker = (*Store)(nil)
)
