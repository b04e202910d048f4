package postgres

const schemaDDL = `
CREATE TABLE IF NOT EXISTS jobs (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    job_type      TEXT NOT NULL,
    schedule_spec TEXT NOT NULL,
    config        JSONB,
    enabled       BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL,
    last_run_at   TIMESTAMPTZ,
    next_run_at   TIMESTAMPTZ,
    run_count     BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS job_history (
    id            BIGSERIAL PRIMARY KEY,
    job_id        TEXT NOT NULL REFERENCES jobs(id),
    started_at    TIMESTAMPTZ NOT NULL,
    completed_at  TIMESTAMPTZ,
    status        TEXT NOT NULL CHECK (status IN ('running', 'success', 'error')),
    result        JSONB,
    error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_job_history_job ON job_history(job_id, started_at DESC);

CREATE TABLE IF NOT EXISTS monitoring_snapshots (
    id              BIGSERIAL PRIMARY KEY,
    database_name   TEXT NOT NULL,
    connection_id   TEXT NOT NULL,
    taken_at        TIMESTAMPTZ NOT NULL,
    fingerprint     TEXT NOT NULL,
    table_count     INTEGER NOT NULL DEFAULT 0,
    view_count      INTEGER NOT NULL DEFAULT 0,
    procedure_count INTEGER NOT NULL DEFAULT 0,
    function_count  INTEGER NOT NULL DEFAULT 0,
    change_detected BOOLEAN NOT NULL DEFAULT FALSE,
    summary         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_snapshots_target ON monitoring_snapshots(database_name, connection_id, id DESC);
`

const queryInsertJob = `
INSERT INTO jobs (id, name, job_type, schedule_spec, config, enabled, created_at, last_run_at, next_run_at, run_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

const queryListJobs = `
SELECT id, name, job_type, schedule_spec, config, enabled, created_at, last_run_at, next_run_at, run_count
FROM jobs
ORDER BY created_at, id
`

const queryListEnabledJobs = `
SELECT id, name, job_type, schedule_spec, config, enabled, created_at, last_run_at, next_run_at, run_count
FROM jobs
WHERE enabled = TRUE
ORDER BY created_at, id
`

const queryGetJob = `
SELECT id, name, job_type, schedule_spec, config, enabled, created_at, last_run_at, next_run_at, run_count
FROM jobs
WHERE id = $1
`

const querySetJobEnabled = `
UPDATE jobs SET enabled = $1 WHERE id = $2
`

const queryRecordJobRun = `
UPDATE jobs
SET last_run_at = $1, next_run_at = $2, run_count = run_count + 1
WHERE id = $3
`

const queryDeleteJobHistory = `
DELETE FROM job_history WHERE job_id = $1
`

const queryDeleteJob = `
DELETE FROM jobs WHERE id = $1
`

const queryInsertExecution = `
INSERT INTO job_history (job_id, started_at, completed_at, status, result, error_message)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`

const queryCompleteExecution = `
UPDATE job_history
SET completed_at = $1, status = $2, result = $3, error_message = $4
WHERE id = $5
`

const queryListExecutions = `
SELECT id, job_id, started_at, completed_at, status, result, error_message
FROM job_history
WHERE job_id = $1
ORDER BY started_at DESC, id DESC
LIMIT $2
`

const queryLatestSnapshot = `
SELECT id, database_name, connection_id, taken_at, fingerprint,
       table_count, view_count, procedure_count, function_count,
       change_detected, summary
FROM monitoring_snapshots
WHERE database_name = $1 AND connection_id = $2
ORDER BY id DESC
LIMIT 1
`

const queryInsertSnapshot = `
INSERT INTO monitoring_snapshots (database_name, connection_id, taken_at, fingerprint,
    table_count, view_count, procedure_count, function_count, change_detected, summary)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id
`

const queryPruneSnapshots = `
DELETE FROM monitoring_snapshots
WHERE database_name = $1 AND connection_id = $2
  AND id NOT IN (
    SELECT id FROM monitoring_snapshots
    WHERE database_name = $1 AND connection_id = $2
    ORDER BY id DESC
    LIMIT $3
)
`

const queryListSnapshots = `
SELECT id, database_name, connection_id, taken_at, fingerprint,
       table_count, view_count, procedure_count, function_count,
       change_detected, summary
FROM monitoring_snapshots
WHERE ($1 = '' OR database_name = $1)
  AND ($2 = '' OR connection_id = $2)
ORDER BY id DESC
LIMIT $3
`
