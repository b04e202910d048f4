package sqlite

const schemaDDL = `
CREATE TABLE IF NOT EXISTS jobs (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    job_type      TEXT NOT NULL,
    schedule_spec TEXT NOT NULL,
    config        TEXT,
    enabled       INTEGER NOT NULL DEFAULT 1,
    created_at    TIMESTAMP NOT NULL,
    last_run_at   TIMESTAMP,
    next_run_at   TIMESTAMP,
    run_count     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS job_history (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id        TEXT NOT NULL REFERENCES jobs(id),
    started_at    TIMESTAMP NOT NULL,
    completed_at  TIMESTAMP,
    status        TEXT NOT NULL CHECK (status IN ('running', 'success', 'error')),
    result        TEXT,
    error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_job_history_job ON job_history(job_id, started_at DESC);

CREATE TABLE IF NOT EXISTS monitoring_snapshots (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    database_name   TEXT NOT NULL,
    connection_id   TEXT NOT NULL,
    taken_at        TIMESTAMP NOT NULL,
    fingerprint     TEXT NOT NULL,
    table_count     INTEGER NOT NULL DEFAULT 0,
    view_count      INTEGER NOT NULL DEFAULT 0,
    procedure_count INTEGER NOT NULL DEFAULT 0,
    function_count  INTEGER NOT NULL DEFAULT 0,
    change_detected INTEGER NOT NULL DEFAULT 0,
    summary         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_snapshots_target ON monitoring_snapshots(database_name, connection_id, id DESC);
`

const queryInsertJob = `
INSERT INTO jobs (id, name, job_type, schedule_spec, config, enabled, created_at, last_run_at, next_run_at, run_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const queryListJobs = `
SELECT id, name, job_type, schedule_spec, config, enabled, created_at, last_run_at, next_run_at, run_count
FROM jobs
ORDER BY created_at, id
`

const queryListEnabledJobs = `
SELECT id, name, job_type, schedule_spec, config, enabled, created_at, last_run_at, next_run_at, run_count
FROM jobs
WHERE enabled = 1
ORDER BY created_at, id
`

const queryGetJob = `
SELECT id, name, job_type, schedule_spec, config, enabled, created_at, last_run_at, next_run_at, run_count
FROM jobs
WHERE id = ?
`

const querySetJobEnabled = `
UPDATE jobs SET enabled = ? WHERE id = ?
`

const queryRecordJobRun = `
UPDATE jobs
SET last_run_at = ?, next_run_at = ?, run_count = run_count + 1
WHERE id = ?
`

const queryDeleteJobHistory = `
DELETE FROM job_history WHERE job_id = ?
`

const queryDeleteJob = `
DELETE FROM jobs WHERE id = ?
`

const queryInsertExecution = `
INSERT INTO job_history (job_id, started_at, completed_at, status, result, error_message)
VALUES (?, ?, ?, ?, ?, ?)
`

const queryCompleteExecution = `
UPDATE job_history
SET completed_at = ?, status = ?, result = ?, error_message = ?
WHERE id = ?
`

const queryListExecutions = `
SELECT id, job_id, started_at, completed_at, status, result, error_message
FROM job_history
WHERE job_id = ?
ORDER BY started_at DESC, id DESC
LIMIT ?
`

const queryLatestSnapshot = `
SELECT id, database_name, connection_id, taken_at, fingerprint,
       table_count, view_count, procedure_count, function_count,
       change_detected, summary
FROM monitoring_snapshots
WHERE database_name = ? AND connection_id = ?
ORDER BY id DESC
LIMIT 1
`

const queryInsertSnapshot = `
INSERT INTO monitoring_snapshots (database_name, connection_id, taken_at, fingerprint,
    table_count, view_count, procedure_count, function_count, change_detected, summary)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const queryPruneSnapshots = `
DELETE FROM monitoring_snapshots
WHERE database_name = ?1 AND connection_id = ?2
  AND id NOT IN (
    SELECT id FROM monitoring_snapshots
    WHERE database_name = ?1 AND connection_id = ?2
    ORDER BY id DESC
    LIMIT ?3
)
`

const queryListSnapshots = `
SELECT id, database_name, connection_id, taken_at, fingerprint,
       table_count, view_count, procedure_count, function_count,
       change_detected, summary
FROM monitoring_snapshots
WHERE (?1 = '' OR database_name = ?1)
  AND (?2 = '' OR connection_id = ?2)
ORDER BY id DESC
LIMIT ?3
`
