package monitor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/schemadoc/schemadoc/internal/domain"
	"github.com/schemadoc/schemadoc/internal/extract"
	"github.com/schemadoc/schemadoc/internal/metrics"
	"github.com/schemadoc/schemadoc/internal/schema"
)

type Store interface {
	// LatestSnapshot returns the most recent snapshot for the pair, or
	// sql.ErrNoRows when none exists yet.
	LatestSnapshot(ctx context.Context, database, connectionID string) (domain.MonitoringSnapshot, error)
	InsertSnapshot(ctx context.Context, snap domain.MonitoringSnapshot) (int64, error)
}

// Extractor produces the current schema metadata of one monitored
// database. Implementations acquire and release their connection within
// the call.
type Extractor interface {
	ExtractSchema(ctx context.Context, database, connectionID string) (*extract.Database, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, event domain.Event)
}

// Target identifies one monitored database connection.
type Target struct {
	Database     string
	ConnectionID string
}

type Config struct {
	Interval time.Duration
	Targets  []Target
}

// Monitor periodically fingerprints each configured database's schema
// and flags structural drift against the last known fingerprint. A
// failing check is logged and never aborts the remaining targets in the
// same tick.
type Monitor struct {
	config    Config
	store     Store
	extractor Extractor
	notifier  Notifier
	metrics   metrics.Sink
	clock     func() time.Time
}

func New(config Config, store Store, extractor Extractor, notifier Notifier) *Monitor {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Minute
	}
	return &Monitor{
		config:    config,
		store:     store,
		extractor: extractor,
		notifier:  notifier,
		metrics:   metrics.NewNoopSink(),
		clock:     time.Now,
	}
}

// WithMetrics sets the metrics sink. Returns m for chaining.
func (m *Monitor) WithMetrics(sink metrics.Sink) *Monitor {
	m.metrics = sink
	return m
}

// Run executes the monitoring loop until ctx is cancelled. Stopping is
// cooperative: cancellation prevents future ticks while a tick already
// in progress runs to completion.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	log.Printf("monitor: started, interval=%s, targets=%d", m.config.Interval, len(m.config.Targets))

	for {
		select {
		case <-ctx.Done():
			log.Println("monitor: stopped")
			return ctx.Err()
		case <-ticker.C:
			m.processTick(ctx)
		}
	}
}

func (m *Monitor) processTick(ctx context.Context) {
	started := m.clock()

	for _, tgt := range m.config.Targets {
		if err := m.checkDatabase(ctx, tgt); err != nil {
			log.Printf("monitor: check failed for %s (%s): %v", tgt.Database, tgt.ConnectionID, err)
			m.metrics.MonitorCheckFailed(tgt.Database)
		}
	}

	m.metrics.MonitorTickCompleted(m.clock().Sub(started), len(m.config.Targets))
}

// checkDatabase runs one full observation: extract, canonicalize,
// fingerprint, classify against the latest snapshot, persist (with
// pruning applied by the store in the same transaction), and notify on
// drift.
func (m *Monitor) checkDatabase(ctx context.Context, tgt Target) error {
	checkStart := m.clock()

	db, err := m.extractor.ExtractSchema(ctx, tgt.Database, tgt.ConnectionID)
	if err != nil {
		return fmt.Errorf("extract schema: %w", err)
	}

	canonical := schema.Canonicalize(db)
	fingerprint := canonical.Fingerprint()
	now := m.clock().UTC()

	snap := domain.MonitoringSnapshot{
		Database:     tgt.Database,
		ConnectionID: tgt.ConnectionID,
		TakenAt:      now,
		Fingerprint:  fingerprint,
		Counts:       canonical.Counts(),
	}

	prev, err := m.store.LatestSnapshot(ctx, tgt.Database, tgt.ConnectionID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		snap.Summary = schema.FirstSnapshotSummary
	case err != nil:
		return fmt.Errorf("load latest snapshot: %w", err)
	case prev.Fingerprint == fingerprint:
		snap.Summary = schema.NoChangeSummary
	default:
		snap.ChangeDetected = true
		snap.Summary = schema.ChangeSummary(prev.Counts, snap.Counts)
	}

	if _, err := m.store.InsertSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	m.metrics.MonitorCheckCompleted(tgt.Database, snap.ChangeDetected, m.clock().Sub(checkStart))
	log.Printf("monitor: %s (%s): %s", tgt.Database, tgt.ConnectionID, snap.Summary)

	if snap.ChangeDetected {
		payload, _ := domain.PayloadFrom(map[string]any{
			"database":      tgt.Database,
			"connection_id": tgt.ConnectionID,
			"summary":       snap.Summary,
			"fingerprint":   fingerprint,
			"counts": map[string]int{
				"tables":     snap.Counts.Tables,
				"views":      snap.Counts.Views,
				"procedures": snap.Counts.Procedures,
				"functions":  snap.Counts.Functions,
			},
		})
		m.notifier.Dispatch(ctx, domain.NewEvent(tgt.Database, domain.EventStatusChangeDetected, payload, now))
	}

	return nil
}
