package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/go-drift/tinydisplay/pkg/tderrors"
)

// Writer drains a bounded channel of WriteBatches on a single goroutine,
// applying each as one transaction. It is the sole writer against the
// database's single write connection.
type Writer struct {
	db      *DB
	queue   chan WriteBatch
	metrics *tderrors.Metrics
}

// NewWriter returns a Writer with a channel of the given capacity.
// metrics may be nil; when set, a full queue increments
// MetricPersistenceLagging instead of blocking the caller.
func NewWriter(db *DB, capacity int, metrics *tderrors.Metrics) *Writer {
	if capacity < 1 {
		capacity = 1
	}
	return &Writer{db: db, queue: make(chan WriteBatch, capacity), metrics: metrics}
}

// Enqueue submits a batch without blocking. It returns false if the
// queue is full, in which case the caller's data is dropped and
// MetricPersistenceLagging (if metrics is set) is incremented: the
// persistence path never blocks the orchestrator's tick pulse.
func (w *Writer) Enqueue(b WriteBatch) bool {
	if b.Empty() {
		return true
	}
	select {
	case w.queue <- b:
		return true
	default:
		if w.metrics != nil {
			w.metrics.Inc(tderrors.MetricPersistenceLagging)
		}
		return false
	}
}

// Run drains the queue until ctx is cancelled or Close is called,
// applying each batch transactionally. It is meant to run in its own
// goroutine for the writer's lifetime.
func (w *Writer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-w.queue:
			if !ok {
				return nil
			}
			if err := w.apply(b); err != nil {
				tderrors.Report(tderrors.New("store.Writer.Run", tderrors.KindFatal, err))
			}
		}
	}
}

// Close signals Run to exit once the queue drains.
func (w *Writer) Close() { close(w.queue) }

func (w *Writer) apply(b WriteBatch) error {
	tx, err := w.db.write.Beginx()
	if err != nil {
		return fmt.Errorf("store: begin write tx: %w", err)
	}
	defer tx.Rollback()

	for _, a := range b.Animations {
		if err := upsertAnimation(tx, a); err != nil {
			return err
		}
	}
	for _, e := range b.Events {
		if _, err := tx.NamedExec(`INSERT INTO timeline_events
			(tick, kind, primitive_id, animation_id, payload, created_at)
			VALUES (:tick, :kind, :primitive_id, :animation_id, :payload, :created_at)`, e); err != nil {
			return fmt.Errorf("store: insert timeline_event: %w", err)
		}
	}
	for _, p := range b.Plans {
		if err := upsertPlan(tx, p); err != nil {
			return err
		}
	}
	for _, m := range b.Metrics {
		if _, err := tx.NamedExec(`INSERT INTO performance_metrics
			(tick, kind, value, payload, created_at)
			VALUES (:tick, :kind, :value, :payload, :created_at)`, m); err != nil {
			return fmt.Errorf("store: insert performance_metric: %w", err)
		}
	}
	for _, d := range b.DataPoints {
		if _, err := tx.NamedExec(`INSERT INTO data_history
			(name, value, tick, created_at)
			VALUES (:name, :value, :tick, :created_at)`, d); err != nil {
			return fmt.Errorf("store: insert data_history: %w", err)
		}
	}

	return tx.Commit()
}

// upsertAnimation inserts or updates a.AnimationID, using updated_at as
// a compare-and-set guard: a write carrying an older updated_at than the
// row's current value is silently discarded, since batches from a
// single-threaded orchestrator are monotonic but ordering across a crash
// recovery replay is not guaranteed.
func upsertAnimation(tx *sqlx.Tx, a AnimationRow) error {
	_, err := tx.NamedExec(`INSERT INTO animations
		(animation_id, definition, active, start_tick, end_tick, updated_at)
		VALUES (:animation_id, :definition, :active, :start_tick, :end_tick, :updated_at)
		ON CONFLICT(animation_id) DO UPDATE SET
			definition = excluded.definition,
			active     = excluded.active,
			start_tick = excluded.start_tick,
			end_tick   = excluded.end_tick,
			updated_at = excluded.updated_at
		WHERE excluded.updated_at >= animations.updated_at`, a)
	if err != nil {
		return fmt.Errorf("store: upsert animation %s: %w", a.AnimationID, err)
	}
	return nil
}

func upsertPlan(tx *sqlx.Tx, p CoordinationPlanRow) error {
	_, err := tx.NamedExec(`INSERT INTO coordination_plans
		(plan_id, definition, state, start_tick, completion_tick, active, updated_at)
		VALUES (:plan_id, :definition, :state, :start_tick, :completion_tick, :active, :updated_at)
		ON CONFLICT(plan_id) DO UPDATE SET
			definition      = excluded.definition,
			state           = excluded.state,
			start_tick      = excluded.start_tick,
			completion_tick = excluded.completion_tick,
			active          = excluded.active,
			updated_at      = excluded.updated_at
		WHERE excluded.updated_at >= coordination_plans.updated_at`, p)
	if err != nil {
		return fmt.Errorf("store: upsert plan %s: %w", p.PlanID, err)
	}
	return nil
}
