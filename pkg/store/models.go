package store

// AnimationRow mirrors the animations table.
type AnimationRow struct {
	AnimationID string `db:"animation_id"`
	Definition  string `db:"definition"`
	Active      bool   `db:"active"`
	StartTick   *int64 `db:"start_tick"`
	EndTick     *int64 `db:"end_tick"`
	UpdatedAt   int64  `db:"updated_at"`
}

// TimelineEventRow mirrors the timeline_events table.
type TimelineEventRow struct {
	EventID     int64  `db:"event_id"`
	Tick        int64  `db:"tick"`
	Kind        string `db:"kind"`
	PrimitiveID string `db:"primitive_id"`
	AnimationID *string `db:"animation_id"`
	Payload     *string `db:"payload"`
	CreatedAt   int64  `db:"created_at"`
}

// CoordinationPlanRow mirrors the coordination_plans table.
type CoordinationPlanRow struct {
	PlanID         string `db:"plan_id"`
	Definition     string `db:"definition"`
	State          string `db:"state"`
	StartTick      *int64 `db:"start_tick"`
	CompletionTick *int64 `db:"completion_tick"`
	Active         bool   `db:"active"`
	UpdatedAt      int64  `db:"updated_at"`
}

// MetricRow mirrors the performance_metrics table.
type MetricRow struct {
	MetricID  int64   `db:"metric_id"`
	Tick      int64   `db:"tick"`
	Kind      string  `db:"kind"`
	Value     float64 `db:"value"`
	Payload   *string `db:"payload"`
	CreatedAt int64   `db:"created_at"`
}

// DataHistoryRow mirrors the data_history table.
type DataHistoryRow struct {
	DataID    int64  `db:"data_id"`
	Name      string `db:"name"`
	Value     string `db:"value"`
	Tick      int64  `db:"tick"`
	CreatedAt int64  `db:"created_at"`
}

// WriteBatch groups one tick pulse's worth of append-only writes plus any
// upserted animation/plan rows, applied in a single transaction.
type WriteBatch struct {
	Animations []AnimationRow
	Events     []TimelineEventRow
	Plans      []CoordinationPlanRow
	Metrics    []MetricRow
	DataPoints []DataHistoryRow
}

// Empty reports whether the batch has nothing to write.
func (b WriteBatch) Empty() bool {
	return len(b.Animations) == 0 && len(b.Events) == 0 && len(b.Plans) == 0 &&
		len(b.Metrics) == 0 && len(b.DataPoints) == 0
}
