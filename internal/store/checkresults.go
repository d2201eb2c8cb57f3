package store

import (
	"context"
	"time"

	"github.com/openuptime/uptimer/internal/models"
)

// InsertCheckResult appends one row to the probe log. CheckResult rows
// are never updated after insert.
func (q *Queries) InsertCheckResult(ctx context.Context, r *models.CheckResult) error {
	err := q.db.WithContext(ctx).Create(r).Error
	return wrapStorage("insert_check_result", err)
}

// PurgeCheckResultsBefore deletes rows older than cutoff. It never
// deletes a row with checked_at >= cutoff; callers compute cutoff as
// now - retention_days.
func (q *Queries) PurgeCheckResultsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := q.db.WithContext(ctx).
		Where("checked_at < ?", cutoff).
		Delete(&models.CheckResult{})
	if res.Error != nil {
		return 0, wrapStorage("purge_check_results", res.Error)
	}
	return res.RowsAffected, nil
}

// ListCheckResultsInRange returns check results in chronological order
// for the unknown-interval walk and for the latency endpoint.
func (q *Queries) ListCheckResultsInRange(ctx context.Context, monitorID int64, start, end time.Time) ([]*models.CheckResult, error) {
	var out []*models.CheckResult
	err := q.db.WithContext(ctx).
		Where("monitor_id = ? AND checked_at >= ? AND checked_at < ?", monitorID, start, end).
		Order("checked_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, wrapStorage("list_check_results_in_range", err)
	}
	return out, nil
}

// ListRecentCheckResults returns the last n results for a monitor,
// oldest first, used to render the heartbeat timeline.
func (q *Queries) ListRecentCheckResults(ctx context.Context, monitorID int64, since time.Time, n int) ([]*models.CheckResult, error) {
	var desc []*models.CheckResult
	err := q.db.WithContext(ctx).
		Where("monitor_id = ? AND checked_at >= ?", monitorID, since).
		Order("checked_at DESC").
		Limit(n).
		Find(&desc).Error
	if err != nil {
		return nil, wrapStorage("list_recent_check_results", err)
	}
	out := make([]*models.CheckResult, len(desc))
	for i, r := range desc {
		out[len(desc)-1-i] = r
	}
	return out, nil
}
