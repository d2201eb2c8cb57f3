package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openuptime/uptimer/internal/models"
)

// UpsertDailyRollup writes the precomputed totals for one monitor/day.
func (q *Queries) UpsertDailyRollup(ctx context.Context, r *models.MonitorDailyRollup) error {
	err := q.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "monitor_id"}, {Name: "day_start_at"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_sec", "downtime_sec", "unknown_sec", "uptime_sec"}),
		}).
		Create(r).Error
	return wrapStorage("upsert_daily_rollup", err)
}

// RollupsInRange returns the whole-day rollups whose day starts within
// [start, end); a day that starts before start is not included. It is
// used by the 30d/90d analytics overview to avoid re-scanning raw
// check_results for completed days.
func (q *Queries) RollupsInRange(ctx context.Context, monitorID int64, start, end time.Time) ([]*models.MonitorDailyRollup, error) {
	var out []*models.MonitorDailyRollup
	err := q.db.WithContext(ctx).
		Where("monitor_id = ? AND day_start_at >= ? AND day_start_at < ?", monitorID, start, end).
		Order("day_start_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, wrapStorage("rollups_in_range", err)
	}
	return out, nil
}

// LatestRollupDay returns the day_start_at of the most recent rollup
// row for monitorID, or nil if none exists yet. The daily rollup job
// uses this as its persisted watermark, so a gap of several missed
// day-boundary ticks backfills every day in between rather than
// silently skipping to the most recent one.
func (q *Queries) LatestRollupDay(ctx context.Context, monitorID int64) (*time.Time, error) {
	var r models.MonitorDailyRollup
	err := q.db.WithContext(ctx).
		Where("monitor_id = ?", monitorID).
		Order("day_start_at DESC").
		Limit(1).
		Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStorage("latest_rollup_day", err)
	}
	return &r.DayStartAt, nil
}
