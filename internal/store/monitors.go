package store

import (
	"context"
	"time"

	"github.com/openuptime/uptimer/internal/models"
)

// GetMonitor loads one monitor by id.
func (q *Queries) GetMonitor(ctx context.Context, id int64) (*models.Monitor, error) {
	var m models.Monitor
	if err := q.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, wrapStorage("get_monitor", err)
	}
	return &m, nil
}

// ListActiveMonitors returns every monitor with is_active = true,
// regardless of whether it is currently due.
func (q *Queries) ListActiveMonitors(ctx context.Context) ([]*models.Monitor, error) {
	var out []*models.Monitor
	if err := q.db.WithContext(ctx).Where("is_active = ?", true).Find(&out).Error; err != nil {
		return nil, wrapStorage("list_active_monitors", err)
	}
	return out, nil
}

// ListDueMonitors returns active monitors whose last check is null or
// at least interval_sec old, bounded by cap to respect the tick's
// wall-clock budget.
func (q *Queries) ListDueMonitors(ctx context.Context, now time.Time, cap int) ([]*models.Monitor, error) {
	var out []*models.Monitor
	tx := q.db.WithContext(ctx).
		Joins("LEFT JOIN monitor_state ms ON ms.monitor_id = monitors.id").
		Where("monitors.is_active = ?", true).
		Where("ms.last_checked_at IS NULL OR ? - EXTRACT(EPOCH FROM ms.last_checked_at)::bigint >= monitors.interval_sec", now.Unix()).
		Order("monitors.id ASC")
	if cap > 0 {
		tx = tx.Limit(cap)
	}
	if err := tx.Find(&out).Error; err != nil {
		return nil, wrapStorage("list_due_monitors", err)
	}
	return out, nil
}
