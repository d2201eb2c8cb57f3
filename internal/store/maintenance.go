package store

import (
	"context"
	"time"

	"github.com/openuptime/uptimer/internal/models"
)

// ActiveMaintenanceWindows returns windows covering now.
func (q *Queries) ActiveMaintenanceWindows(ctx context.Context, now time.Time) ([]*models.MaintenanceWindow, error) {
	var out []*models.MaintenanceWindow
	err := q.db.WithContext(ctx).
		Where("starts_at <= ? AND ends_at > ?", now, now).
		Order("starts_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, wrapStorage("active_maintenance_windows", err)
	}
	return out, nil
}

// UpcomingMaintenanceWindows returns windows that have not started yet,
// capped by limit.
func (q *Queries) UpcomingMaintenanceWindows(ctx context.Context, now time.Time, limit int) ([]*models.MaintenanceWindow, error) {
	var out []*models.MaintenanceWindow
	err := q.db.WithContext(ctx).
		Where("starts_at > ?", now).
		Order("starts_at ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, wrapStorage("upcoming_maintenance_windows", err)
	}
	return out, nil
}

// ListMaintenanceWindows returns windows ordered by descending id,
// paginated by a cursor (the smallest id already seen; 0 for the first
// page), newest first regardless of start/end time.
func (q *Queries) ListMaintenanceWindows(ctx context.Context, cursor int64, limit int) ([]*models.MaintenanceWindow, error) {
	tx := q.db.WithContext(ctx)
	if cursor > 0 {
		tx = tx.Where("id < ?", cursor)
	}
	var out []*models.MaintenanceWindow
	err := tx.Order("id DESC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, wrapStorage("list_maintenance_windows", err)
	}
	return out, nil
}

// MonitorsInMaintenance returns the set of monitor ids covered by any
// window active at now.
func (q *Queries) MonitorsInMaintenance(ctx context.Context, now time.Time) (map[int64]bool, error) {
	var links []models.MaintenanceWindowMonitorLink
	err := q.db.WithContext(ctx).
		Joins("JOIN maintenance_windows w ON w.id = maintenance_window_monitor_links.maintenance_window_id").
		Where("w.starts_at <= ? AND w.ends_at > ?", now, now).
		Find(&links).Error
	if err != nil {
		return nil, wrapStorage("monitors_in_maintenance", err)
	}
	out := make(map[int64]bool, len(links))
	for _, l := range links {
		out[l.MonitorID] = true
	}
	return out, nil
}

// IsMonitorInMaintenance checks a single monitor, used by the state
// machine's per-check decision.
func (q *Queries) IsMonitorInMaintenance(ctx context.Context, monitorID int64, now time.Time) (bool, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.MaintenanceWindowMonitorLink{}).
		Joins("JOIN maintenance_windows w ON w.id = maintenance_window_monitor_links.maintenance_window_id").
		Where("maintenance_window_monitor_links.monitor_id = ?", monitorID).
		Where("w.starts_at <= ? AND w.ends_at > ?", now, now).
		Count(&count).Error
	if err != nil {
		return false, wrapStorage("is_monitor_in_maintenance", err)
	}
	return count > 0, nil
}
