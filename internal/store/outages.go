package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openuptime/uptimer/internal/models"
)

// GetOpenOutage returns the monitor's open outage, or nil if none.
// The at-most-one-open-outage invariant depends on callers only ever
// opening a new outage after confirming this returns nil.
func (q *Queries) GetOpenOutage(ctx context.Context, monitorID int64) (*models.Outage, error) {
	var o models.Outage
	err := q.db.WithContext(ctx).
		Where("monitor_id = ? AND ended_at IS NULL", monitorID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStorage("get_open_outage", err)
	}
	return &o, nil
}

// OpenOutage inserts a new open outage for the monitor.
func (q *Queries) OpenOutage(ctx context.Context, monitorID int64, startedAt time.Time, initialError string) (*models.Outage, error) {
	o := &models.Outage{
		MonitorID:    monitorID,
		StartedAt:    startedAt,
		InitialError: initialError,
		LastError:    initialError,
	}
	if err := q.db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, wrapStorage("open_outage", err)
	}
	return o, nil
}

// CloseOutage sets ended_at on an open outage.
func (q *Queries) CloseOutage(ctx context.Context, outageID int64, endedAt time.Time) error {
	err := q.db.WithContext(ctx).
		Model(&models.Outage{}).
		Where("id = ? AND ended_at IS NULL", outageID).
		Update("ended_at", endedAt).Error
	return wrapStorage("close_outage", err)
}

// UpdateOutageError refreshes last_error on an open outage without
// altering started_at or initial_error.
func (q *Queries) UpdateOutageError(ctx context.Context, outageID int64, lastError string) error {
	err := q.db.WithContext(ctx).
		Model(&models.Outage{}).
		Where("id = ? AND ended_at IS NULL", outageID).
		Update("last_error", lastError).Error
	return wrapStorage("update_outage_error", err)
}

// ListOutagesInRange returns outages overlapping [start, end) for a
// monitor, used by the uptime and analytics endpoints and the daily
// rollup.
func (q *Queries) ListOutagesInRange(ctx context.Context, monitorID int64, start, end time.Time) ([]*models.Outage, error) {
	var out []*models.Outage
	err := q.db.WithContext(ctx).
		Where("monitor_id = ?", monitorID).
		Where("started_at < ?", end).
		Where("ended_at IS NULL OR ended_at > ?", start).
		Order("started_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, wrapStorage("list_outages_in_range", err)
	}
	return out, nil
}

// ListOutagesPage returns up to limit outages for a monitor, started on
// or after since, ordered by descending id, paginated by a cursor (the
// smallest id already seen; 0 for the first page).
func (q *Queries) ListOutagesPage(ctx context.Context, monitorID int64, since time.Time, cursor int64, limit int) ([]*models.Outage, error) {
	tx := q.db.WithContext(ctx).
		Where("monitor_id = ?", monitorID).
		Where("started_at >= ?", since)
	if cursor > 0 {
		tx = tx.Where("id < ?", cursor)
	}
	var out []*models.Outage
	err := tx.Order("id DESC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, wrapStorage("list_outages_page", err)
	}
	return out, nil
}
