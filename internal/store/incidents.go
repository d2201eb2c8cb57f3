package store

import (
	"context"

	"github.com/openuptime/uptimer/internal/models"
)

// ListOpenIncidents returns incidents whose status is not resolved,
// newest first, capped by limit.
func (q *Queries) ListOpenIncidents(ctx context.Context, limit int) ([]*models.Incident, error) {
	var out []*models.Incident
	err := q.db.WithContext(ctx).
		Where("status <> ?", models.IncidentResolved).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, wrapStorage("list_open_incidents", err)
	}
	return out, nil
}

// ListIncidents returns incidents paginated by descending id.
func (q *Queries) ListIncidents(ctx context.Context, cursor int64, limit int) ([]*models.Incident, error) {
	tx := q.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if cursor > 0 {
		tx = tx.Where("id < ?", cursor)
	}
	var out []*models.Incident
	if err := tx.Find(&out).Error; err != nil {
		return nil, wrapStorage("list_incidents", err)
	}
	return out, nil
}

// MonitorsAffectedByOpenIncidents returns the set of monitor ids linked
// to any currently-open incident.
func (q *Queries) MonitorsAffectedByOpenIncidents(ctx context.Context) (map[int64]bool, error) {
	var links []models.IncidentMonitorLink
	err := q.db.WithContext(ctx).
		Joins("JOIN incidents i ON i.id = incident_monitor_links.incident_id").
		Where("i.status <> ?", models.IncidentResolved).
		Find(&links).Error
	if err != nil {
		return nil, wrapStorage("monitors_affected_by_open_incidents", err)
	}
	out := make(map[int64]bool, len(links))
	for _, l := range links {
		out[l.MonitorID] = true
	}
	return out, nil
}
