package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openuptime/uptimer/internal/models"
)

// GetState loads the monitor's state row, returning the initial
// unknown state (not persisted yet) if no row exists.
func (q *Queries) GetState(ctx context.Context, monitorID int64) (*models.MonitorState, error) {
	var s models.MonitorState
	err := q.db.WithContext(ctx).First(&s, "monitor_id = ?", monitorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewMonitorState(monitorID), nil
	}
	if err != nil {
		return nil, wrapStorage("get_state", err)
	}
	return &s, nil
}

// UpsertState writes the monitor's state row, inserting it on first
// write and overwriting every column thereafter — the row is
// upsert-only, never partially patched.
func (q *Queries) UpsertState(ctx context.Context, s *models.MonitorState) error {
	err := q.db.WithContext(ctx).
		Clauses(onConflictMonitorID()).
		Create(s).Error
	return wrapStorage("upsert_state", err)
}
