package store

import (
	"gorm.io/gorm/clause"
)

// onConflictMonitorID implements the upsert-only write rule for
// monitor_state: an existing row for the monitor is replaced wholesale
// rather than patched field by field.
func onConflictMonitorID() clause.Expression {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "monitor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "last_checked_at", "last_latency_ms", "last_error",
			"consecutive_failures", "consecutive_successes",
		}),
	}
}
