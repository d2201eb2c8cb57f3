package models

import "time"

// MonitorState is the upsert-only row tracking one monitor's current
// status and consecutive-result counters. At most one row exists per
// MonitorID; status = down iff an open Outage exists for the monitor.
type MonitorState struct {
	MonitorID           int64         `json:"monitor_id" gorm:"column:monitor_id;primaryKey"`
	Status              MonitorStatus `json:"status" gorm:"column:status"`
	LastCheckedAt       *time.Time    `json:"last_checked_at" gorm:"column:last_checked_at"`
	LastLatencyMS       *int          `json:"last_latency_ms" gorm:"column:last_latency_ms"`
	LastError           *string       `json:"last_error" gorm:"column:last_error"`
	ConsecutiveFailures int           `json:"consecutive_failures" gorm:"column:consecutive_failures"`
	ConsecutiveSuccesses int          `json:"consecutive_successes" gorm:"column:consecutive_successes"`
}

func (MonitorState) TableName() string { return "monitor_state" }

// NewMonitorState returns the initial state for a monitor that has
// never been checked: unknown, zeroed counters.
func NewMonitorState(monitorID int64) *MonitorState {
	return &MonitorState{
		MonitorID: monitorID,
		Status:    StatusUnknown,
	}
}
