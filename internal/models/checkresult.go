package models

import "time"

// CheckResult is the append-only probe log. Rows older than the
// configured retention window are purged by the scheduler's daily
// cleanup; rows are never mutated after insert.
type CheckResult struct {
	ID        int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	MonitorID int64       `json:"monitor_id" gorm:"column:monitor_id;index"`
	CheckedAt time.Time   `json:"checked_at" gorm:"column:checked_at;index"`
	Status    CheckStatus `json:"status" gorm:"column:status"`
	LatencyMS *int        `json:"latency_ms" gorm:"column:latency_ms"`
	Error     *string     `json:"error" gorm:"column:error"`
}

func (CheckResult) TableName() string { return "check_results" }
