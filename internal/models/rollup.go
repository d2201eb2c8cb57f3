package models

import "time"

// MonitorDailyRollup is a precomputed daily total, keyed by
// (monitor_id, day_start_at), used by the 30d/90d analytics overview so
// that range doesn't require scanning raw check_results.
type MonitorDailyRollup struct {
	MonitorID   int64     `json:"monitor_id" gorm:"column:monitor_id;primaryKey"`
	DayStartAt  time.Time `json:"day_start_at" gorm:"column:day_start_at;primaryKey"`
	TotalSec    int64     `json:"total_sec" gorm:"column:total_sec"`
	DowntimeSec int64     `json:"downtime_sec" gorm:"column:downtime_sec"`
	UnknownSec  int64     `json:"unknown_sec" gorm:"column:unknown_sec"`
	UptimeSec   int64     `json:"uptime_sec" gorm:"column:uptime_sec"`
}

func (MonitorDailyRollup) TableName() string { return "monitor_daily_rollups" }
