package models

import "time"

// MaintenanceWindow is a planned suppression interval. A monitor is "in
// maintenance" at time T iff any linked window has StartsAt <= T <
// EndsAt.
type MaintenanceWindow struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" gorm:"column:title"`
	Message   string    `json:"message" gorm:"column:message"`
	StartsAt  time.Time `json:"starts_at" gorm:"column:starts_at"`
	EndsAt    time.Time `json:"ends_at" gorm:"column:ends_at"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (MaintenanceWindow) TableName() string { return "maintenance_windows" }

// Covers reports whether the window suppresses alerts at time t.
func (w *MaintenanceWindow) Covers(t time.Time) bool {
	return !t.Before(w.StartsAt) && t.Before(w.EndsAt)
}

type MaintenanceWindowMonitorLink struct {
	MaintenanceWindowID int64 `json:"maintenance_window_id" gorm:"column:maintenance_window_id;primaryKey"`
	MonitorID           int64 `json:"monitor_id" gorm:"column:monitor_id;primaryKey"`
}

func (MaintenanceWindowMonitorLink) TableName() string { return "maintenance_window_monitor_links" }
