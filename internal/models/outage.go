package models

import "time"

// Outage is a closed or open downtime interval. EndedAt is nil while
// the outage is open; at most one open outage exists per monitor at any
// time, enforced by the Store's atomic open/close transaction.
type Outage struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	MonitorID    int64      `json:"monitor_id" gorm:"column:monitor_id;index"`
	StartedAt    time.Time  `json:"started_at" gorm:"column:started_at"`
	EndedAt      *time.Time `json:"ended_at" gorm:"column:ended_at"`
	InitialError string     `json:"initial_error" gorm:"column:initial_error"`
	LastError    string     `json:"last_error" gorm:"column:last_error"`
}

func (Outage) TableName() string { return "outages" }

func (o *Outage) IsOpen() bool { return o.EndedAt == nil }
