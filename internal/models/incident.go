package models

import "time"

// Incident is an operator-authored event shown on the status page
// banner while open. IncidentUpdate rows are its append-only timeline;
// IncidentMonitorLink rows name the affected components.
type Incident struct {
	ID          int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string         `json:"title" gorm:"column:title"`
	Status      IncidentStatus `json:"status" gorm:"column:status"`
	Impact      ImpactLevel    `json:"impact" gorm:"column:impact"`
	Message     string         `json:"message" gorm:"column:message"`
	StartedAt   time.Time      `json:"started_at" gorm:"column:started_at"`
	ResolvedAt  *time.Time     `json:"resolved_at" gorm:"column:resolved_at"`
}

func (Incident) TableName() string { return "incidents" }

func (i *Incident) IsOpen() bool { return i.Status != IncidentResolved }

type IncidentUpdate struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	IncidentID int64     `json:"incident_id" gorm:"column:incident_id;index"`
	Status     IncidentStatus `json:"status" gorm:"column:status"`
	Message    string    `json:"message" gorm:"column:message"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

func (IncidentUpdate) TableName() string { return "incident_updates" }

type IncidentMonitorLink struct {
	IncidentID int64 `json:"incident_id" gorm:"column:incident_id;primaryKey"`
	MonitorID  int64 `json:"monitor_id" gorm:"column:monitor_id;primaryKey"`
}

func (IncidentMonitorLink) TableName() string { return "incident_monitor_links" }
