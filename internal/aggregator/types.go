// Package aggregator builds the public status-page snapshot:
// per-monitor effective status, banner precedence, and the
// uptime/downtime/unknown interval algebra shared by the snapshot and
// the per-monitor range endpoints.
package aggregator

import (
	"time"

	"github.com/openuptime/uptimer/internal/models"
)

type Heartbeat struct {
	CheckedAt time.Time         `json:"checked_at"`
	Status    models.CheckStatus `json:"status"`
	LatencyMS *int              `json:"latency_ms,omitempty"`
}

type MonitorSummary struct {
	ID              int64              `json:"id"`
	Name            string             `json:"name"`
	Type            models.MonitorType `json:"type"`
	EffectiveStatus models.MonitorStatus `json:"status"`
	LastCheckedAt   *time.Time         `json:"last_checked_at"`
	LastLatencyMS   *int               `json:"last_latency_ms,omitempty"`
	Heartbeats      []Heartbeat        `json:"heartbeats"`
}

type Counts struct {
	Up          int `json:"up"`
	Down        int `json:"down"`
	Maintenance int `json:"maintenance"`
	Paused      int `json:"paused"`
	Unknown     int `json:"unknown"`
}

func (c Counts) Total() int { return c.Up + c.Down + c.Maintenance + c.Paused + c.Unknown }

// Banner is the single status-page-level message, derived with one
// precedence order from incidents, down ratio, unknown coverage, and
// maintenance — never computed independently per monitor.
type Banner struct {
	Status  string `json:"status"`
	Summary string `json:"summary,omitempty"`
}

type MaintenanceWindows struct {
	Active   []*models.MaintenanceWindow `json:"active"`
	Upcoming []*models.MaintenanceWindow `json:"upcoming"`
}

type Snapshot struct {
	GeneratedAt        time.Time          `json:"generated_at"`
	OverallStatus      models.MonitorStatus `json:"overall_status"`
	Banner             Banner             `json:"banner"`
	Summary            Counts             `json:"summary"`
	Monitors           []MonitorSummary   `json:"monitors"`
	ActiveIncidents    []*models.Incident `json:"active_incidents"`
	MaintenanceWindows MaintenanceWindows `json:"maintenance_windows"`
}
