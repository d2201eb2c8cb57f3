package aggregator

import (
	"context"
	"time"

	"github.com/openuptime/uptimer/internal/models"
	"github.com/openuptime/uptimer/internal/store"
)

const (
	heartbeatLimit   = 60
	heartbeatWindow  = 7 * 24 * time.Hour
	openIncidentsCap = 10
	upcomingMWCap    = 10
)

// BuildSnapshot runs the full snapshot pipeline: load active monitors
// and their state, compute each one's effective status, tally counts,
// load incidents and maintenance windows, and decide the banner.
func BuildSnapshot(ctx context.Context, st *store.Store) (*Snapshot, error) {
	now := time.Now().UTC()

	monitors, err := st.ListActiveMonitors(ctx)
	if err != nil {
		return nil, err
	}
	maintained, err := st.MonitorsInMaintenance(ctx, now)
	if err != nil {
		return nil, err
	}

	var counts Counts
	summaries := make([]MonitorSummary, 0, len(monitors))
	for _, m := range monitors {
		state, err := st.GetState(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		status := effectiveStatus(state, m.IntervalSec, maintained[m.ID], now)
		tally(&counts, status)

		results, err := st.ListRecentCheckResults(ctx, m.ID, now.Add(-heartbeatWindow), heartbeatLimit)
		if err != nil {
			return nil, err
		}
		heartbeats := make([]Heartbeat, 0, len(results))
		for _, r := range results {
			heartbeats = append(heartbeats, Heartbeat{CheckedAt: r.CheckedAt, Status: r.Status, LatencyMS: r.LatencyMS})
		}

		// A stale-degraded unknown status means the last reported
		// latency is no longer a meaningful signal, so it's omitted
		// rather than shown alongside a status that contradicts it.
		lastLatencyMS := state.LastLatencyMS
		if status == models.StatusUnknown {
			lastLatencyMS = nil
		}

		summaries = append(summaries, MonitorSummary{
			ID:              m.ID,
			Name:            m.Name,
			Type:            m.Type,
			EffectiveStatus: status,
			LastCheckedAt:   state.LastCheckedAt,
			LastLatencyMS:   lastLatencyMS,
			Heartbeats:      heartbeats,
		})
	}

	openIncidents, err := st.ListOpenIncidents(ctx, openIncidentsCap)
	if err != nil {
		return nil, err
	}
	activeMW, err := st.ActiveMaintenanceWindows(ctx, now)
	if err != nil {
		return nil, err
	}
	upcomingMW, err := st.UpcomingMaintenanceWindows(ctx, now, upcomingMWCap)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		GeneratedAt:   now,
		OverallStatus: overallStatus(counts),
		Banner:        decideBanner(counts, openIncidents, len(activeMW) > 0),
		Summary:       counts,
		Monitors:      summaries,
		ActiveIncidents: openIncidents,
		MaintenanceWindows: MaintenanceWindows{
			Active:   activeMW,
			Upcoming: upcomingMW,
		},
	}, nil
}

func tally(c *Counts, status models.MonitorStatus) {
	switch status {
	case models.StatusUp:
		c.Up++
	case models.StatusDown:
		c.Down++
	case models.StatusMaintenance:
		c.Maintenance++
	case models.StatusPaused:
		c.Paused++
	default:
		c.Unknown++
	}
}
