package aggregator

import (
	"time"

	"github.com/openuptime/uptimer/internal/models"
)

// effectiveStatus applies the page's precedence: maintenance wins over
// everything, paused/maintenance state passes through literally, a
// stale last check degrades to unknown, otherwise the stored status
// stands.
func effectiveStatus(state *models.MonitorState, intervalSec int, inMaintenance bool, now time.Time) models.MonitorStatus {
	if inMaintenance {
		return models.StatusMaintenance
	}
	if state.Status == models.StatusPaused || state.Status == models.StatusMaintenance {
		return state.Status
	}
	staleAfter := time.Duration(2*intervalSec) * time.Second
	if state.LastCheckedAt == nil || now.Sub(*state.LastCheckedAt) > staleAfter {
		return models.StatusUnknown
	}
	return state.Status
}

// overallStatus derives the page-level status from the tallied
// per-monitor effective statuses, precedence down > unknown >
// maintenance > up > paused > unknown.
func overallStatus(c Counts) models.MonitorStatus {
	switch {
	case c.Down > 0:
		return models.StatusDown
	case c.Unknown > 0:
		return models.StatusUnknown
	case c.Maintenance > 0:
		return models.StatusMaintenance
	case c.Up > 0:
		return models.StatusUp
	case c.Paused > 0:
		return models.StatusPaused
	default:
		return models.StatusUnknown
	}
}

// decideBanner implements the single-source banner precedence: open
// incidents first (by worst impact), then the down ratio, then unknown
// coverage, then maintenance, else operational.
func decideBanner(c Counts, openIncidents []*models.Incident, anyActiveMaintenance bool) Banner {
	if len(openIncidents) > 0 {
		maxImpact := models.ImpactNone
		for _, inc := range openIncidents {
			maxImpact = models.MaxImpact(maxImpact, inc.Impact)
		}
		status := "operational"
		switch maxImpact {
		case models.ImpactMajor, models.ImpactCritical:
			status = "major_outage"
		case models.ImpactMinor:
			status = "partial_outage"
		}
		return Banner{Status: status, Summary: openIncidents[0].Title}
	}

	if c.Down > 0 {
		total := c.Total()
		if total > 0 && float64(c.Down)/float64(total) >= 0.3 {
			return Banner{Status: "major_outage"}
		}
		return Banner{Status: "partial_outage"}
	}

	if c.Unknown > 0 {
		return Banner{Status: "unknown"}
	}

	if anyActiveMaintenance || c.Maintenance > 0 {
		return Banner{Status: "maintenance"}
	}

	return Banner{Status: "operational"}
}
