package aggregator

import (
	"testing"
	"time"

	"github.com/openuptime/uptimer/internal/models"
)

func TestEffectiveStatus_MaintenanceOverridesEverything(t *testing.T) {
	now := time.Now()
	state := &models.MonitorState{Status: models.StatusDown, LastCheckedAt: &now}

	got := effectiveStatus(state, 60, true, now)

	if got != models.StatusMaintenance {
		t.Fatalf("got %q", got)
	}
}

func TestEffectiveStatus_PausedPassesThrough(t *testing.T) {
	now := time.Now()
	state := &models.MonitorState{Status: models.StatusPaused}

	got := effectiveStatus(state, 60, false, now)

	if got != models.StatusPaused {
		t.Fatalf("got %q", got)
	}
}

func TestEffectiveStatus_StaleLastCheckDegradesToUnknown(t *testing.T) {
	now := time.Now()
	stale := now.Add(-5 * time.Minute)
	state := &models.MonitorState{Status: models.StatusUp, LastCheckedAt: &stale}

	got := effectiveStatus(state, 60, false, now) // 2x interval = 120s, staler than that

	if got != models.StatusUnknown {
		t.Fatalf("got %q", got)
	}
}

func TestEffectiveStatus_NeverCheckedIsUnknown(t *testing.T) {
	now := time.Now()
	state := &models.MonitorState{Status: models.StatusUp, LastCheckedAt: nil}

	got := effectiveStatus(state, 60, false, now)

	if got != models.StatusUnknown {
		t.Fatalf("got %q", got)
	}
}

func TestEffectiveStatus_RecentCheckKeepsStoredStatus(t *testing.T) {
	now := time.Now()
	recent := now.Add(-10 * time.Second)
	state := &models.MonitorState{Status: models.StatusUp, LastCheckedAt: &recent}

	got := effectiveStatus(state, 60, false, now)

	if got != models.StatusUp {
		t.Fatalf("got %q", got)
	}
}

func TestOverallStatus_PrecedenceOrder(t *testing.T) {
	cases := []struct {
		name string
		c    Counts
		want models.MonitorStatus
	}{
		{"down wins over everything", Counts{Up: 5, Down: 1, Unknown: 1, Maintenance: 1, Paused: 1}, models.StatusDown},
		{"unknown beats maintenance and up", Counts{Up: 5, Unknown: 1, Maintenance: 1}, models.StatusUnknown},
		{"maintenance beats up and paused", Counts{Up: 5, Maintenance: 1, Paused: 1}, models.StatusMaintenance},
		{"up beats paused", Counts{Up: 5, Paused: 1}, models.StatusUp},
		{"paused alone", Counts{Paused: 5}, models.StatusPaused},
		{"nothing at all", Counts{}, models.StatusUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := overallStatus(tc.c); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecideBanner_OpenIncidentTakesPrecedenceOverDownCount(t *testing.T) {
	counts := Counts{Up: 1, Down: 9}
	incidents := []*models.Incident{{Title: "database outage", Impact: models.ImpactCritical}}

	banner := decideBanner(counts, incidents, false)

	if banner.Status != "major_outage" {
		t.Fatalf("got %q", banner.Status)
	}
	if banner.Summary != "database outage" {
		t.Fatalf("expected the incident title as the banner summary, got %q", banner.Summary)
	}
}

func TestDecideBanner_MinorIncidentIsPartialOutage(t *testing.T) {
	incidents := []*models.Incident{{Title: "slow responses", Impact: models.ImpactMinor}}

	banner := decideBanner(Counts{Up: 10}, incidents, false)

	if banner.Status != "partial_outage" {
		t.Fatalf("got %q", banner.Status)
	}
}

func TestDecideBanner_DownRatioAtThresholdIsMajorOutage(t *testing.T) {
	banner := decideBanner(Counts{Up: 7, Down: 3}, nil, false)

	if banner.Status != "major_outage" {
		t.Fatalf("expected down/total=0.3 to be a major outage, got %q", banner.Status)
	}
}

func TestDecideBanner_DownRatioBelowThresholdIsPartialOutage(t *testing.T) {
	banner := decideBanner(Counts{Up: 19, Down: 1}, nil, false)

	if banner.Status != "partial_outage" {
		t.Fatalf("expected down/total=0.05 to be a partial outage, got %q", banner.Status)
	}
}

func TestDecideBanner_UnknownWithNoDownIsUnknownBanner(t *testing.T) {
	banner := decideBanner(Counts{Up: 5, Unknown: 2}, nil, false)

	if banner.Status != "unknown" {
		t.Fatalf("got %q", banner.Status)
	}
}

func TestDecideBanner_ActiveMaintenanceWithNoIssuesIsMaintenanceBanner(t *testing.T) {
	banner := decideBanner(Counts{Up: 5}, nil, true)

	if banner.Status != "maintenance" {
		t.Fatalf("got %q", banner.Status)
	}
}

func TestDecideBanner_NoIssuesIsOperational(t *testing.T) {
	banner := decideBanner(Counts{Up: 5}, nil, false)

	if banner.Status != "operational" {
		t.Fatalf("got %q", banner.Status)
	}
}
