package aggregator

import (
	"testing"
	"time"

	"github.com/openuptime/uptimer/internal/models"
)

func TestComputeUptime_NoDataIsEntirelyUnknown(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	monitor := &models.Monitor{IntervalSec: 60, CreatedAt: start.Add(-48 * time.Hour)}

	result := ComputeUptime(monitor, nil, nil, start, end)

	if result.DowntimeSec != 0 {
		t.Fatalf("expected zero downtime, got %d", result.DowntimeSec)
	}
	if result.UnknownSec != result.TotalSec {
		t.Fatalf("expected the entire window to be unknown, got %d of %d", result.UnknownSec, result.TotalSec)
	}
	if result.UptimeSec != 0 {
		t.Fatalf("expected zero uptime, got %d", result.UptimeSec)
	}
}

func TestComputeUptime_RegularChecksAreFullyUp(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(1 * time.Hour)
	monitor := &models.Monitor{IntervalSec: 60, CreatedAt: start.Add(-24 * time.Hour)}

	var results []*models.CheckResult
	for ts := start; ts.Before(end); ts = ts.Add(time.Minute) {
		results = append(results, &models.CheckResult{CheckedAt: ts, Status: models.CheckUp})
	}

	result := ComputeUptime(monitor, nil, results, start, end)

	if result.DowntimeSec != 0 {
		t.Fatalf("expected zero downtime, got %d", result.DowntimeSec)
	}
	if result.UnknownSec != 0 {
		t.Fatalf("expected zero unknown, got %d", result.UnknownSec)
	}
	if result.UptimeSec != result.TotalSec {
		t.Fatalf("expected full uptime, got %d of %d", result.UptimeSec, result.TotalSec)
	}
	if result.UptimePct == nil || *result.UptimePct != 100 {
		t.Fatalf("expected 100%%, got %v", result.UptimePct)
	}
}

func TestComputeUptime_WindowClampedToMonitorCreation(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	start := created.Add(-6 * time.Hour)
	end := created.Add(6 * time.Hour)
	monitor := &models.Monitor{IntervalSec: 60, CreatedAt: created}

	result := ComputeUptime(monitor, nil, nil, start, end)

	if result.TotalSec != int64((6 * time.Hour).Seconds()) {
		t.Fatalf("expected the window to clamp to monitor.created_at, got %d seconds", result.TotalSec)
	}
}

func TestComputeUptime_OutageCountsAsDowntimeNotUnknown(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	monitor := &models.Monitor{IntervalSec: 60, CreatedAt: start.Add(-24 * time.Hour)}

	outageEnd := start.Add(90 * time.Minute)
	outages := []*models.Outage{{StartedAt: start.Add(30 * time.Minute), EndedAt: &outageEnd}}
	results := []*models.CheckResult{
		{CheckedAt: start.Add(30 * time.Minute), Status: models.CheckDown},
		{CheckedAt: start.Add(90 * time.Minute), Status: models.CheckUp},
	}

	result := ComputeUptime(monitor, outages, results, start, end)

	if result.DowntimeSec != int64((1 * time.Hour).Seconds()) {
		t.Fatalf("expected 1 hour downtime, got %d", result.DowntimeSec)
	}
	// The outage [30m, 90m) counts as downtime only. The stretches no
	// probe covers outside it, [0, 30m) before the first probe and
	// [92m, 120m) after the last probe's 2x-interval coverage, are
	// unknown: 58 minutes in all.
	if result.UnknownSec != int64((58 * time.Minute).Seconds()) {
		t.Fatalf("expected only the uncovered time outside the outage (58m) to count as unknown, got %d", result.UnknownSec)
	}
}

func TestComputeUptime_ExplicitUnknownStatusCountsAsUnknownEvenThoughCovered(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(1 * time.Hour)
	monitor := &models.Monitor{IntervalSec: 60, CreatedAt: start.Add(-24 * time.Hour)}

	results := []*models.CheckResult{
		{CheckedAt: start, Status: models.CheckUnknown},
	}

	result := ComputeUptime(monitor, nil, results, start, end)

	if result.UnknownSec == 0 {
		t.Fatalf("expected an explicit unknown-status result to contribute unknown time")
	}
}

func TestComputeUptime_NeverExceedsTotal(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(1 * time.Hour)
	monitor := &models.Monitor{IntervalSec: 60, CreatedAt: start.Add(-24 * time.Hour)}

	longOutageEnd := end.Add(1 * time.Hour) // extends past the window on both sides, ending only after it
	outages := []*models.Outage{{StartedAt: start.Add(-1 * time.Hour), EndedAt: &longOutageEnd}}

	result := ComputeUptime(monitor, outages, nil, start, end)

	if result.DowntimeSec+result.UnknownSec > result.TotalSec {
		t.Fatalf("downtime+unknown must never exceed total, got %d+%d > %d", result.DowntimeSec, result.UnknownSec, result.TotalSec)
	}
	if result.UptimeSec != 0 {
		t.Fatalf("expected zero uptime when the whole window is down, got %d", result.UptimeSec)
	}
}
