package scheduler

import (
	"context"
	"time"

	"github.com/openuptime/uptimer/internal/aggregator"
	"github.com/openuptime/uptimer/internal/models"
)

// maxRollupBackfillDays caps how far back the rollup job will walk
// when a monitor's last rollup row is older than this, e.g. after the
// process was down across many days. It matches the longest analytics
// range the API exposes (90d). A monitor with no rollup rows yet starts
// from the previous day only.
const maxRollupBackfillDays = 90

// rollupPreviousDay computes each active monitor's downtime/unknown/
// uptime split for every whole UTC calendar day since its last rollup
// row and persists each as a monitor_daily_rollup row. The per-monitor
// watermark is the day_start_at of its most recent rollup row, not an
// in-memory field, so a process restart or a gap of several missed
// day-boundary ticks backfills every day in between rather than
// permanently skipping to the most recent one. Each day runs the exact
// same coverage-interval algorithm the single-monitor uptime endpoint
// uses, so a day's rollup never disagrees with what that endpoint
// would compute live over the same window.
func (s *Scheduler) rollupPreviousDay(ctx context.Context, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	earliest := today.Add(-maxRollupBackfillDays * 24 * time.Hour)

	monitors, err := s.store.ListActiveMonitors(ctx)
	if err != nil {
		return err
	}

	for _, m := range monitors {
		latest, err := s.store.LatestRollupDay(ctx, m.ID)
		if err != nil {
			return err
		}

		dayStart := today.Add(-24 * time.Hour)
		if latest != nil {
			dayStart = latest.Add(24 * time.Hour)
		}
		if dayStart.Before(earliest) {
			dayStart = earliest
		}

		for dayStart.Before(today) {
			dayEnd := dayStart.Add(24 * time.Hour)
			if err := s.rollupMonitorDay(ctx, m, dayStart, dayEnd); err != nil {
				return err
			}
			dayStart = dayEnd
		}
	}
	return nil
}

func (s *Scheduler) rollupMonitorDay(ctx context.Context, m *models.Monitor, dayStart, dayEnd time.Time) error {
	outages, err := s.store.ListOutagesInRange(ctx, m.ID, dayStart, dayEnd)
	if err != nil {
		return err
	}
	results, err := s.store.ListCheckResultsInRange(ctx, m.ID, dayStart, dayEnd)
	if err != nil {
		return err
	}

	result := aggregator.ComputeUptime(m, outages, results, dayStart, dayEnd)

	rollup := &models.MonitorDailyRollup{
		MonitorID:   m.ID,
		DayStartAt:  dayStart,
		TotalSec:    result.TotalSec,
		DowntimeSec: result.DowntimeSec,
		UnknownSec:  result.UnknownSec,
		UptimeSec:   result.UptimeSec,
	}
	return s.store.UpsertDailyRollup(ctx, rollup)
}
