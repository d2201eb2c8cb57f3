package aggregator

import (
	"sort"
	"time"

	"github.com/openuptime/uptimer/internal/models"
)

type interval struct {
	start, end time.Time
}

// UptimeResult is the downtime/unknown/uptime split for one monitor
// over one window. DowntimeSec + UnknownSec + UptimeSec never exceeds
// TotalSec.
type UptimeResult struct {
	TotalSec    int64
	DowntimeSec int64
	UnknownSec  int64
	UptimeSec   int64
	UptimePct   *float64
}

// ComputeUptime is pure: it takes the already-loaded outages and check
// results for one monitor and returns the interval split for
// [rangeStart, rangeEnd), clamped to monitor.created_at.
func ComputeUptime(monitor *models.Monitor, outages []*models.Outage, results []*models.CheckResult, rangeStart, rangeEnd time.Time) UptimeResult {
	start := rangeStart
	if monitor.CreatedAt.After(start) {
		start = monitor.CreatedAt
	}
	end := rangeEnd
	if end.Before(start) {
		end = start
	}

	var downtime []interval
	for _, o := range outages {
		endedAt := end
		if o.EndedAt != nil {
			endedAt = *o.EndedAt
		}
		downtime = append(downtime, interval{o.StartedAt, endedAt})
	}
	downtime = mergeIntervals(clipIntervals(downtime, start, end))

	coverage := time.Duration(2*monitor.IntervalSec) * time.Second
	var known, explicitUnknown []interval
	for _, r := range results {
		cov := interval{r.CheckedAt, r.CheckedAt.Add(coverage)}
		if r.Status == models.CheckUnknown {
			explicitUnknown = append(explicitUnknown, cov)
		} else {
			known = append(known, cov)
		}
	}
	known = mergeIntervals(clipIntervals(known, start, end))
	explicitUnknown = mergeIntervals(clipIntervals(explicitUnknown, start, end))

	gaps := complement(known, start, end)
	unknown := mergeIntervals(append(gaps, explicitUnknown...))

	totalSec := int64(end.Sub(start).Seconds())
	downtimeSec := durationSeconds(downtime)
	unknownSec := durationSeconds(unknown) - overlapSeconds(unknown, downtime)
	if unknownSec < 0 {
		unknownSec = 0
	}

	uptimeSec := totalSec - minInt64(totalSec, downtimeSec+unknownSec)

	var pct *float64
	if totalSec > 0 {
		p := 100 * float64(uptimeSec) / float64(totalSec)
		pct = &p
	}

	return UptimeResult{
		TotalSec:    totalSec,
		DowntimeSec: downtimeSec,
		UnknownSec:  unknownSec,
		UptimeSec:   uptimeSec,
		UptimePct:   pct,
	}
}

func clipIntervals(ivs []interval, start, end time.Time) []interval {
	var out []interval
	for _, iv := range ivs {
		s := iv.start
		if s.Before(start) {
			s = start
		}
		e := iv.end
		if e.After(end) {
			e = end
		}
		if e.After(s) {
			out = append(out, interval{s, e})
		}
	}
	return out
}

func mergeIntervals(ivs []interval) []interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make([]interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start.Before(sorted[j].start) })

	out := []interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.start.After(last.end) {
			out = append(out, iv)
		} else if iv.end.After(last.end) {
			last.end = iv.end
		}
	}
	return out
}

// complement returns the gaps in a merged, sorted interval set within
// [start, end).
func complement(merged []interval, start, end time.Time) []interval {
	var out []interval
	cursor := start
	for _, iv := range merged {
		if iv.start.After(cursor) {
			out = append(out, interval{cursor, iv.start})
		}
		if iv.end.After(cursor) {
			cursor = iv.end
		}
	}
	if end.After(cursor) {
		out = append(out, interval{cursor, end})
	}
	return out
}

func durationSeconds(ivs []interval) int64 {
	var sum int64
	for _, iv := range ivs {
		sum += int64(iv.end.Sub(iv.start).Seconds())
	}
	return sum
}

// overlapSeconds sums the overlap between two merged interval sets, so
// callers can avoid double-counting unknown time that already fell
// inside a downtime interval.
func overlapSeconds(a, b []interval) int64 {
	var sum int64
	for _, x := range a {
		for _, y := range b {
			s := x.start
			if y.start.After(s) {
				s = y.start
			}
			e := x.end
			if y.end.Before(e) {
				e = y.end
			}
			if e.After(s) {
				sum += int64(e.Sub(s).Seconds())
			}
		}
	}
	return sum
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
