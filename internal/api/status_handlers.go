package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openuptime/uptimer/internal/aggregator"
	"github.com/openuptime/uptimer/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func monitorIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// HandleStatus serves the snapshot the Aggregator computes.
// Cache-Control is picked from the snapshot's freshness tier, with a
// fixed max-age per tier; it does not count down the time left in the
// tier.
func HandleStatus(cache *aggregator.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := cache.Get(r.Context())
		if err != nil {
			http.Error(w, "failed to load status snapshot", http.StatusInternalServerError)
			return
		}

		switch cache.Classify(snap) {
		case aggregator.FreshnessFresh:
			w.Header().Set("Cache-Control", "public, max-age=30")
		case aggregator.FreshnessStale:
			w.Header().Set("Cache-Control", "public, max-age=5, stale-while-revalidate=30")
		default:
			w.Header().Set("Cache-Control", "no-cache")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(snap.Body))
	}
}

type latencyPoint struct {
	CheckedAt time.Time `json:"checked_at"`
	LatencyMS int       `json:"latency_ms"`
}

type latencyResponse struct {
	Points       []latencyPoint `json:"points"`
	AvgLatencyMS *float64       `json:"avg_latency_ms"`
	P95LatencyMS *float64       `json:"p95_latency_ms"`
}

// HandleMonitorLatency serves `/monitors/{id}/latency?range=24h`.
func HandleMonitorLatency(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		monitorID, ok := monitorIDParam(r)
		if !ok {
			http.Error(w, "invalid monitor id", http.StatusBadRequest)
			return
		}
		window := parseRange(r, 24*time.Hour)
		now := time.Now().UTC()

		results, err := st.ListCheckResultsInRange(r.Context(), monitorID, now.Add(-window), now)
		if err != nil {
			http.Error(w, "failed to load check results", http.StatusInternalServerError)
			return
		}

		resp := latencyResponse{Points: make([]latencyPoint, 0, len(results))}
		var latencies []int
		for _, res := range results {
			if res.LatencyMS == nil {
				continue
			}
			resp.Points = append(resp.Points, latencyPoint{CheckedAt: res.CheckedAt, LatencyMS: *res.LatencyMS})
			latencies = append(latencies, *res.LatencyMS)
		}
		if avg := average(latencies); avg != nil {
			resp.AvgLatencyMS = avg
		}
		if p95 := percentile(latencies, 0.95); p95 != nil {
			resp.P95LatencyMS = p95
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func average(values []int) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum int
	for _, v := range values {
		sum += v
	}
	avg := float64(sum) / float64(len(values))
	return &avg
}

func percentile(values []int, p float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	idx := int(p * float64(len(sorted)-1))
	v := float64(sorted[idx])
	return &v
}

// HandleMonitorUptime serves `/monitors/{id}/uptime?range=24h|7d|30d`.
func HandleMonitorUptime(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		monitorID, ok := monitorIDParam(r)
		if !ok {
			http.Error(w, "invalid monitor id", http.StatusBadRequest)
			return
		}
		window := parseRange(r, 24*time.Hour)
		now := time.Now().UTC()
		start := now.Add(-window)

		monitor, err := st.GetMonitor(r.Context(), monitorID)
		if err != nil {
			http.Error(w, "monitor not found", http.StatusNotFound)
			return
		}
		outages, err := st.ListOutagesInRange(r.Context(), monitorID, start, now)
		if err != nil {
			http.Error(w, "failed to load outages", http.StatusInternalServerError)
			return
		}
		results, err := st.ListCheckResultsInRange(r.Context(), monitorID, start, now)
		if err != nil {
			http.Error(w, "failed to load check results", http.StatusInternalServerError)
			return
		}

		result := aggregator.ComputeUptime(monitor, outages, results, start, now)
		writeJSON(w, http.StatusOK, result)
	}
}

type outagePage struct {
	Outages    []interface{} `json:"outages"`
	NextCursor *int64        `json:"next_cursor"`
}

// HandleMonitorOutages serves `/monitors/{id}/outages?range=30d`,
// paginated by descending id.
func HandleMonitorOutages(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		monitorID, ok := monitorIDParam(r)
		if !ok {
			http.Error(w, "invalid monitor id", http.StatusBadRequest)
			return
		}
		window := parseRange(r, 30*24*time.Hour)
		since := time.Now().UTC().Add(-window)
		cursor := parseCursor(r)
		limit := parseLimit(r, defaultPageLimit)

		outages, err := st.ListOutagesPage(r.Context(), monitorID, since, cursor, limit)
		if err != nil {
			http.Error(w, "failed to load outages", http.StatusInternalServerError)
			return
		}

		page := outagePage{Outages: make([]interface{}, 0, len(outages))}
		var lastID int64
		for _, o := range outages {
			page.Outages = append(page.Outages, o)
			lastID = o.ID
		}
		page.NextCursor = nextCursor(lastID, len(outages) == limit)

		writeJSON(w, http.StatusOK, page)
	}
}

type analyticsEntry struct {
	MonitorID   int64    `json:"monitor_id"`
	MonitorName string   `json:"monitor_name"`
	TotalSec    int64    `json:"total_sec"`
	DowntimeSec int64    `json:"downtime_sec"`
	UnknownSec  int64    `json:"unknown_sec"`
	UptimeSec   int64    `json:"uptime_sec"`
	UptimePct   *float64 `json:"uptime_pct"`
}

type analyticsResponse struct {
	RangeDays int              `json:"range_days"`
	Overview  analyticsEntry   `json:"overview"`
	Monitors  []analyticsEntry `json:"monitors"`
}

// HandleAnalyticsUptime serves `/analytics/uptime?range=30d|90d`,
// summing the precomputed daily rollups for every whole past day in
// range plus a live-computed slice for today, which never has a
// rollup row of its own yet.
func HandleAnalyticsUptime(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window := parseRange(r, 30*24*time.Hour)
		now := time.Now().UTC()
		start := now.Add(-window)
		todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		monitors, err := st.ListActiveMonitors(r.Context())
		if err != nil {
			http.Error(w, "failed to load monitors", http.StatusInternalServerError)
			return
		}

		entries := make([]analyticsEntry, 0, len(monitors))
		var overviewTotal, overviewDowntime, overviewUnknown, overviewUptime int64
		for _, m := range monitors {
			rollups, err := st.RollupsInRange(r.Context(), m.ID, start, todayStart)
			if err != nil {
				http.Error(w, "failed to load rollups", http.StatusInternalServerError)
				return
			}
			entry := analyticsEntry{MonitorID: m.ID, MonitorName: m.Name}
			for _, ru := range rollups {
				entry.TotalSec += ru.TotalSec
				entry.DowntimeSec += ru.DowntimeSec
				entry.UnknownSec += ru.UnknownSec
				entry.UptimeSec += ru.UptimeSec
			}

			todayOutages, err := st.ListOutagesInRange(r.Context(), m.ID, todayStart, now)
			if err != nil {
				http.Error(w, "failed to load today's outages", http.StatusInternalServerError)
				return
			}
			todayResults, err := st.ListCheckResultsInRange(r.Context(), m.ID, todayStart, now)
			if err != nil {
				http.Error(w, "failed to load today's check results", http.StatusInternalServerError)
				return
			}
			today := aggregator.ComputeUptime(m, todayOutages, todayResults, todayStart, now)
			entry.TotalSec += today.TotalSec
			entry.DowntimeSec += today.DowntimeSec
			entry.UnknownSec += today.UnknownSec
			entry.UptimeSec += today.UptimeSec

			if entry.TotalSec > 0 {
				pct := 100 * float64(entry.UptimeSec) / float64(entry.TotalSec)
				entry.UptimePct = &pct
			}
			entries = append(entries, entry)

			overviewTotal += entry.TotalSec
			overviewDowntime += entry.DowntimeSec
			overviewUnknown += entry.UnknownSec
			overviewUptime += entry.UptimeSec
		}

		overview := analyticsEntry{
			TotalSec:    overviewTotal,
			DowntimeSec: overviewDowntime,
			UnknownSec:  overviewUnknown,
			UptimeSec:   overviewUptime,
		}
		if overviewTotal > 0 {
			pct := 100 * float64(overviewUptime) / float64(overviewTotal)
			overview.UptimePct = &pct
		}

		writeJSON(w, http.StatusOK, analyticsResponse{
			RangeDays: int(window.Hours() / 24),
			Overview:  overview,
			Monitors:  entries,
		})
	}
}
