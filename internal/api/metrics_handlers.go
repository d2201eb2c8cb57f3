package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/openuptime/uptimer/internal/aggregator"
)

// HandlePrometheusMetrics exports the same counts the aggregator
// computes in Prometheus text exposition format, for operators who
// scrape rather than poll `/status`. It reads the same cached
// snapshot `/status` serves, so scraping never forces an extra
// aggregation pass over the Store.
func HandlePrometheusMetrics(cache *aggregator.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")

		cached, err := cache.Get(r.Context())
		if err != nil {
			http.Error(w, "failed to load status snapshot", http.StatusInternalServerError)
			return
		}
		var snap aggregator.Snapshot
		if err := json.Unmarshal([]byte(cached.Body), &snap); err != nil {
			http.Error(w, "failed to decode status snapshot", http.StatusInternalServerError)
			return
		}

		fmt.Fprintln(w, "# HELP uptimer_monitor_up Monitor effective status (1 = up, 0 = not up)")
		fmt.Fprintln(w, "# TYPE uptimer_monitor_up gauge")
		fmt.Fprintln(w, "# HELP uptimer_monitor_latency_ms Most recent probe latency in milliseconds")
		fmt.Fprintln(w, "# TYPE uptimer_monitor_latency_ms gauge")

		for _, m := range snap.Monitors {
			labels := fmt.Sprintf(`monitor_id="%d",monitor_name="%s",monitor_type="%s",status="%s"`,
				m.ID, m.Name, m.Type, m.EffectiveStatus)

			up := 0
			if m.EffectiveStatus == "up" {
				up = 1
			}
			fmt.Fprintf(w, "uptimer_monitor_up{%s} %d\n", labels, up)

			if m.LastLatencyMS != nil {
				fmt.Fprintf(w, "uptimer_monitor_latency_ms{%s} %d\n", labels, *m.LastLatencyMS)
			}
		}

		fmt.Fprintln(w, "# HELP uptimer_system_monitors_total Monitor counts by effective status")
		fmt.Fprintln(w, "# TYPE uptimer_system_monitors_total gauge")
		fmt.Fprintf(w, "uptimer_system_monitors_total{status=\"up\"} %d\n", snap.Summary.Up)
		fmt.Fprintf(w, "uptimer_system_monitors_total{status=\"down\"} %d\n", snap.Summary.Down)
		fmt.Fprintf(w, "uptimer_system_monitors_total{status=\"maintenance\"} %d\n", snap.Summary.Maintenance)
		fmt.Fprintf(w, "uptimer_system_monitors_total{status=\"paused\"} %d\n", snap.Summary.Paused)
		fmt.Fprintf(w, "uptimer_system_monitors_total{status=\"unknown\"} %d\n", snap.Summary.Unknown)

		fmt.Fprintln(w, "# HELP uptimer_system_open_incidents Number of currently open incidents")
		fmt.Fprintln(w, "# TYPE uptimer_system_open_incidents gauge")
		fmt.Fprintf(w, "uptimer_system_open_incidents %d\n", len(snap.ActiveIncidents))

		fmt.Fprintln(w, "# HELP uptimer_system_scrape_timestamp_seconds Unix timestamp of this scrape")
		fmt.Fprintln(w, "# TYPE uptimer_system_scrape_timestamp_seconds gauge")
		fmt.Fprintf(w, "uptimer_system_scrape_timestamp_seconds %d\n", time.Now().Unix())
	}
}
