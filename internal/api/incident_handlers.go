package api

import (
	"net/http"

	"github.com/openuptime/uptimer/internal/store"
)

type incidentsPage struct {
	Incidents  []interface{} `json:"incidents"`
	NextCursor *int64        `json:"next_cursor"`
}

// HandleIncidents serves `/incidents?limit&cursor`, paginated by
// descending id.
func HandleIncidents(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cursor := parseCursor(r)
		limit := parseLimit(r, defaultPageLimit)

		incidents, err := st.ListIncidents(r.Context(), cursor, limit)
		if err != nil {
			http.Error(w, "failed to load incidents", http.StatusInternalServerError)
			return
		}

		page := incidentsPage{Incidents: make([]interface{}, 0, len(incidents))}
		var lastID int64
		for _, inc := range incidents {
			page.Incidents = append(page.Incidents, inc)
			lastID = inc.ID
		}
		page.NextCursor = nextCursor(lastID, len(incidents) == limit)

		writeJSON(w, http.StatusOK, page)
	}
}

type maintenanceWindowsPage struct {
	MaintenanceWindows []interface{} `json:"maintenance_windows"`
	NextCursor         *int64        `json:"next_cursor"`
}

// HandleMaintenanceWindows serves `/maintenance-windows?limit&cursor`,
// paginated by descending id.
func HandleMaintenanceWindows(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cursor := parseCursor(r)
		limit := parseLimit(r, defaultPageLimit)

		windows, err := st.ListMaintenanceWindows(r.Context(), cursor, limit)
		if err != nil {
			http.Error(w, "failed to load maintenance windows", http.StatusInternalServerError)
			return
		}

		page := maintenanceWindowsPage{MaintenanceWindows: make([]interface{}, 0, len(windows))}
		var lastID int64
		for _, mw := range windows {
			page.MaintenanceWindows = append(page.MaintenanceWindows, mw)
			lastID = mw.ID
		}
		page.NextCursor = nextCursor(lastID, len(windows) == limit)

		writeJSON(w, http.StatusOK, page)
	}
}
