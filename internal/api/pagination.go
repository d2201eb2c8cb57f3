package api

import (
	"net/http"
	"strconv"
	"time"
)

const defaultPageLimit = 20
const maxPageLimit = 100

func parseCursor(r *http.Request) int64 {
	v := r.URL.Query().Get("cursor")
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseLimit(r *http.Request, fallback int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > maxPageLimit {
		return maxPageLimit
	}
	return n
}

// parseRange resolves the conventional ?range= query param (e.g.
// "24h", "7d", "30d", "90d") to a duration, falling back when absent
// or unrecognized.
func parseRange(r *http.Request, fallback time.Duration) time.Duration {
	v := r.URL.Query().Get("range")
	switch v {
	case "24h":
		return 24 * time.Hour
	case "7d":
		return 7 * 24 * time.Hour
	case "30d":
		return 30 * 24 * time.Hour
	case "90d":
		return 90 * 24 * time.Hour
	default:
		return fallback
	}
}

func nextCursor(lastID int64, gotFullPage bool) *int64 {
	if !gotFullPage || lastID <= 0 {
		return nil
	}
	return &lastID
}
