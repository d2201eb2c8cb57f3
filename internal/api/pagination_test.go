package api

import (
	"net/http"
	"net/url"
	"testing"
	"time"
)

func reqWithQuery(raw string) *http.Request {
	return &http.Request{URL: &url.URL{RawQuery: raw}}
}

func TestParseCursor_DefaultsToZeroWhenAbsentOrInvalid(t *testing.T) {
	if got := parseCursor(reqWithQuery("")); got != 0 {
		t.Fatalf("got %d", got)
	}
	if got := parseCursor(reqWithQuery("cursor=not-a-number")); got != 0 {
		t.Fatalf("got %d", got)
	}
	if got := parseCursor(reqWithQuery("cursor=-5")); got != 0 {
		t.Fatalf("got %d", got)
	}
	if got := parseCursor(reqWithQuery("cursor=42")); got != 42 {
		t.Fatalf("got %d", got)
	}
}

func TestParseLimit_ClampsToMaxAndFallsBackOnInvalid(t *testing.T) {
	if got := parseLimit(reqWithQuery(""), 20); got != 20 {
		t.Fatalf("got %d", got)
	}
	if got := parseLimit(reqWithQuery("limit=0"), 20); got != 20 {
		t.Fatalf("got %d", got)
	}
	if got := parseLimit(reqWithQuery("limit=9999"), 20); got != maxPageLimit {
		t.Fatalf("got %d, want clamp to %d", got, maxPageLimit)
	}
	if got := parseLimit(reqWithQuery("limit=5"), 20); got != 5 {
		t.Fatalf("got %d", got)
	}
}

func TestParseRange_RecognizesConventionalValues(t *testing.T) {
	cases := map[string]time.Duration{
		"range=24h": 24 * time.Hour,
		"range=7d":  7 * 24 * time.Hour,
		"range=30d": 30 * 24 * time.Hour,
		"range=90d": 90 * 24 * time.Hour,
		"range=bogus": time.Hour,
		"":            time.Hour,
	}
	for raw, want := range cases {
		if got := parseRange(reqWithQuery(raw), time.Hour); got != want {
			t.Fatalf("query %q: got %v, want %v", raw, got, want)
		}
	}
}

func TestNextCursor_OnlySetWhenPageIsFull(t *testing.T) {
	if got := nextCursor(10, false); got != nil {
		t.Fatalf("expected nil cursor on a partial page, got %v", *got)
	}
	if got := nextCursor(0, true); got != nil {
		t.Fatalf("expected nil cursor when lastID is zero, got %v", *got)
	}
	got := nextCursor(10, true)
	if got == nil || *got != 10 {
		t.Fatalf("expected cursor 10, got %v", got)
	}
}
