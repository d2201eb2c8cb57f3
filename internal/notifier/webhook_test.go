package notifier

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/openuptime/uptimer/internal/models"
)

func TestBuildRequest_JSONPayloadSetsContentTypeAndBody(t *testing.T) {
	cfg := models.ChannelConfig{URL: "https://example.com/hook", Method: http.MethodPost, PayloadType: models.PayloadJSON}

	req, body, err := buildRequest(context.Background(), cfg, map[string]interface{}{"event": "monitor.down"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("expected json content-type, got %q", req.Header.Get("Content-Type"))
	}
	if len(body) == 0 {
		t.Fatalf("expected a non-empty json body")
	}
}

func TestBuildRequest_FormPayloadEncodesBodyAsFormURLEncoded(t *testing.T) {
	cfg := models.ChannelConfig{URL: "https://example.com/hook", Method: http.MethodPost, PayloadType: models.PayloadFormURL}

	req, _, err := buildRequest(context.Background(), cfg, map[string]interface{}{"event": "monitor.down"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
		t.Fatalf("got %q", req.Header.Get("Content-Type"))
	}
	raw, _ := io.ReadAll(req.Body)
	if string(raw) != "event=monitor.down" {
		t.Fatalf("got body %q", raw)
	}
}

func TestBuildRequest_ParamPayloadAppendsToQueryStringWithEmptyBody(t *testing.T) {
	cfg := models.ChannelConfig{URL: "https://example.com/hook", Method: http.MethodPost, PayloadType: models.PayloadParam}

	req, body, err := buildRequest(context.Background(), cfg, map[string]interface{}{"event": "monitor.up"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != nil {
		t.Fatalf("expected no body for param payload, got %q", body)
	}
	if req.URL.Query().Get("event") != "monitor.up" {
		t.Fatalf("expected event param in query string, got %q", req.URL.RawQuery)
	}
}

func TestBuildRequest_GetMethodFallsBackToParamsEvenWithJSONPayloadType(t *testing.T) {
	cfg := models.ChannelConfig{URL: "https://example.com/hook", Method: http.MethodGet, PayloadType: models.PayloadJSON}

	req, body, err := buildRequest(context.Background(), cfg, map[string]interface{}{"event": "monitor.down"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != nil {
		t.Fatalf("GET must never carry a body, got %q", body)
	}
	if req.URL.Query().Get("event") != "monitor.down" {
		t.Fatalf("expected the payload to fall back to query params, got %q", req.URL.RawQuery)
	}
}

func TestFlatten_CoercesNonStringValuesToJSON(t *testing.T) {
	out := flatten(map[string]interface{}{
		"latency_ms": float64(42),
		"note":       "plain",
		"missing":    nil,
	})

	if out["note"] != "plain" {
		t.Fatalf("got %v", out["note"])
	}
	if out["latency_ms"] != "42" {
		t.Fatalf("expected a coerced numeric string, got %q", out["latency_ms"])
	}
	if out["missing"] != "" {
		t.Fatalf("expected nil to flatten to empty string, got %q", out["missing"])
	}
}
