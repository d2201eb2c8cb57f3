package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/openuptime/uptimer/internal/models"
	"github.com/openuptime/uptimer/internal/statemachine"
)

func TestHub_BroadcastTransitionEnqueuesEnvelope(t *testing.T) {
	h := NewHub(nil)
	event := statemachine.TransitionEvent{
		Type:      models.EventMonitorDown,
		MonitorID: 7,
		OutageID:  42,
		At:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Error:     "timeout",
	}

	h.BroadcastTransition(event)

	select {
	case raw := <-h.broadcast:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		if msg.Type != "transition" {
			t.Fatalf("got type %q", msg.Type)
		}
		var payload TransitionPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if payload.MonitorID != 7 || payload.OutageID != 42 || payload.Error != "timeout" {
			t.Fatalf("unexpected payload %+v", payload)
		}
	default:
		t.Fatal("expected a message on the broadcast channel")
	}
}

func TestHub_BroadcastHeartbeatEnqueuesEnvelope(t *testing.T) {
	h := NewHub(nil)
	latency := 123
	h.BroadcastHeartbeat(3, models.CheckResult{Status: models.CheckUp, LatencyMS: &latency, CheckedAt: time.Now()})

	select {
	case raw := <-h.broadcast:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		if msg.Type != "heartbeat" {
			t.Fatalf("got type %q", msg.Type)
		}
	default:
		t.Fatal("expected a message on the broadcast channel")
	}
}

func TestHub_BroadcastDropsWhenChannelFull(t *testing.T) {
	h := NewHub(nil)
	for i := 0; i < 256; i++ {
		h.BroadcastHeartbeat(int64(i), models.CheckResult{Status: models.CheckUp, CheckedAt: time.Now()})
	}
	// one more publish beyond capacity must not block the caller
	h.BroadcastHeartbeat(999, models.CheckResult{Status: models.CheckUp, CheckedAt: time.Now()})
}
