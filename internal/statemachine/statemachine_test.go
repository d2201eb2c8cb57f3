package statemachine

import (
	"testing"
	"time"

	"github.com/openuptime/uptimer/internal/models"
	"github.com/openuptime/uptimer/internal/probe"
)

func thresholds() Thresholds {
	return Thresholds{FailuresToDown: 3, SuccessesToUp: 2}
}

func TestDecide_PausedMonitorSkipsProbeEntirely(t *testing.T) {
	now := time.Now()
	state := *models.NewMonitorState(1)
	state.Status = models.StatusUp

	d := Decide(1, false, false, state, 0, probe.Outcome{Status: probe.Up}, thresholds(), now)

	if d.CheckResult.Status != models.CheckPaused {
		t.Fatalf("expected paused check result, got %q", d.CheckResult.Status)
	}
	if d.NewState.Status != models.StatusUp {
		t.Fatalf("paused monitor must not mutate state, got %q", d.NewState.Status)
	}
	if d.Event != nil {
		t.Fatalf("paused monitor must not emit a transition event")
	}
}

func TestDecide_MaintenanceWindowOverridesDownOutcome(t *testing.T) {
	now := time.Now()
	state := *models.NewMonitorState(1)
	state.Status = models.StatusUp

	d := Decide(1, true, true, state, 0, probe.Outcome{Status: probe.Down, Error: "connect_refused"}, thresholds(), now)

	if d.CheckResult.Status != models.CheckMaintenance {
		t.Fatalf("expected maintenance check result, got %q", d.CheckResult.Status)
	}
	if d.NewState.Status != models.StatusMaintenance {
		t.Fatalf("expected maintenance status, got %q", d.NewState.Status)
	}
	if d.Event != nil {
		t.Fatalf("maintenance window must suppress transition events")
	}
}

func TestDecide_DownNotCrossedUntilThreshold(t *testing.T) {
	now := time.Now()
	state := *models.NewMonitorState(1)
	state.Status = models.StatusUp

	d1 := Decide(1, true, false, state, 0, probe.Outcome{Status: probe.Down, Error: "timeout"}, thresholds(), now)
	if d1.NewState.Status != models.StatusUp {
		t.Fatalf("one failure must not cross the down threshold, got %q", d1.NewState.Status)
	}
	if d1.Event != nil {
		t.Fatalf("no event expected before threshold is crossed")
	}
	if d1.OpenOutage {
		t.Fatalf("no outage should open before threshold is crossed")
	}

	d2 := Decide(1, true, false, d1.NewState, 0, probe.Outcome{Status: probe.Down, Error: "timeout"}, thresholds(), now)
	if d2.NewState.Status != models.StatusUp {
		t.Fatalf("second failure must still not cross the down threshold, got %q", d2.NewState.Status)
	}

	d3 := Decide(1, true, false, d2.NewState, 0, probe.Outcome{Status: probe.Down, Error: "timeout"}, thresholds(), now)
	if d3.NewState.Status != models.StatusDown {
		t.Fatalf("third consecutive failure must cross the down threshold, got %q", d3.NewState.Status)
	}
	if d3.Event == nil || d3.Event.Type != models.EventMonitorDown {
		t.Fatalf("expected a monitor.down transition event")
	}
	if !d3.OpenOutage {
		t.Fatalf("expected Decide to request a new outage")
	}
}

func TestDecide_AlreadyDownRefreshesOutageErrorWithoutNewEvent(t *testing.T) {
	now := time.Now()
	state := *models.NewMonitorState(1)
	state.Status = models.StatusDown
	state.ConsecutiveFailures = 5

	d := Decide(1, true, false, state, 42, probe.Outcome{Status: probe.Down, Error: "dns_error"}, thresholds(), now)

	if d.Event != nil {
		t.Fatalf("repeated down outcomes must not re-emit a transition event")
	}
	if d.UpdateOutageID != 42 {
		t.Fatalf("expected the open outage to be refreshed, got id %d", d.UpdateOutageID)
	}
	if d.UpdateOutageErr != "dns_error" {
		t.Fatalf("expected refreshed outage error, got %q", d.UpdateOutageErr)
	}
}

func TestDecide_UpCrossingRequiresConsecutiveSuccesses(t *testing.T) {
	now := time.Now()
	state := *models.NewMonitorState(1)
	state.Status = models.StatusDown
	state.ConsecutiveFailures = 3

	d1 := Decide(1, true, false, state, 7, probe.Outcome{Status: probe.Up, LatencyMS: 50}, thresholds(), now)
	if d1.NewState.Status != models.StatusDown {
		t.Fatalf("one success must not cross the up threshold, got %q", d1.NewState.Status)
	}
	if d1.Event != nil {
		t.Fatalf("no event expected before the up threshold is crossed")
	}

	d2 := Decide(1, true, false, d1.NewState, 7, probe.Outcome{Status: probe.Up, LatencyMS: 40}, thresholds(), now)
	if d2.NewState.Status != models.StatusUp {
		t.Fatalf("second consecutive success must cross the up threshold, got %q", d2.NewState.Status)
	}
	if d2.Event == nil || d2.Event.Type != models.EventMonitorUp {
		t.Fatalf("expected a monitor.up transition event")
	}
	if d2.CloseOutageID != 7 {
		t.Fatalf("expected the open outage to be closed, got id %d", d2.CloseOutageID)
	}
}

func TestDecide_FailureResetsSuccessStreakAndViceVersa(t *testing.T) {
	now := time.Now()
	state := *models.NewMonitorState(1)
	state.Status = models.StatusDown
	state.ConsecutiveSuccesses = 1

	d := Decide(1, true, false, state, 0, probe.Outcome{Status: probe.Down, Error: "timeout"}, thresholds(), now)
	if d.NewState.ConsecutiveSuccesses != 0 {
		t.Fatalf("a failure must reset the success streak, got %d", d.NewState.ConsecutiveSuccesses)
	}

	state2 := *models.NewMonitorState(1)
	state2.Status = models.StatusUp
	state2.ConsecutiveFailures = 1

	d2 := Decide(1, true, false, state2, 0, probe.Outcome{Status: probe.Up, LatencyMS: 10}, thresholds(), now)
	if d2.NewState.ConsecutiveFailures != 0 {
		t.Fatalf("a success must reset the failure streak, got %d", d2.NewState.ConsecutiveFailures)
	}
}
