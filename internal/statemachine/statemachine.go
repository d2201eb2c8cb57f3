// Package statemachine applies one probe outcome to one monitor's
// persisted state. It is deliberately side-effect free:
// callers run Decide inside a store.Transaction and persist its result
// themselves, so the (check_result insert, outage mutation, state
// upsert) triple stays atomic per monitor.
package statemachine

import (
	"fmt"
	"time"

	"github.com/openuptime/uptimer/internal/models"
	"github.com/openuptime/uptimer/internal/probe"
)

// TransitionEvent is emitted when a state crosses the UP/DOWN
// threshold. It is queued for the Notifier; emission never blocks
// state persistence.
type TransitionEvent struct {
	Type      models.EventType
	MonitorID int64
	OutageID  int64
	At        time.Time
	Error     string
	LatencyMS int
}

// EventKey is the deterministic dedup key the Notifier claims against:
// retrying the same transition must never produce duplicate sends.
func (e TransitionEvent) EventKey() string {
	if e.OutageID > 0 {
		return fmt.Sprintf("%s:%d:%d", e.Type, e.MonitorID, e.OutageID)
	}
	return fmt.Sprintf("%s:%d:%d", e.Type, e.MonitorID, e.At.UnixNano())
}

// Thresholds holds the per-monitor failure/success counts that decide
// when a run of outcomes crosses the UP/DOWN boundary.
type Thresholds struct {
	FailuresToDown int
	SuccessesToUp  int
}

// Decision is the pure output of applying one outcome to one state:
// the new state row, the outage mutation to perform (if any), the
// check_result row to write, and the transition event to emit (if
// any). Nothing here has touched the database.
type Decision struct {
	CheckResult     models.CheckResult
	NewState        models.MonitorState
	OpenOutage      bool   // Decide() wants a new outage opened
	OpenOutageErr   string
	CloseOutageID   int64  // > 0 when Decide() wants this outage closed
	UpdateOutageID  int64  // > 0 when Decide() wants only last_error refreshed
	UpdateOutageErr string
	Event           *TransitionEvent
}

// Decide applies outcome at time now to the monitor's current state.
// state, inMaintenance, and openOutageID are read by the caller inside
// the same transaction that will persist the result, so the decision
// and the write observe a consistent snapshot; isActive comes from the
// monitor row the caller loaded before that transaction.
func Decide(monitorID int64, isActive, inMaintenance bool, state models.MonitorState, openOutageID int64, outcome probe.Outcome, th Thresholds, now time.Time) Decision {
	if !isActive {
		return Decision{
			CheckResult: models.CheckResult{
				MonitorID: monitorID,
				CheckedAt: now,
				Status:    models.CheckPaused,
			},
			NewState: state, // unchanged
		}
	}

	if inMaintenance {
		st := state
		st.Status = models.StatusMaintenance
		return Decision{
			CheckResult: models.CheckResult{
				MonitorID: monitorID,
				CheckedAt: now,
				Status:    models.CheckMaintenance,
			},
			NewState: st,
		}
	}

	latency := outcome.LatencyMS
	errStr := outcome.Error

	cr := models.CheckResult{
		MonitorID: monitorID,
		CheckedAt: now,
	}
	if latency > 0 || outcome.Status == probe.Up {
		l := latency
		cr.LatencyMS = &l
	}
	if errStr != "" {
		e := errStr
		cr.Error = &e
	}

	st := state
	st.LastCheckedAt = &now
	if latency > 0 || outcome.Status == probe.Up {
		l := latency
		st.LastLatencyMS = &l
	}

	d := Decision{NewState: st}

	if outcome.Status == probe.Up {
		cr.Status = models.CheckUp
		st.ConsecutiveSuccesses++
		st.ConsecutiveFailures = 0
		st.LastError = nil

		if (state.Status == models.StatusDown || state.Status == models.StatusUnknown) && st.ConsecutiveSuccesses >= th.SuccessesToUp {
			st.Status = models.StatusUp
			d.CloseOutageID = openOutageID
			d.Event = &TransitionEvent{
				Type:      models.EventMonitorUp,
				MonitorID: monitorID,
				OutageID:  openOutageID,
				At:        now,
				LatencyMS: latency,
			}
		}
	} else {
		cr.Status = models.CheckDown
		st.ConsecutiveFailures++
		st.ConsecutiveSuccesses = 0
		e := errStr
		st.LastError = &e

		if (state.Status == models.StatusUp || state.Status == models.StatusUnknown) && st.ConsecutiveFailures >= th.FailuresToDown {
			st.Status = models.StatusDown
			d.OpenOutage = true
			d.OpenOutageErr = errStr
			d.Event = &TransitionEvent{
				Type:      models.EventMonitorDown,
				MonitorID: monitorID,
				At:        now,
				Error:     errStr,
			}
		} else if state.Status == models.StatusDown {
			d.UpdateOutageID = openOutageID
			d.UpdateOutageErr = errStr
		}
	}

	d.CheckResult = cr
	d.NewState = st
	return d
}
