// Package scheduler drives the once-a-minute tick that probes every
// due monitor, applies the state machine, and fans transitions out to
// the notifier and websocket hub. A single cron entry replaces the
// per-monitor ticker goroutine pattern: one lease-holding instance
// probes every due monitor per tick, bounded by a semaphore rather
// than one goroutine per monitor running forever.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/semaphore"

	"github.com/openuptime/uptimer/internal/models"
	"github.com/openuptime/uptimer/internal/probe"
	"github.com/openuptime/uptimer/internal/statemachine"
	"github.com/openuptime/uptimer/internal/store"
)

// Notifier is the subset of the notifier package's API the scheduler
// needs. Declared here, not imported from package notifier, to avoid
// a scheduler<->notifier import cycle.
type Notifier interface {
	Dispatch(ctx context.Context, event statemachine.TransitionEvent)
}

// Broadcaster is the subset of the websocket hub's API the scheduler
// drives after every check and every tick.
type Broadcaster interface {
	BroadcastTransition(event statemachine.TransitionEvent)
	BroadcastHeartbeat(monitorID int64, result models.CheckResult)
}

type Config struct {
	TickInterval          time.Duration
	MaxConcurrentProbes   int
	MaxDueMonitorsPerTick int
	RetentionCheckResults time.Duration
	LeaseTTL              time.Duration
	HolderID              string
}

type Scheduler struct {
	cron      *cron.Cron
	store     *store.Store
	httpProbe *probe.HTTPProbe
	tcpProbe  *probe.TCPProbe
	notifier  Notifier
	hub       Broadcaster
	cfg       Config

	lastRollupDay string
}

func New(st *store.Store, httpProbe *probe.HTTPProbe, tcpProbe *probe.TCPProbe, notifier Notifier, hub Broadcaster, cfg Config) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		store:     st,
		httpProbe: httpProbe,
		tcpProbe:  tcpProbe,
		notifier:  notifier,
		hub:       hub,
		cfg:       cfg,
	}
}

// Start registers the tick at the configured interval and starts the
// cron loop.
func (s *Scheduler) Start() {
	spec := fmt.Sprintf("@every %s", s.cfg.TickInterval)
	tickBudget := s.cfg.TickInterval - 5*time.Second
	if tickBudget <= 0 {
		tickBudget = s.cfg.TickInterval
	}
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickBudget)
		defer cancel()
		if err := s.Tick(ctx); err != nil {
			log.Printf("scheduler tick failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("failed to register scheduler tick: %v", err)
	}
	s.cron.Start()
	log.Printf("scheduler started, ticking every %s", s.cfg.TickInterval)
}

// Stop ends the cron schedule and returns a context that is Done once
// any tick already running has finished, so a caller tearing down the
// process can wait for an in-flight probe batch to drain before moving
// on to the notifier's shutdown.
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	log.Println("scheduler stopped")
	return ctx
}

// Tick claims the scheduling lease, probes every due monitor up to the
// per-tick cap, and fans resulting transitions out to the notifier and
// websocket hub. Every concurrent caller that does not hold the lease
// returns immediately with a nil error; only one instance of a
// horizontally-scaled deployment does real work per tick.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now().UTC()

	held, err := s.store.ClaimLease(ctx, models.SchedulerTickLock, s.cfg.HolderID, now, s.cfg.LeaseTTL)
	if err != nil {
		return err
	}
	if !held {
		return nil
	}
	defer func() {
		if err := s.store.ReleaseLease(context.Background(), models.SchedulerTickLock, s.cfg.HolderID, now); err != nil {
			log.Printf("failed to release scheduler lease: %v", err)
		}
	}()

	monitors, err := s.store.ListDueMonitors(ctx, now, s.cfg.MaxDueMonitorsPerTick)
	if err != nil {
		return err
	}

	if len(monitors) > 0 {
		events := s.checkAll(ctx, monitors, now)
		for _, event := range events {
			if s.hub != nil {
				s.hub.BroadcastTransition(event)
			}
			if s.notifier != nil {
				s.notifier.Dispatch(ctx, event)
			}
		}
	}

	s.maybeRunDailyMaintenance(ctx, now)
	return nil
}

// checkAll probes every monitor concurrently, bounded by
// MaxConcurrentProbes, and returns the transition events the state
// machine decided to emit.
func (s *Scheduler) checkAll(ctx context.Context, monitors []*models.Monitor, now time.Time) []statemachine.TransitionEvent {
	sem := semaphore.NewWeighted(int64(s.cfg.MaxConcurrentProbes))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var events []statemachine.TransitionEvent

	for _, m := range monitors {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(m *models.Monitor) {
			defer wg.Done()
			defer sem.Release(1)

			event, err := s.checkOne(ctx, m, now)
			if err != nil {
				log.Printf("check failed for monitor %d: %v", m.ID, err)
				return
			}
			if event != nil {
				mu.Lock()
				events = append(events, *event)
				mu.Unlock()
			}
		}(m)
	}
	wg.Wait()
	return events
}

// checkOne runs one probe and applies its outcome inside a single
// transaction, so the check_result insert, outage mutation, and state
// upsert commit atomically per monitor.
func (s *Scheduler) checkOne(ctx context.Context, m *models.Monitor, now time.Time) (*statemachine.TransitionEvent, error) {
	outcome := s.runProbe(ctx, m)

	var event *statemachine.TransitionEvent
	err := s.store.Transaction(ctx, func(q *store.Queries) error {
		state, err := q.GetState(ctx, m.ID)
		if err != nil {
			return err
		}
		inMaintenance, err := q.IsMonitorInMaintenance(ctx, m.ID, now)
		if err != nil {
			return err
		}
		openOutage, err := q.GetOpenOutage(ctx, m.ID)
		if err != nil {
			return err
		}
		var openOutageID int64
		if openOutage != nil {
			openOutageID = openOutage.ID
		}

		decision := statemachine.Decide(m.ID, m.IsActive, inMaintenance, *state, openOutageID, outcome, statemachine.Thresholds{
			FailuresToDown: m.FailuresToDown,
			SuccessesToUp:  m.SuccessesToUp,
		}, now)

		if err := q.InsertCheckResult(ctx, &decision.CheckResult); err != nil {
			return err
		}
		if decision.OpenOutage {
			opened, err := q.OpenOutage(ctx, m.ID, now, decision.OpenOutageErr)
			if err != nil {
				return err
			}
			if decision.Event != nil {
				decision.Event.OutageID = opened.ID
			}
		}
		if decision.CloseOutageID > 0 {
			if err := q.CloseOutage(ctx, decision.CloseOutageID, now); err != nil {
				return err
			}
		}
		if decision.UpdateOutageID > 0 {
			if err := q.UpdateOutageError(ctx, decision.UpdateOutageID, decision.UpdateOutageErr); err != nil {
				return err
			}
		}
		if err := q.UpsertState(ctx, &decision.NewState); err != nil {
			return err
		}

		if s.hub != nil {
			s.hub.BroadcastHeartbeat(m.ID, decision.CheckResult)
		}
		event = decision.Event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// runProbe dispatches to the executor matching the monitor's type. It
// never returns a non-nil error; an unsupported type is reported as a
// down outcome so it still flows through the state machine.
func (s *Scheduler) runProbe(ctx context.Context, m *models.Monitor) probe.Outcome {
	switch m.Type {
	case models.MonitorTypeHTTP:
		return s.httpProbe.Check(ctx, probe.HTTPTarget{HTTPMonitorConfig: m.HTTPConfig(), TimeoutMS: m.TimeoutMS})
	case models.MonitorTypeTCP:
		tcp := m.TCPConfig()
		return s.tcpProbe.Check(ctx, probe.TCPTarget{Host: tcp.Host, Port: tcp.Port, TimeoutMS: m.TimeoutMS})
	default:
		return probe.Outcome{Status: probe.Down, Error: "unsupported_monitor_type"}
	}
}

// maybeRunDailyMaintenance purges expired check results and rolls up
// the previous UTC day's outage intervals once per calendar day. It
// runs inline on whichever tick first observes the new day rather than
// a separate cron entry, so a quiet midnight with zero due monitors
// still triggers it.
func (s *Scheduler) maybeRunDailyMaintenance(ctx context.Context, now time.Time) {
	day := now.Format("2006-01-02")
	if day == s.lastRollupDay {
		return
	}
	s.lastRollupDay = day

	if s.cfg.RetentionCheckResults > 0 {
		cutoff := now.Add(-s.cfg.RetentionCheckResults)
		n, err := s.store.PurgeCheckResultsBefore(ctx, cutoff)
		if err != nil {
			log.Printf("retention purge failed: %v", err)
		} else if n > 0 {
			log.Printf("purged %d expired check results", n)
		}
	}

	if err := s.rollupPreviousDay(ctx, now); err != nil {
		log.Printf("daily rollup failed: %v", err)
	}
}
