// Package notifier renders and dispatches webhook deliveries for
// transition and lifecycle events. Delivery is
// at-most-once per (event_key, channel_id): the claim is a unique
// insert in the store, so the guarantee holds across restarts and
// across multiple scheduler instances, not just within one process.
package notifier

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/openuptime/uptimer/internal/models"
	"github.com/openuptime/uptimer/internal/statemachine"
	"github.com/openuptime/uptimer/internal/store"
)

// Event is the generic notification input shared by scheduler
// transitions and operator-authored lifecycle events (incidents,
// maintenance windows, test pings). Vars seeds template rendering in
// addition to the {channel, event, event_id, timestamp} variables
// every render adds automatically.
type Event struct {
	Type      models.EventType
	EventKey  string
	MonitorID int64
	Vars      map[string]interface{}
}

// storeCallTimeout bounds the claim/finalize store calls around a
// delivery. It's independent of the channel's configured timeout_ms,
// which only governs the webhook send itself.
const storeCallTimeout = 5 * time.Second

type Notifier struct {
	store         *store.Store
	maxConcurrent int
	resolveSecret func(ref string) (string, bool)
	now           func() time.Time
	inFlight      sync.WaitGroup
}

func New(st *store.Store, maxConcurrent int) *Notifier {
	return &Notifier{
		store:         st,
		maxConcurrent: maxConcurrent,
		resolveSecret: os.LookupEnv,
		now:           time.Now,
	}
}

// Wait blocks until every dispatched delivery has been claimed, sent,
// and finalized, or ctx expires first. The process shutdown path calls
// this after the HTTP server and scheduler have both stopped accepting
// new work, so a webhook send in flight at SIGTERM still finishes.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch satisfies the scheduler's Notifier interface: it converts a
// state-machine transition into the generic Event shape and runs it
// through the same pipeline lifecycle events use.
func (n *Notifier) Dispatch(ctx context.Context, event statemachine.TransitionEvent) {
	n.DispatchEvent(ctx, Event{
		Type:      event.Type,
		EventKey:  event.EventKey(),
		MonitorID: event.MonitorID,
		Vars: map[string]interface{}{
			"monitor_id": event.MonitorID,
			"outage_id":  event.OutageID,
			"error":      event.Error,
			"latency_ms": event.LatencyMS,
		},
	})
}

// DispatchEvent fans the event out to every channel whose
// enabled_events filter accepts it, bounded by maxConcurrent channels
// in flight at once. It returns once a delivery goroutine has been
// started for every accepted channel, or early if ctx ends while it
// waits for a free slot. The claim, send and finalize run in those
// goroutines, detached from ctx, so a caller tearing down its own
// request scope (the scheduler's tick deadline, an HTTP handler
// returning) does not cut deliveries short.
func (n *Notifier) DispatchEvent(ctx context.Context, event Event) {
	channels, err := n.store.ListChannels(ctx)
	if err != nil {
		log.Printf("notifier: failed to list channels: %v", err)
		return
	}

	sem := semaphore.NewWeighted(int64(n.maxConcurrent))
	for _, ch := range channels {
		cfg := ch.Parsed()
		if !cfg.AcceptsEvent(event.Type) {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			return
		}
		n.inFlight.Add(1)
		go func(ch *models.NotificationChannel, cfg models.ChannelConfig) {
			defer n.inFlight.Done()
			defer sem.Release(1)
			n.deliverOne(ch, cfg, event)
		}(ch, cfg)
	}
}

// deliverOne claims, sends, and finalizes one channel's delivery. It
// never returns an error; every failure mode is recorded on the
// delivery row instead, since a failed webhook is expected data, not
// an exceptional condition in this process.
func (n *Notifier) deliverOne(ch *models.NotificationChannel, cfg models.ChannelConfig, event Event) {
	dbCtx, dbCancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer dbCancel()

	claimed, err := n.store.ClaimDelivery(dbCtx, event.EventKey, ch.ID, n.now())
	if err != nil {
		log.Printf("notifier: claim failed for channel %d event %s: %v", ch.ID, event.EventKey, err)
		return
	}
	if !claimed {
		return
	}

	sendCtx, sendCancel := context.WithTimeout(context.Background(), time.Duration(cfg.TimeoutMS)*time.Millisecond)
	status, httpStatus, deliveryErr := n.send(sendCtx, ch, cfg, event)
	sendCancel()

	finalizeCtx, finalizeCancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer finalizeCancel()
	if err := n.store.FinalizeDelivery(finalizeCtx, event.EventKey, ch.ID, status, httpStatus, deliveryErr, n.now()); err != nil {
		log.Printf("notifier: failed to finalize delivery for channel %d event %s: %v", ch.ID, event.EventKey, err)
	}
}
