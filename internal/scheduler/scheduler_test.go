package scheduler

import (
	"context"
	"testing"

	"github.com/openuptime/uptimer/internal/models"
	"github.com/openuptime/uptimer/internal/probe"
)

func TestRunProbe_UnsupportedMonitorTypeIsDown(t *testing.T) {
	s := &Scheduler{}
	m := &models.Monitor{ID: 1, Type: models.MonitorType("dns"), TimeoutMS: 1000}

	outcome := s.runProbe(context.Background(), m)

	if outcome.Status != probe.Down {
		t.Fatalf("expected an unsupported monitor type to probe as down, got %q", outcome.Status)
	}
	if outcome.Error != "unsupported_monitor_type" {
		t.Fatalf("expected unsupported_monitor_type, got %q", outcome.Error)
	}
}
