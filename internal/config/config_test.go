package config

import "testing"

func validConfig() *Config {
	return &Config{
		CORSOrigins: []string{"https://status.example.com"},
		Database:    DatabaseConfig{DSN: "postgresql://u:p@localhost:5432/uptimer"},
		Scheduler: SchedulerConfig{
			TickIntervalSeconds: 60,
			MaxConcurrentProbes: 20,
			LeaseTTLSeconds:     120,
		},
		Notifier: NotifierConfig{MaxConcurrentNotifications: 5},
		Snapshot: SnapshotConfig{FreshSeconds: 60, RefreshSeconds: 30, MaxStaleSeconds: 600},
	}
}

func TestValidate_AcceptsWellFormedConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsMissingCORSOrigins(t *testing.T) {
	cfg := validConfig()
	cfg.CORSOrigins = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestValidate_RejectsLeaseShorterThanTwiceTickInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.LeaseTTLSeconds = 90 // less than 2x60
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestValidate_RejectsRefreshSecondsNotBelowFreshSeconds(t *testing.T) {
	cfg := validConfig()
	cfg.Snapshot.RefreshSeconds = 60
	cfg.Snapshot.FreshSeconds = 60
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestValidate_RejectsMaxStaleNotAboveFresh(t *testing.T) {
	cfg := validConfig()
	cfg.Snapshot.MaxStaleSeconds = 60
	cfg.Snapshot.FreshSeconds = 60
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error")
	}
}
