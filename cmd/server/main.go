package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openuptime/uptimer/internal/aggregator"
	"github.com/openuptime/uptimer/internal/api"
	"github.com/openuptime/uptimer/internal/config"
	"github.com/openuptime/uptimer/internal/database"
	"github.com/openuptime/uptimer/internal/notifier"
	"github.com/openuptime/uptimer/internal/probe"
	"github.com/openuptime/uptimer/internal/scheduler"
	"github.com/openuptime/uptimer/internal/store"
	"github.com/openuptime/uptimer/internal/websocket"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database connection: %v", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	st := store.New(db)

	hub := websocket.NewHub(cfg.CORSOrigins)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	ssrf := probe.NewSSRFValidator(cfg.AllowPrivateIPs, cfg.AllowMetadataEndpoints)
	httpProbe := probe.NewHTTPProbe(ssrf)
	tcpProbe := probe.NewTCPProbe(ssrf)

	notif := notifier.New(st, cfg.Notifier.MaxConcurrentNotifications)

	holderID, err := os.Hostname()
	if err != nil || holderID == "" {
		holderID = fmt.Sprintf("uptimer-%d", os.Getpid())
	}

	sched := scheduler.New(st, httpProbe, tcpProbe, notif, hub, scheduler.Config{
		TickInterval:          time.Duration(cfg.Scheduler.TickIntervalSeconds) * time.Second,
		MaxConcurrentProbes:   cfg.Scheduler.MaxConcurrentProbes,
		MaxDueMonitorsPerTick: cfg.Scheduler.MaxDueMonitorsPerTick,
		RetentionCheckResults: time.Duration(cfg.Scheduler.RetentionCheckResultsDays) * 24 * time.Hour,
		LeaseTTL:              time.Duration(cfg.Scheduler.LeaseTTLSeconds) * time.Second,
		HolderID:              holderID,
	})
	sched.Start()

	cache := aggregator.NewCache(st, aggregator.CacheConfig{
		Fresh:     time.Duration(cfg.Snapshot.FreshSeconds) * time.Second,
		RefreshAt: time.Duration(cfg.Snapshot.RefreshSeconds) * time.Second,
		MaxStale:  time.Duration(cfg.Snapshot.MaxStaleSeconds) * time.Second,
	})

	router := api.NewRouter(cfg, st, cache, hub)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server forced to shutdown: %v", err)
	}

	// Stop returns a context that's Done once any tick already running
	// has finished, so an in-flight probe batch gets to complete before
	// the notifier and websocket hub are torn down.
	<-sched.Stop().Done()

	if err := notif.Wait(shutdownCtx); err != nil {
		log.Printf("notifier: shutdown deadline hit with deliveries still in flight: %v", err)
	}

	stopHub()

	log.Println("Server exited")
}
