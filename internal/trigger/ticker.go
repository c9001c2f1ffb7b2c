package trigger

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	"github.com/vhvplatform/go-webhook-scheduler/internal/service"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
)

// Ticker drives the two trigger engines on a fixed cadence. Both engines run
// back to back inside a single cron job, so one tick never overlaps the
// other engine's work; protecting against a tick overlapping a still-running
// previous tick is the deployment's responsibility.
type Ticker struct {
	cron      *cron.Cron
	schedules *service.ScheduleEngine
	deferred  *service.DeferredEngine
	spec      string
	log       *logger.Logger
}

// NewTicker creates a new engine ticker. spec uses cron syntax, e.g.
// "@every 1m".
func NewTicker(schedules *service.ScheduleEngine, deferred *service.DeferredEngine, spec string, log *logger.Logger) *Ticker {
	return &Ticker{
		cron:      cron.New(),
		schedules: schedules,
		deferred:  deferred,
		spec:      spec,
		log:       log,
	}
}

// Start registers the tick job and starts the cron loop
func (t *Ticker) Start() error {
	if _, err := t.cron.AddFunc(t.spec, t.tick); err != nil {
		return err
	}

	t.cron.Start()
	t.log.Info("Trigger ticker started", "spec", t.spec)
	return nil
}

// Stop stops the cron loop
func (t *Ticker) Stop() {
	t.log.Info("Stopping trigger ticker")
	t.cron.Stop()
}

func (t *Ticker) tick() {
	ctx := context.Background()

	results, err := t.schedules.ProcessDueSchedules(ctx)
	if err != nil {
		t.log.Error("Schedule engine tick failed", "error", err)
	} else {
		t.report("schedule", results)
	}

	deferredResults, err := t.deferred.ProcessDuePending(ctx)
	if err != nil {
		t.log.Error("Deferred engine tick failed", "error", err)
	} else {
		t.report("deferred", deferredResults)
	}
}

func (t *Ticker) report(engine string, results []domain.FiringResult) {
	if len(results) == 0 {
		return
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			t.log.Warn("Firing failed", "engine", engine, "id", r.ID, "error", r.Error)
		}
	}
	t.log.Info("Tick processed", "engine", engine, "fired", len(results), "succeeded", succeeded)
}
