package worker

// billing_cron.go
// In-process trigger for the contract billing pass. Ticks every Interval and
// runs GenerateDue at most once per calendar day. GenerateDue is idempotent per
// date, so overlapping triggers (this cron plus the CLI) are harmless.

import (
	"context"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/logger"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/service"
)

// BillingCronConfig holds all dependencies for the billing goroutine.
type BillingCronConfig struct {
	Billing  service.BillingService
	Interval time.Duration
	Now      func() time.Time
}

type billingCron struct {
	cfg     BillingCronConfig
	lastRun time.Time
}

// StartBillingCron bills immediately, then on every tick whose date has not
// been billed yet. It stops when ctx is cancelled.
func StartBillingCron(ctx context.Context, cfg BillingCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cron := &billingCron{cfg: cfg}
	l := logger.WithComponent("cron")

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		l.Info().Dur("interval", cfg.Interval).Msg("billing_cron: started")
		cron.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				l.Info().Msg("billing_cron: shutting down")
				return
			case <-ticker.C:
				cron.tick(ctx)
			}
		}
	}()
}

// tick runs the billing pass when the current date has not been billed by this
// process yet. Returns whether a pass ran.
func (c *billingCron) tick(ctx context.Context) bool {
	today := model.DateOf(c.cfg.Now())
	if !c.lastRun.IsZero() && !today.After(c.lastRun) {
		return false
	}
	l := logger.WithComponent("cron")
	results, err := c.cfg.Billing.GenerateDue(ctx, today)
	if err != nil {
		// lastRun stays, the next tick retries the whole pass
		l.Error().Err(err).Str("date", today.Format(model.DateLayout)).Msg("billing_cron: pass failed")
		return true
	}
	c.lastRun = today

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	l.Info().
		Str("date", today.Format(model.DateLayout)).
		Int("contracts", len(results)).
		Int("failed", failed).
		Msg("billing_cron: pass done")
	return true
}
