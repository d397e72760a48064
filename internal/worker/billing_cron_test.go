package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubBilling struct {
	days []time.Time
	err  error
}

func (s *stubBilling) GenerateDue(_ context.Context, today time.Time) ([]service.BillingResult, error) {
	s.days = append(s.days, today)
	if s.err != nil {
		return nil, s.err
	}
	return []service.BillingResult{{ContractID: uuid.New(), Created: true}}, nil
}

func (s *stubBilling) BillContract(_ context.Context, id uuid.UUID, _ time.Time) service.BillingResult {
	return service.BillingResult{ContractID: id}
}

func (s *stubBilling) RunsForDate(context.Context, time.Time) ([]model.ContractRun, error) {
	return nil, nil
}

func TestBillingCron_OncePerDay(t *testing.T) {
	now := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	billing := &stubBilling{}
	cron := &billingCron{cfg: BillingCronConfig{Billing: billing, Now: func() time.Time { return now }}}

	assert.True(t, cron.tick(context.Background()))
	now = now.Add(3 * time.Hour)
	assert.False(t, cron.tick(context.Background()), "same day is not billed twice")

	now = time.Date(2026, 1, 2, 0, 30, 0, 0, time.UTC)
	assert.True(t, cron.tick(context.Background()))

	if assert.Len(t, billing.days, 2) {
		assert.Equal(t, "2026-01-01", billing.days[0].Format(model.DateLayout))
		assert.Equal(t, "2026-01-02", billing.days[1].Format(model.DateLayout))
	}
}

func TestBillingCron_FailedPassIsRetried(t *testing.T) {
	now := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	billing := &stubBilling{err: errors.New("db down")}
	cron := &billingCron{cfg: BillingCronConfig{Billing: billing, Now: func() time.Time { return now }}}

	assert.True(t, cron.tick(context.Background()))
	billing.err = nil
	assert.True(t, cron.tick(context.Background()))
	assert.False(t, cron.tick(context.Background()))
	assert.Len(t, billing.days, 2)
}
