package jobs

import (
	"context"

	"routa/internal/mylogger"

	"routa/internal/dispatch-service/core/ports"

	"github.com/robfig/cron/v3"
)

// StaleOrderSweeper periodically cancels PENDING orders that no driver
// claimed within the configured TTL.
type StaleOrderSweeper struct {
	dispatchService ports.IDispatchService
	cron            *cron.Cron
	spec            string
	log             mylogger.Logger
}

func NewStaleOrderSweeper(ds ports.IDispatchService, spec string, log mylogger.Logger) *StaleOrderSweeper {
	return &StaleOrderSweeper{
		dispatchService: ds,
		cron:            cron.New(cron.WithSeconds()),
		spec:            spec,
		log:             log.With("component", "stale_order_sweeper"),
	}
}

func (j *StaleOrderSweeper) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		if err := j.dispatchService.SweepStalePending(context.Background()); err != nil {
			j.log.Error("sweep run failed", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.log.Info("stale order sweeper started", "spec", j.spec)
	return nil
}

func (j *StaleOrderSweeper) Stop() {
	j.cron.Stop()
	j.log.Info("stale order sweeper stopped")
}
