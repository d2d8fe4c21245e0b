package worker

import (
	"context"
	"errors"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/esteira-credito/esteira/pkg/utils/errutil"
	"github.com/esteira-credito/esteira/pkg/utils/logging"
)

// Sweeper runs one SLA reclamation pass
type Sweeper interface {
	RunSweep(ctx context.Context, trigger types.ExecutionType, actor *model.Actor) (*model.SLAExecution, error)
}

// SLASweepWorker triggers scheduled SLA sweeps on a fixed interval.
//
// Several server instances may run this worker; the sweep guard in the
// repository makes sure only one of them sweeps at a time.
type SLASweepWorker struct {
	sweeper  Sweeper
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSLASweepWorker creates a worker that sweeps every interval
func NewSLASweepWorker(sweeper Sweeper, interval time.Duration) *SLASweepWorker {
	return &SLASweepWorker{
		sweeper:  sweeper,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background loop. The first sweep runs right away without
// blocking server startup.
func (w *SLASweepWorker) Start(ctx context.Context) error {
	logging.Default().Info("SLA sweep worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for the running sweep, if any
func (w *SLASweepWorker) Stop() {
	logging.Default().Info("SLA sweep worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("SLA sweep worker stopped")
}

func (w *SLASweepWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)

		case <-w.stopCh:
			logging.Default().Info("SLA sweep worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("SLA sweep worker context cancelled")
			return
		}
	}
}

// sweep never returns an error; a failed run is retried on the next tick
func (w *SLASweepWorker) sweep(ctx context.Context) {
	_, err := w.sweeper.RunSweep(ctx, types.ExecutionTypeScheduled, nil)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrSLAEngineBusy):
		logging.Default().Info("SLA sweep skipped, another sweep is running")
	default:
		_ = errutil.Handle(ctx, err, "scheduled SLA sweep failed (will retry next interval)")
	}
}
