package vault

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// SweepWorker runs the reconciliation sweep on a schedule, plus a slower
// orphan-payload pass. Safe to run concurrently with ordinary access:
// destruction is idempotent and availability is always freshly computed.
type SweepWorker struct {
	service        *Service
	interval       time.Duration
	orphanInterval time.Duration
	done           chan struct{}
	sweepTicker    *time.Ticker
	orphanTicker   *time.Ticker
}

func NewSweepWorker(service *Service, interval time.Duration) *SweepWorker {
	return &SweepWorker{
		service:        service,
		interval:       interval,
		orphanInterval: 6 * time.Hour,
		done:           make(chan struct{}),
	}
}

func (w *SweepWorker) Start(ctx context.Context) {
	w.performInitialSweep(ctx)

	w.sweepTicker = time.NewTicker(w.interval)
	w.orphanTicker = time.NewTicker(w.orphanInterval)

	go w.run(ctx)

	log.Info().
		Dur("interval", w.interval).
		Dur("orphan_interval", w.orphanInterval).
		Msg("started sweep worker")
}

func (w *SweepWorker) Stop() {
	if w.sweepTicker != nil {
		w.sweepTicker.Stop()
	}
	if w.orphanTicker != nil {
		w.orphanTicker.Stop()
	}
	close(w.done)
	log.Info().Msg("sweep worker stopped")
}

func (w *SweepWorker) performInitialSweep(ctx context.Context) {
	log.Info().Msg("performing initial sweep")

	if _, err := w.service.Sweep(ctx); err != nil {
		log.Error().
			Err(err).
			Msg("error during initial sweep")
	}

	if err := w.service.ReconcileOrphans(ctx); err != nil {
		log.Error().
			Err(err).
			Msg("error during initial orphan reconciliation")
	}
}

func (w *SweepWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("context cancelled, sweep worker shutting down")
			return
		case <-w.done:
			return
		case <-w.sweepTicker.C:
			if _, err := w.service.Sweep(ctx); err != nil {
				log.Error().
					Err(err).
					Msg("error sweeping expired objects")
			}
		case <-w.orphanTicker.C:
			if err := w.service.ReconcileOrphans(ctx); err != nil {
				log.Error().
					Err(err).
					Msg("error reconciling orphaned payloads")
			}
		}
	}
}
