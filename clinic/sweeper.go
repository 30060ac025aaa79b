/*
sweeper.go - Background reconciliation

PURPOSE:
  Periodically runs the billing reconciliation sweep so flagged or drifted
  transactions heal without waiting for a manual trigger. One immediate run
  on start, then one per interval.

USAGE:
  sweeper := clinic.NewSweeper(billing, log)
  sweeper.Start()
  // ... on shutdown
  sweeper.Stop()

SEE ALSO:
  - billing.go: Reconcile, the operation being scheduled
*/
package clinic

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper drives periodic reconciliation.
type Sweeper struct {
	Billing  *Billing
	Interval time.Duration

	log    zerolog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSweeper creates a sweeper with a one-hour interval.
func NewSweeper(billing *Billing, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		Billing:  billing,
		Interval: time.Hour,
		log:      log.With().Str("component", "sweeper").Logger(),
		stop:     make(chan struct{}),
	}
}

// Start begins the background sweep.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.Interval)
	s.wg.Add(1)
	go s.run()
	s.log.Info().Dur("interval", s.Interval).Msg("sweeper started")
}

// Stop halts the sweep and waits for an in-flight run to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.log.Info().Msg("sweeper stopped")
	}
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	s.sweep()
	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	repaired, err := s.Billing.Reconcile(context.Background())
	if err != nil {
		s.log.Error().Err(err).Msg("reconciliation sweep failed")
		return
	}
	if repaired > 0 {
		s.log.Info().Int("repaired", repaired).Msg("reconciliation sweep")
	}
}
