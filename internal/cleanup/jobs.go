package cleanup

import (
	"context"
	"sync"
	"time"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"
)

// Scheduler drives periodic reconciliation passes. It is constructed
// once at process start and stopped cleanly during shutdown; RunNow
// serves the on-demand admin trigger.
type Scheduler struct {
	service  Service
	interval time.Duration
	log      *logger.Logger

	done     chan struct{}
	stopOnce sync.Once

	mu         sync.Mutex
	lastReport *Report
}

func NewScheduler(service Service, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		service:  service,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start launches the reconciliation loop. Returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
	s.log.InfoWithContext(ctx, "cleanup scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
	})
}

// Stop halts the loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First pass right away so stale holds left over from a previous
	// process lifetime are cleared without waiting a full interval
	s.runPass(ctx)

	for {
		select {
		case <-ticker.C:
			s.runPass(ctx)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runPass(ctx context.Context) {
	report, err := s.service.Run(ctx)
	if err != nil {
		s.log.ErrorWithContext(ctx, "cleanup pass failed", err, nil)
		return
	}
	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
}

// RunNow executes a pass outside the schedule
func (s *Scheduler) RunNow(ctx context.Context) (*Report, error) {
	report, err := s.service.Run(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
	return report, nil
}

// LastReport returns the most recent pass report, or nil before the
// first pass completes
func (s *Scheduler) LastReport() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}
