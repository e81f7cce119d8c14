package scanner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"webscan/pkg/models"
)

// Prober runs a single probe unit to completion
type Prober interface {
	Probe(ctx context.Context, unit models.ProbeUnit) models.Outcome
}

// Tracker is told about every unit that finishes, whatever its outcome.
// Run skips tracking when given a nil Tracker; implementations that may be
// stored as a typed nil pointer must handle a nil receiver.
type Tracker interface {
	Advance() bool
}

// Scanner fans probe units out to a Prober with a bounded number in flight
type Scanner struct {
	prober      Prober
	concurrency int
	logger      *zap.Logger
}

// New creates a scanner that keeps at most concurrency probes running
func New(prober Prober, concurrency int, logger *zap.Logger) *Scanner {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		prober:      prober,
		concurrency: concurrency,
		logger:      logger.With(zap.String("component", "scanner")),
	}
}

// Run probes every unit exactly once and returns the results in the order the
// probes finished. Failed probes are dropped, and progress advances once per
// unit either way. Run only returns after every unit has resolved; units not
// yet started when ctx is cancelled resolve as absent without being probed.
func (s *Scanner) Run(ctx context.Context, units []models.ProbeUnit, progress Tracker) []models.ProbeResult {
	start := time.Now()

	sem := semaphore.NewWeighted(int64(s.concurrency))
	outcomes := make(chan models.Outcome, s.concurrency)

	go func() {
		var wg sync.WaitGroup
		for _, unit := range units {
			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes <- models.Absent(unit, err)
				continue
			}

			wg.Add(1)
			go func(unit models.ProbeUnit) {
				defer wg.Done()
				defer sem.Release(1)

				outcomes <- s.prober.Probe(ctx, unit)
			}(unit)
		}

		wg.Wait()
		close(outcomes)
	}()

	results := make([]models.ProbeResult, 0)
	for out := range outcomes {
		if progress != nil {
			progress.Advance()
		}

		if !out.Found {
			s.logger.Debug("No response",
				zap.String("target", out.Unit.Address()),
				zap.Error(out.Err))
			continue
		}

		s.logger.Debug("Web service found",
			zap.String("target", out.Unit.Address()),
			zap.Int("status", out.Result.StatusCode),
			zap.String("title", out.Result.Title))
		results = append(results, out.Result)
	}

	s.logger.Info("Scan finished",
		zap.Int("units", len(units)),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)))

	return results
}
