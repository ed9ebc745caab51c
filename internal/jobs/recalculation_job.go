package jobs

import (
	"context"
	"time"

	"github.com/straye-as/cbam-api/internal/domain"
	"go.uber.org/zap"
)

// RecalculationJobName is the name of the reference recalculation job
const RecalculationJobName = "reference_recalculation"

// ReferenceReloader re-reads the reference dataset and returns its version
type ReferenceReloader interface {
	Reload(ctx context.Context) (string, error)
}

// StaleRecalculator recalculates open entries whose stored calculation was
// made with another reference version
type StaleRecalculator interface {
	RecalculateStale(ctx context.Context, batchSize int) (*domain.RecalculationSummaryDTO, error)
}

// RecalculationJob keeps stored calculations in line with the active
// reference data. Each run reloads the dataset first, so a file replaced on
// disk is picked up without a restart.
type RecalculationJob struct {
	reference ReferenceReloader
	entries   StaleRecalculator
	logger    *zap.Logger
	timeout   time.Duration
	batchSize int
}

func NewRecalculationJob(reference ReferenceReloader, entries StaleRecalculator, logger *zap.Logger, timeout time.Duration, batchSize int) *RecalculationJob {
	return &RecalculationJob{
		reference: reference,
		entries:   entries,
		logger:    logger,
		timeout:   timeout,
		batchSize: batchSize,
	}
}

// Run executes one recalculation pass. It is called by the scheduler.
func (j *RecalculationJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Error("reference recalculation job failed", zap.Error(err))
	}
}

// RunOnce reloads the reference data and recalculates stale entries. A failed
// reload keeps the active dataset and still recalculates against it.
func (j *RecalculationJob) RunOnce(ctx context.Context) (*domain.RecalculationSummaryDTO, error) {
	start := time.Now()

	if j.reference != nil {
		if _, err := j.reference.Reload(ctx); err != nil {
			j.logger.Warn("reference reload failed; keeping active dataset", zap.Error(err))
		}
	}

	summary, err := j.entries.RecalculateStale(ctx, j.batchSize)
	if err != nil {
		return summary, err
	}

	if summary.Recalculated > 0 || summary.Failed > 0 {
		j.logger.Info("reference recalculation completed",
			zap.String("reference_version", summary.ReferenceVersion),
			zap.Int("scanned", summary.Scanned),
			zap.Int("recalculated", summary.Recalculated),
			zap.Int("failed", summary.Failed),
			zap.Duration("duration", time.Since(start)))
	} else {
		j.logger.Debug("no stale entries",
			zap.String("reference_version", summary.ReferenceVersion),
			zap.Int("scanned", summary.Scanned))
	}
	return summary, nil
}

// RegisterRecalculationJob registers the recalculation job with the
// scheduler. If runOnStartup is true, one pass also runs immediately in a
// background goroutine so it does not block API startup.
func RegisterRecalculationJob(scheduler *Scheduler, reference ReferenceReloader, entries StaleRecalculator, logger *zap.Logger, cronExpr string, timeout time.Duration, batchSize int, runOnStartup bool) (*RecalculationJob, error) {
	job := NewRecalculationJob(reference, entries, logger, timeout, batchSize)
	if err := scheduler.AddJob(RecalculationJobName, cronExpr, job.Run); err != nil {
		return nil, err
	}

	if runOnStartup {
		go job.Run()
	}
	return job, nil
}
