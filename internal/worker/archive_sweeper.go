package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Sweeper archives completed patients older than delayHours.
type Sweeper interface {
	AutoArchiveSweep(ctx context.Context, delayHours int) (int, error)
}

type ArchiveSweepWorker struct {
	sweeper    Sweeper
	delayHours int
	logger     *zerolog.Logger
}

func NewArchiveSweepWorker(sweeper Sweeper, delayHours int, logger *zerolog.Logger) *ArchiveSweepWorker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ArchiveSweepWorker{
		sweeper:    sweeper,
		delayHours: delayHours,
		logger:     logger,
	}
}

// Run performs one sweep. It matches worker.Job.
func (w *ArchiveSweepWorker) Run(ctx context.Context) error {
	count, err := w.sweeper.AutoArchiveSweep(ctx, w.delayHours)
	if err != nil {
		return fmt.Errorf("failed to run auto-archive sweep: %w", err)
	}

	if count > 0 {
		w.logger.Info().Int("archived", count).Int("delay_hours", w.delayHours).Msg("Auto-archived completed patients")
	} else {
		w.logger.Debug().Int("delay_hours", w.delayHours).Msg("Auto-archive sweep found nothing to archive")
	}
	return nil
}
