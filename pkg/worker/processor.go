package worker

import (
	"context"
	"errors"
	"time"

	"github.com/drfrankproulx-cmd/OProom/pkg/logger"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

type ProcessorConfig struct {
	Name          string
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// RunOnStart runs the job once before the first tick.
	RunOnStart bool
}

// Processor runs a Job on a fixed interval until its context ends.
type Processor struct {
	job    Job
	config ProcessorConfig
	logger *logger.Logger
}

func NewProcessor(job Job, config ProcessorConfig, log *logger.Logger) (*Processor, error) {
	if job == nil {
		return nil, errors.New("job is required")
	}
	if config.PollInterval <= 0 {
		return nil, errors.New("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{
		job:    job,
		config: config,
		logger: log.WithFields(map[string]interface{}{"worker": config.Name}),
	}, nil
}

// Start blocks until ctx is done.
func (p *Processor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting worker", "interval", p.config.PollInterval.String())

	if p.config.RunOnStart {
		p.tick(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down worker")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Processor) tick(ctx context.Context) {
	if err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error(err, "Worker run failed")
	}
}

// RunOnce runs the job, retrying up to RetryAttempts times.
func (p *Processor) RunOnce(ctx context.Context) error {
	return retry(ctx, p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.job(ctx)
	})
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
