package exchange

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

// job runs fn every interval until its context is cancelled.
type job struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) (int, error)
}

type jobRunner struct {
	jobs   []job
	cancel context.CancelFunc
	group  errgroup.Group
}

func newJobRunner(jobs ...job) *jobRunner {
	return &jobRunner{jobs: jobs}
}

func (r *jobRunner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	for _, j := range r.jobs {
		if j.interval <= 0 {
			zapLogger.Warn(ctx, "job disabled", zap.String("job", j.name))
			continue
		}

		r.group.Go(func() error {
			r.loop(ctx, j)
			return nil
		})
	}
}

func (r *jobRunner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	_ = r.group.Wait()
}

func (r *jobRunner) loop(ctx context.Context, j job) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := j.fn(ctx)
			if err != nil {
				zapLogger.Error(ctx, "job failed", zap.String("job", j.name), zap.Error(err))
				continue
			}
			if count > 0 {
				zapLogger.Debug(ctx, "job done", zap.String("job", j.name), zap.Int("count", count))
			}
		}
	}
}
