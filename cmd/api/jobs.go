package main

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// activeUsers lists users that currently hold an open event stream.
type activeUsers interface {
	ActiveUsers(ctx context.Context) ([]string, error)
}

// job runs fn for every active user each interval.
type job struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context, userID string) error
}

// runJobs starts every job with a positive interval and blocks until ctx is
// done and all jobs have returned.
func runJobs(ctx context.Context, logger *slog.Logger, users activeUsers, jobs ...job) {
	var wg sync.WaitGroup
	for _, j := range jobs {
		if j.interval <= 0 {
			logger.Info("background job disabled", "job", j.name)
			continue
		}
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			j.loop(ctx, logger, users)
		}(j)
	}
	wg.Wait()
}

func (j job) loop(ctx context.Context, logger *slog.Logger, users activeUsers) {
	logger.Info("background job started", "job", j.name, "interval", j.interval.String())
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.tick(ctx, logger, users)
		}
	}
}

func (j job) tick(ctx context.Context, logger *slog.Logger, users activeUsers) {
	ids, err := users.ActiveUsers(ctx)
	if err != nil {
		logger.WarnContext(ctx, "background job could not list users", "job", j.name, "error", err)
		return
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if err := j.fn(ctx, id); err != nil {
			logger.WarnContext(ctx, "background job failed", "job", j.name, "user_id", id, "error", err)
		}
	}
	logger.DebugContext(ctx, "background job ran", "job", j.name, "users", len(ids))
}
