package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/listing-api/internal/repository"
)

// StalePendingJob fails posts whose workflow callback never arrived.
type StalePendingJob struct {
	pr      repository.PostRepository
	timeout time.Duration
	now     func() time.Time
}

func NewStalePendingJob(pr repository.PostRepository, timeout time.Duration) *StalePendingJob {
	return &StalePendingJob{
		pr:      pr,
		timeout: timeout,
		now:     time.Now,
	}
}

// Sweep returns how many posts were moved to FAILED.
func (j *StalePendingJob) Sweep(ctx context.Context) (int, error) {
	if j.timeout <= 0 {
		return 0, nil
	}

	cutoff := j.now().Add(-j.timeout)
	ids, err := j.pr.ExpirePending(ctx, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	for _, id := range ids {
		slog.Warn("post stuck in PENDING_AI marked FAILED", "post_id", id, "cutoff", cutoff)
	}
	return len(ids), nil
}

// Run is the cron entry point.
func (j *StalePendingJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if n, err := j.Sweep(ctx); err == nil && n > 0 {
		slog.Info("stale pending sweep finished", "failed", n)
	}
}
