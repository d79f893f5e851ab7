package jobsimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/reel-ranker/internal/jobs"
	"github.com/orgball2608/reel-ranker/internal/repositories/content"
	"github.com/orgball2608/reel-ranker/internal/scoring"
	"github.com/orgball2608/reel-ranker/pkg/config"
	"github.com/orgball2608/reel-ranker/pkg/logger"
	"go.uber.org/fx"
)

const jobTimeout = 5 * time.Minute

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
	Repo   content.Repository
	Scorer *scoring.Scorer
}

type JobsImpl struct {
	repo   content.Repository
	scorer *scoring.Scorer
	logger logger.Logger

	rescoreInterval time.Duration
	retention       time.Duration
	timezone        string
}

func New(opts Opts) *JobsImpl {
	return &JobsImpl{
		repo:            opts.Repo,
		scorer:          opts.Scorer,
		logger:          opts.Logger.WithComponent("Jobs"),
		rescoreInterval: opts.Config.Jobs.RescoreInterval,
		retention:       opts.Config.Jobs.Retention,
		timezone:        opts.Config.Jobs.Timezone,
	}
}

var _ jobs.Client = (*JobsImpl)(nil)

func (j *JobsImpl) Schedule(ctx context.Context) error {
	loc, err := time.LoadLocation(j.timezone)
	if err != nil {
		loc = time.Local
		j.logger.Warn("Failed to load timezone, using local timezone", "timezone", j.timezone, "error", err)
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if j.rescoreInterval > 0 {
		_, err = scheduler.NewJob(
			gocron.DurationJob(j.rescoreInterval),
			gocron.NewTask(j.runTask(ctx, "rescore", func(ctx context.Context) error {
				_, err := j.Rescore(ctx)
				return err
			})),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule rescore: %w", err)
		}
	}

	if j.retention > 0 {
		// Every day at 3:00 AM
		_, err = scheduler.NewJob(
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
			gocron.NewTask(j.runTask(ctx, "cleanup", func(ctx context.Context) error {
				_, err := j.Cleanup(ctx)
				return err
			})),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule cleanup: %w", err)
		}
	}

	scheduler.Start()
	j.logger.Info("Jobs scheduled", "rescore_interval", j.rescoreInterval.String(), "retention", j.retention.String(), "timezone", loc.String())

	go func() {
		<-ctx.Done()
		j.logger.Info("Stopping job scheduler")
		if err := scheduler.Shutdown(); err != nil {
			j.logger.Error("Failed to shut down scheduler", "error", err)
		}
	}()

	return nil
}

func (j *JobsImpl) runTask(ctx context.Context, name string, task func(context.Context) error) func() {
	return func() {
		if ctx.Err() != nil {
			j.logger.Info("Context cancelled, skipping job", "job", name)
			return
		}

		taskCtx, cancel := context.WithTimeout(ctx, jobTimeout)
		defer cancel()

		if err := task(taskCtx); err != nil {
			j.logger.Error("Job failed", "job", name, "error", err)
		}
	}
}

// Rescore only writes records whose score changed.
func (j *JobsImpl) Rescore(ctx context.Context) (int, error) {
	stored, err := j.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list contents: %w", err)
	}

	now := j.scorer.Now()
	updated := 0
	for _, s := range stored {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}

		score := j.scorer.Score(now, scoring.SignalsOf(s.Content))
		if s.Content.Score != nil && *s.Content.Score == score {
			continue
		}

		if err := j.repo.UpdateScore(ctx, s.Shortcode, score); err != nil {
			j.logger.Warn("Failed to update score", "shortcode", s.Shortcode, "error", err)
			continue
		}
		updated++
	}

	j.logger.Info("Rescore completed", "records", len(stored), "updated", updated)
	return updated, nil
}

func (j *JobsImpl) Cleanup(ctx context.Context) (int64, error) {
	if j.retention <= 0 {
		return 0, nil
	}

	deleted, err := j.repo.CleanupOldRecords(ctx, j.retention)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up contents: %w", err)
	}
	return deleted, nil
}
