package app

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/reel-ranker/internal/command"
	"github.com/orgball2608/reel-ranker/internal/command/commandimpl"
	"github.com/orgball2608/reel-ranker/internal/httpapi"
	"github.com/orgball2608/reel-ranker/internal/instagram"
	"github.com/orgball2608/reel-ranker/internal/instagram/instagramimpl"
	"github.com/orgball2608/reel-ranker/internal/jobs"
	"github.com/orgball2608/reel-ranker/internal/jobs/jobsimpl"
	"github.com/orgball2608/reel-ranker/internal/migrations"
	"github.com/orgball2608/reel-ranker/internal/ratelimit"
	"github.com/orgball2608/reel-ranker/internal/repositories/content"
	"github.com/orgball2608/reel-ranker/internal/resolver"
	"github.com/orgball2608/reel-ranker/internal/resolver/resolverimpl"
	"github.com/orgball2608/reel-ranker/internal/scoring"
	"github.com/orgball2608/reel-ranker/internal/telegram"
	"github.com/orgball2608/reel-ranker/internal/telegram/telegramimpl"
	"github.com/orgball2608/reel-ranker/pkg/config"
	"github.com/orgball2608/reel-ranker/pkg/httpclient"
	"github.com/orgball2608/reel-ranker/pkg/logger"
	"github.com/orgball2608/reel-ranker/pkg/pgx"
	"go.uber.org/fx"
)

const botRestartDelay = 5 * time.Second

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		httpclient.FxOption,
		scoring.New,
		httpapi.New,
	),
	fx.Provide(
		fx.Annotate(
			instagramimpl.New,
			fx.As(new(instagram.Client)),
		), fx.Annotate(
			resolverimpl.New,
			fx.As(new(resolver.Client)),
		),
		fx.Annotate(
			jobsimpl.New,
			fx.As(new(jobs.Client)),
		),
	),
	content.Module,
	fx.Invoke(runMigrations),
	fx.Invoke(httpapi.Register),
	fx.Invoke(runJobs),
)

var TelegramModule = fx.Options(
	fx.Provide(
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		),
		fx.Annotate(
			commandimpl.New,
			fx.As(new(command.Client)),
		),
		newLimiter,
	),
	fx.Invoke(runBot),
)

// New assembles the application; the bot front-end is only wired when a
// token is configured.
func New(cfg *config.Config) fx.Option {
	if !cfg.TelegramEnabled() {
		return Module
	}
	return fx.Options(Module, TelegramModule)
}

func newLimiter(cfg *config.Config) ratelimit.Limiter {
	return ratelimit.NewChatLimiter(cfg.Telegram.RateRequests, cfg.Telegram.RateWindow, cfg.Telegram.RateBurst)
}

// runMigrations takes the pool so its ping hook runs first.
func runMigrations(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, _ *pgxpool.Pool) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := migrations.Up(ctx, cfg.GetDSN()); err != nil {
				log.Error("Migrations failed", "error", err)
				return err
			}
			log.Info("Migrations applied")
			return nil
		},
	})
}

func runJobs(lc fx.Lifecycle, log logger.Logger, jobsClient jobs.Client) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := jobsClient.Schedule(ctx); err != nil {
				log.Error("Schedule jobs error", "error", err)
				return err
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func runBot(lc fx.Lifecycle, log logger.Logger, cmdClient command.Client) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				for {
					err := cmdClient.HandleCommand(ctx)
					if ctx.Err() != nil {
						return
					}
					log.Error("Command handler stopped, restarting", "error", err)

					select {
					case <-ctx.Done():
						return
					case <-time.After(botRestartDelay):
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
