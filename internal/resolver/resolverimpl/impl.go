package resolverimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/internal/instagram"
	"github.com/orgball2608/reel-ranker/internal/repositories/content"
	"github.com/orgball2608/reel-ranker/internal/resolver"
	"github.com/orgball2608/reel-ranker/internal/scoring"
	"github.com/orgball2608/reel-ranker/pkg/config"
	pkgerrors "github.com/orgball2608/reel-ranker/pkg/errors"
	"github.com/orgball2608/reel-ranker/pkg/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/fx"
)

const defaultWorkers = 16

type Opts struct {
	fx.In

	Config    *config.Config
	Logger    logger.Logger
	Instagram instagram.Client
	Scorer    *scoring.Scorer
	Repo      content.Repository
}

type ResolverImpl struct {
	instagram instagram.Client
	scorer    *scoring.Scorer
	repo      content.Repository
	logger    logger.Logger

	workers  int
	cacheTTL time.Duration
}

func New(opts Opts) *ResolverImpl {
	workers := opts.Config.Resolver.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &ResolverImpl{
		instagram: opts.Instagram,
		scorer:    opts.Scorer,
		repo:      opts.Repo,
		logger:    opts.Logger.WithComponent("Resolver"),
		workers:   workers,
		cacheTTL:  opts.Config.Resolver.CacheTTL,
	}
}

var _ resolver.Client = (*ResolverImpl)(nil)

func (r *ResolverImpl) ResolveBatch(ctx context.Context, urls []string, providedToken string) (domain.Batch, error) {
	token, err := r.instagram.AcquireToken(ctx, providedToken)
	if err != nil {
		r.logger.Error("Batch aborted, no csrf token", "urls", len(urls), "error", err)
		return domain.Batch{}, err
	}

	results := make([]domain.ResolveResult, len(urls))
	if len(urls) == 0 {
		return domain.Batch{Results: results, Token: token}, nil
	}

	pool, err := ants.NewPool(min(len(urls), r.workers), ants.WithPreAlloc(true))
	if err != nil {
		return domain.Batch{}, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, rawURL := range urls {
		i, rawURL := i, rawURL
		wg.Add(1)

		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = r.resolveOne(ctx, rawURL, token)
		})
		if err != nil {
			wg.Done()
			r.logger.Error("Failed to submit job to ants pool", "url", rawURL, "error", err)
			results[i] = failed(rawURL, pkgerrors.WrapWithCode(err, pkgerrors.CodeUnknown, "worker pool rejected url"))
		}
	}

	wg.Wait()

	batch := domain.Batch{Results: results, Token: token}
	r.logger.Info("Batch resolved",
		"urls", len(urls),
		"succeeded", len(batch.Succeeded()),
		"failed", len(batch.Failed()),
		"token_source", string(token.Source),
	)
	return batch, nil
}

func (r *ResolverImpl) Resolve(ctx context.Context, rawURL string, token domain.AntiBotToken) (*domain.ScoredContent, error) {
	ref, err := r.instagram.NormalizeURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if cached := r.cached(ctx, ref.Shortcode); cached != nil {
		return cached, nil
	}

	c, err := r.instagram.FetchContent(ctx, ref, token)
	if err != nil {
		return nil, err
	}

	r.store(ctx, ref.Shortcode, *c)
	return c, nil
}

// resolveOne never panics and never returns without a result, so a bad item
// cannot take its siblings down.
func (r *ResolverImpl) resolveOne(ctx context.Context, rawURL string, token domain.AntiBotToken) (res domain.ResolveResult) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Resolve panicked", "url", rawURL, "panic", p)
			res = failed(rawURL, pkgerrors.NewWithCode(pkgerrors.CodeUnknown, fmt.Sprintf("resolve panicked: %v", p)))
		}
	}()

	if err := ctx.Err(); err != nil {
		return failed(rawURL, pkgerrors.WrapWithCode(err, pkgerrors.CodeUpstreamRequestFailed, "batch cancelled"))
	}

	c, err := r.Resolve(ctx, rawURL, token)
	if err != nil {
		r.logger.Warn("Failed to resolve url", "url", rawURL, "kind", instagram.Kind(err), "error", err)
		return failed(rawURL, err)
	}
	return domain.ResolveResult{SourceURL: rawURL, Content: c}
}

// cached returns a stored record fetched within the cache ttl, re-scored
// against the current time. Store failures count as a miss.
func (r *ResolverImpl) cached(ctx context.Context, shortcode string) *domain.ScoredContent {
	if r.cacheTTL <= 0 {
		return nil
	}

	stored, err := r.repo.GetByShortcode(ctx, shortcode)
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) {
			r.logger.Warn("Content store lookup failed", "shortcode", shortcode, "error", err)
		}
		return nil
	}

	now := r.scorer.Now()
	if now.Sub(stored.FetchedAt) > r.cacheTTL {
		return nil
	}

	c := stored.Content
	r.scorer.Apply(now, &c)
	r.logger.Debug("Serving cached content", "shortcode", shortcode, "fetched_at", stored.FetchedAt)
	return &c
}

func (r *ResolverImpl) store(ctx context.Context, shortcode string, c domain.ScoredContent) {
	if err := r.repo.Upsert(ctx, shortcode, c); err != nil {
		r.logger.Warn("Failed to store content", "shortcode", shortcode, "error", err)
	}
}

func failed(rawURL string, err error) domain.ResolveResult {
	return domain.ResolveResult{SourceURL: rawURL, Err: err, Kind: instagram.Kind(err)}
}
