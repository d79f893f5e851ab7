package instagramimpl

import (
	"context"
	"net/http"
	"time"

	"github.com/orgball2608/reel-ranker/internal/instagram"
	"github.com/orgball2608/reel-ranker/internal/scoring"
	"github.com/orgball2608/reel-ranker/pkg/config"
	"github.com/orgball2608/reel-ranker/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config     *config.Config
	Logger     logger.Logger
	HTTPClient *http.Client
	Scorer     *scoring.Scorer
}

type InstaImpl struct {
	httpClient *http.Client
	logger     logger.Logger
	scorer     *scoring.Scorer

	baseURL    string
	graphQLURL string
	docID      string
	backoff    instagram.BackoffPolicy

	sleep func(ctx context.Context, d time.Duration) error
}

func New(opts Opts) *InstaImpl {
	ig := opts.Config.Instagram
	return &InstaImpl{
		httpClient: opts.HTTPClient,
		logger:     opts.Logger.WithComponent("Instagram"),
		scorer:     opts.Scorer,
		baseURL:    ig.BaseURL,
		graphQLURL: ig.GraphQLURL,
		docID:      ig.DocID,
		backoff: instagram.BackoffPolicy{
			Retries:      ig.Retries,
			InitialDelay: ig.InitialDelay,
			Multiplier:   2,
			MaxDelay:     ig.MaxDelay,
		},
		sleep: sleepContext,
	}
}

var _ instagram.Client = (*InstaImpl)(nil)

// sleepContext waits d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
