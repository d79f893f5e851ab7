package instagramimpl

import (
	"context"
	"fmt"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/internal/instagram"
)

// FetchContent fetches, maps and scores one media. A zero token is replaced
// by a freshly acquired one.
func (ig *InstaImpl) FetchContent(ctx context.Context, ref domain.MediaReference, token domain.AntiBotToken) (*domain.ScoredContent, error) {
	if ref.Shortcode == "" {
		return nil, fmt.Errorf("%w: empty reference for %q", instagram.ErrShortcodeNotFound, ref.RawURL)
	}

	if token.IsZero() {
		var err error
		token, err = ig.AcquireToken(ctx, "")
		if err != nil {
			return nil, err
		}
	}

	media, err := ig.fetchMedia(ctx, ref.Shortcode, token)
	if err != nil {
		return nil, err
	}

	content := mapMedia(media, ref.Shortcode)
	ig.scorer.Apply(ig.scorer.Now(), &content)

	ig.logger.Info("Resolved media",
		"shortcode", ref.Shortcode,
		"username", content.User.Username,
		"score", content.ScoreValue(),
	)
	return &content, nil
}

func (ig *InstaImpl) Resolve(ctx context.Context, rawURL string, token domain.AntiBotToken) (*domain.ScoredContent, error) {
	ref, err := ig.NormalizeURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return ig.FetchContent(ctx, ref, token)
}
