package instagramimpl

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/internal/instagram"
	"github.com/orgball2608/reel-ranker/pkg/errors"
)

// NormalizeURL follows a share link with a single GET, then parses the
// shortcode out of the effective url.
func (ig *InstaImpl) NormalizeURL(ctx context.Context, rawURL string) (domain.MediaReference, error) {
	effective := rawURL
	if instagram.IsShareURL(rawURL) {
		resolved, err := ig.followShareLink(ctx, rawURL)
		if err != nil {
			return domain.MediaReference{}, err
		}
		ig.logger.Debug("Share link resolved", "url", rawURL, "resolved", resolved)
		effective = resolved
	}

	ref, err := instagram.ParseShortcode(effective)
	if err != nil {
		return domain.MediaReference{}, err
	}
	ref.RawURL = rawURL
	return ref, nil
}

func (ig *InstaImpl) followShareLink(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", instagram.ErrShortcodeNotFound, err)
	}

	resp, err := ig.httpClient.Do(req)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeUpstreamRequestFailed, "follow share link")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return "", errors.WrapWithCode(
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			errors.CodeUpstreamRequestFailed, "follow share link",
		)
	}

	// The client follows the redirect chain; the last request holds the post path.
	return resp.Request.URL.Path, nil
}
