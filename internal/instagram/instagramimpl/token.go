package instagramimpl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/internal/instagram"
)

const csrfCookieName = "csrftoken"

// AcquireToken passes a caller-supplied token through untouched, otherwise
// reads a fresh csrftoken cookie from the landing page.
func (ig *InstaImpl) AcquireToken(ctx context.Context, provided string) (domain.AntiBotToken, error) {
	if provided != "" {
		return domain.AntiBotToken{
			Value:      provided,
			AcquiredAt: time.Now(),
			Source:     domain.TokenSourceCallerSupplied,
		}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ig.baseURL, nil)
	if err != nil {
		return domain.AntiBotToken{}, fmt.Errorf("%w: %w", instagram.ErrTokenAcquisitionFailed, err)
	}

	resp, err := ig.httpClient.Do(req)
	if err != nil {
		return domain.AntiBotToken{}, fmt.Errorf("%w: %w", instagram.ErrTokenAcquisitionFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	for _, c := range resp.Cookies() {
		if c.Name == csrfCookieName && c.Value != "" {
			ig.logger.Info("Fetched csrf token", "status", resp.StatusCode)
			return domain.AntiBotToken{
				Value:      c.Value,
				AcquiredAt: time.Now(),
				Source:     domain.TokenSourceFetched,
			}, nil
		}
	}

	ig.logger.Warn("Landing page returned no csrf cookie", "status", resp.StatusCode)
	return domain.AntiBotToken{}, fmt.Errorf("%w: no %s cookie in response (status %d)",
		instagram.ErrTokenAcquisitionFailed, csrfCookieName, resp.StatusCode)
}
