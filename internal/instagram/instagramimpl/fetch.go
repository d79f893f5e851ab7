package instagramimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/internal/instagram"
	"github.com/orgball2608/reel-ranker/pkg/errors"
)

const maxPayloadBytes = 8 << 20

type queryVariables struct {
	Shortcode            string  `json:"shortcode"`
	FetchTaggedUserCount *int    `json:"fetch_tagged_user_count"`
	HoistedCommentID     *string `json:"hoisted_comment_id"`
	HoistedReplyID       *string `json:"hoisted_reply_id"`
}

func buildQueryBody(shortcode, docID string) (string, error) {
	vars, err := json.Marshal(queryVariables{Shortcode: shortcode})
	if err != nil {
		return "", err
	}
	form := url.Values{}
	form.Set("variables", string(vars))
	form.Set("doc_id", docID)
	return form.Encode(), nil
}

// fetchMedia posts the shortcode query. Throttled responses (429/403) are
// retried in a bounded loop: each wait is Retry-After when present, else the
// current delay, and the delay grows by the policy multiplier per retry.
func (ig *InstaImpl) fetchMedia(ctx context.Context, shortcode string, token domain.AntiBotToken) (*shortcodeMedia, error) {
	body, err := buildQueryBody(shortcode, ig.docID)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUpstreamRequestFailed, "encode query")
	}

	retries := ig.backoff.Retries
	delay := ig.backoff.InitialDelay

	for attempt := 1; ; attempt++ {
		resp, err := ig.postQuery(ctx, body, token)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeUpstreamRequestFailed, "instagram request failed")
		}

		if instagram.IsThrottled(resp.StatusCode) {
			drainAndClose(resp)
			if retries <= 0 {
				return nil, errors.WrapWithCode(
					fmt.Errorf("status %d after %d attempts", resp.StatusCode, attempt),
					errors.CodeUpstreamRequestFailed, "instagram request failed",
				)
			}

			wait := delay
			if ra, ok := instagram.RetryAfter(resp.Header); ok {
				wait = ra
			}
			ig.logger.Warn("Instagram throttled request, backing off",
				"shortcode", shortcode,
				"status", resp.StatusCode,
				"attempt", attempt,
				"retries_left", retries,
				"wait", wait.String(),
			)
			if err := ig.sleep(ctx, wait); err != nil {
				return nil, errors.WrapWithCode(err, errors.CodeUpstreamRequestFailed, "backoff interrupted")
			}

			retries--
			delay = ig.backoff.Next(delay)
			continue
		}

		return ig.decodeMedia(resp, shortcode)
	}
}

func (ig *InstaImpl) postQuery(ctx context.Context, body string, token domain.AntiBotToken) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ig.graphQLURL, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRFToken", token.Value)
	return ig.httpClient.Do(req)
}

func (ig *InstaImpl) decodeMedia(resp *http.Response, shortcode string) (*shortcodeMedia, error) {
	defer drainAndClose(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.WrapWithCode(
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			errors.CodeUpstreamRequestFailed, "instagram request failed",
		)
	}

	var payload graphQLResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadBytes)).Decode(&payload); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUpstreamRequestFailed, "decode instagram response")
	}

	if payload.Data.ShortcodeMedia == nil {
		ig.logger.Info("Payload has no shortcode media", "shortcode", shortcode, "status", payload.Status, "message", payload.Message)
		return nil, fmt.Errorf("%w: shortcode %s", instagram.ErrUnsupportedContentType, shortcode)
	}

	return payload.Data.ShortcodeMedia, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadBytes))
	_ = resp.Body.Close()
}
