package instagram

import (
	"context"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/pkg/errors"
)

var (
	ErrShortcodeNotFound      = errors.NewWithCode(errors.CodeShortcodeNotFound, "shortcode not found in url")
	ErrTokenAcquisitionFailed = errors.NewWithCode(errors.CodeTokenAcquisitionFailed, "csrf token acquisition failed")
	ErrUpstreamRequestFailed  = errors.NewWithCode(errors.CodeUpstreamRequestFailed, "instagram request failed")
	ErrUnsupportedContentType = errors.NewWithCode(errors.CodeUnsupportedContentType, "only posts and reels are supported")
)

// Kind names the failure class of err for callers and responses.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.CodeUnknown
}

//go:generate go run go.uber.org/mock/mockgen -source=instagram.go -destination=mocks/mock.go
type Client interface {
	// NormalizeURL follows a share link once if needed and extracts the shortcode.
	NormalizeURL(ctx context.Context, rawURL string) (domain.MediaReference, error)

	// AcquireToken returns provided unchanged when non-empty, otherwise fetches a fresh token.
	AcquireToken(ctx context.Context, provided string) (domain.AntiBotToken, error)

	// FetchContent fetches, maps and scores the media behind ref.
	FetchContent(ctx context.Context, ref domain.MediaReference, token domain.AntiBotToken) (*domain.ScoredContent, error)

	// Resolve runs NormalizeURL and FetchContent for one raw URL.
	Resolve(ctx context.Context, rawURL string, token domain.AntiBotToken) (*domain.ScoredContent, error)
}
