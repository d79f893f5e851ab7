package instagram

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/orgball2608/reel-ranker/internal/domain"
)

const canonicalHost = "https://www.instagram.com"

var postTags = map[string]struct{}{
	"p":     {},
	"reel":  {},
	"tv":    {},
	"reels": {},
}

// ParseShortcode extracts the shortcode that follows the first post tag in the
// url path. It does no network I/O; share links must be followed first.
func ParseShortcode(rawURL string) (domain.MediaReference, error) {
	segments := pathSegments(rawURL)

	for i, seg := range segments {
		if _, ok := postTags[seg]; !ok {
			continue
		}
		if i+1 >= len(segments) || segments[i+1] == "" {
			break
		}
		shortcode := segments[i+1]
		return domain.MediaReference{
			RawURL:       rawURL,
			CanonicalURL: fmt.Sprintf("%s/%s/%s/", canonicalHost, seg, shortcode),
			Shortcode:    shortcode,
			PlatformTag:  seg,
		}, nil
	}

	return domain.MediaReference{}, fmt.Errorf("%w: %q", ErrShortcodeNotFound, rawURL)
}

// IsShareURL reports whether the url is a share link that redirects to the post.
func IsShareURL(rawURL string) bool {
	for _, seg := range pathSegments(rawURL) {
		if seg == "share" {
			return true
		}
	}
	return false
}

// pathSegments returns the non-empty path segments of rawURL. Inputs without
// a scheme, or ones url.Parse rejects, are split as plain paths.
func pathSegments(rawURL string) []string {
	raw := strings.TrimSpace(rawURL)
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		path = u.Path
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		path = raw[:i]
	}

	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
