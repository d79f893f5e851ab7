package instagramimpl

import (
	"math"

	"github.com/orgball2608/reel-ranker/internal/domain"
)

const sourceURLPrefix = "https://instagram.com/reel/"

// mapMedia converts the parsed payload into a canonical record. Only the
// shortcode is required; requestedShortcode fills in when the payload lacks
// one. The score is left for the scorer.
func mapMedia(m *shortcodeMedia, requestedShortcode string) domain.ScoredContent {
	shortcode := string(m.Shortcode)
	if shortcode == "" {
		shortcode = requestedShortcode
	}

	var user domain.ContentUser
	if o := m.Owner; o != nil {
		user = domain.ContentUser{
			ID:             string(o.ID),
			Username:       string(o.Username),
			Fullname:       string(o.FullName),
			IsVerified:     bool(o.IsVerified),
			TotalMedia:     int64(o.EdgeOwnerToTimelineMedia.Count),
			TotalFollowers: int64(o.EdgeFollowedBy.Count),
		}
	}

	return domain.ScoredContent{
		SourceURL: sourceURLPrefix + shortcode,
		User:      user,
		Video: domain.ContentVideo{
			ID:           shortcode,
			Duration:     math.Max(float64(m.VideoDuration), 0),
			ThumbnailURL: string(m.DisplayURL),
			VideoURL:     string(m.VideoURL),
			Views:        int64(m.VideoViewCount),
			Plays:        int64(m.VideoPlayCount),
			Timestamp:    int64(m.TakenAtTimestamp),
			Caption:      firstCaption(m.EdgeMediaToCaption),
		},
	}
}

func firstCaption(c *captionEdges) string {
	if c == nil || len(c.Edges) == 0 {
		return ""
	}
	return string(c.Edges[0].Node.Text)
}
