package instagramimpl

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// The types below mirror the parts of the GraphQL shortcode-media payload we
// read. Every field is optional; lenient scalars turn null, quoted numbers and
// unexpected types into zero values instead of failing the decode, so schema
// drift stays contained here.

type graphQLResponse struct {
	Data struct {
		ShortcodeMedia *shortcodeMedia `json:"xdt_shortcode_media"`
	} `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type shortcodeMedia struct {
	Typename           string        `json:"__typename"`
	ID                 flexString    `json:"id"`
	Shortcode          flexString    `json:"shortcode"`
	IsVideo            flexBool      `json:"is_video"`
	TakenAtTimestamp   flexInt       `json:"taken_at_timestamp"`
	VideoDuration      flexFloat     `json:"video_duration"`
	DisplayURL         flexString    `json:"display_url"`
	VideoURL           flexString    `json:"video_url"`
	VideoViewCount     flexInt       `json:"video_view_count"`
	VideoPlayCount     flexInt       `json:"video_play_count"`
	Owner              *mediaOwner   `json:"owner"`
	EdgeMediaToCaption *captionEdges `json:"edge_media_to_caption"`
}

type mediaOwner struct {
	ID                       flexString `json:"id"`
	Username                 flexString `json:"username"`
	FullName                 flexString `json:"full_name"`
	IsVerified               flexBool   `json:"is_verified"`
	EdgeOwnerToTimelineMedia countEdge  `json:"edge_owner_to_timeline_media"`
	EdgeFollowedBy           countEdge  `json:"edge_followed_by"`
}

type countEdge struct {
	Count flexInt `json:"count"`
}

type captionEdges struct {
	Edges []struct {
		Node struct {
			Text flexString `json:"text"`
		} `json:"node"`
	} `json:"edges"`
}

type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = flexString(num.String())
		return nil
	}
	*s = ""
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	*f = flexFloat(parseNumber(b))
	return nil
}

type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	switch v := parseNumber(b); {
	case v >= math.MaxInt64:
		*n = math.MaxInt64
	case v <= math.MinInt64:
		*n = math.MinInt64
	default:
		*n = flexInt(v)
	}
	return nil
}

type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	var parsed bool
	if err := json.Unmarshal(b, &parsed); err == nil {
		*v = flexBool(parsed)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		parsed, _ = strconv.ParseBool(str)
	}
	*v = flexBool(parsed)
	return nil
}

// parseNumber accepts a JSON number or a quoted number; anything else is 0.
// Non-finite values are also 0.
func parseNumber(b []byte) float64 {
	b = bytes.TrimSpace(b)
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		b = b[1 : len(b)-1]
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
