package domain

import "time"

// MediaReference identifies one post or reel after URL normalization.
type MediaReference struct {
	RawURL       string
	CanonicalURL string
	Shortcode    string
	PlatformTag  string // p, reel, tv or reels
}

type TokenSource string

const (
	TokenSourceCallerSupplied TokenSource = "caller-supplied"
	TokenSourceFetched        TokenSource = "fetched"
)

// AntiBotToken is the csrf value the GraphQL endpoint demands. It is read-only
// once acquired and is never persisted.
type AntiBotToken struct {
	Value      string
	AcquiredAt time.Time
	Source     TokenSource
}

func (t AntiBotToken) IsZero() bool {
	return t.Value == ""
}

type ContentUser struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Fullname       string `json:"fullname"`
	IsVerified     bool   `json:"is_verified"`
	TotalMedia     int64  `json:"total_media"`
	TotalFollowers int64  `json:"total_followers"`
}

type ContentVideo struct {
	ID           string  `json:"id"`
	Duration     float64 `json:"duration"` // seconds
	ThumbnailURL string  `json:"thumbnail_url"`
	VideoURL     string  `json:"video_url"`
	Views        int64   `json:"views"`
	Plays        int64   `json:"plays"`
	Timestamp    int64   `json:"timestamp"` // epoch seconds
	Caption      string  `json:"caption"`
}

// ScoredContent is the canonical record handed to callers. Score is nil until
// the record has gone through the scorer.
type ScoredContent struct {
	SourceURL string       `json:"sourceUrl"`
	Score     *float64     `json:"score,omitempty"`
	User      ContentUser  `json:"user"`
	Video     ContentVideo `json:"video"`
}

// PostedAt returns the upload time of the video.
func (c ScoredContent) PostedAt() time.Time {
	return time.Unix(c.Video.Timestamp, 0)
}

// ScoreValue returns the score or 0 when unscored.
func (c ScoredContent) ScoreValue() float64 {
	if c.Score == nil {
		return 0
	}
	return *c.Score
}

// StoredContent is a ScoredContent as kept in the content store.
type StoredContent struct {
	ID        int
	Shortcode string
	Content   ScoredContent
	FetchedAt time.Time
	UpdatedAt time.Time
}
