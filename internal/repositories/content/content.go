package content

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/reel-ranker/internal/domain"
)

var ErrNotFound = errors.New("content not found")

//go:generate go run go.uber.org/mock/mockgen -source=content.go -destination=mocks/mock.go
type Repository interface {
	// Upsert stores the record under its shortcode, replacing any earlier copy
	Upsert(ctx context.Context, shortcode string, content domain.ScoredContent) error

	// GetByShortcode returns the stored record or ErrNotFound
	GetByShortcode(ctx context.Context, shortcode string) (*domain.StoredContent, error)

	// ListTop returns up to limit records ordered by score, highest first
	ListTop(ctx context.Context, limit int) ([]*domain.StoredContent, error)

	// ListAll returns every stored record
	ListAll(ctx context.Context) ([]*domain.StoredContent, error)

	// UpdateScore overwrites the score of one record
	UpdateScore(ctx context.Context, shortcode string, score float64) error

	// CleanupOldRecords deletes records fetched before now minus olderThan
	CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error)
}
