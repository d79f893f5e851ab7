package resolver

import (
	"context"

	"github.com/orgball2608/reel-ranker/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock.go
type Client interface {
	// ResolveBatch acquires one token and resolves every url concurrently.
	// Results keep input order; only a token failure fails the whole batch.
	ResolveBatch(ctx context.Context, urls []string, providedToken string) (domain.Batch, error)

	// Resolve resolves a single url. A zero token is acquired on demand.
	Resolve(ctx context.Context, rawURL string, token domain.AntiBotToken) (*domain.ScoredContent, error)
}
