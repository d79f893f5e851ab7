package jobs

import "context"

type Client interface {
	// Schedule starts the rescore and retention jobs; they stop when ctx is done.
	Schedule(ctx context.Context) error

	// Rescore recomputes the score of every stored record against the current time.
	Rescore(ctx context.Context) (int, error)

	// Cleanup deletes stored records older than the retention window.
	Cleanup(ctx context.Context) (int64, error)
}
