package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/reel-ranker/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{Attempts: 2, Initial: time.Millisecond, Max: 2 * time.Millisecond, Factor: 2}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.NewNop(), "op", func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	}, fastPolicy())

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoExhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.NewNop(), "op", func(context.Context) error {
		calls++
		return errors.New("still failing")
	}, fastPolicy())

	require.Error(t, err)
	assert.Equal(t, 3, calls) // initial + 2 retries
}

func TestDoPermanentStopsImmediately(t *testing.T) {
	calls := 0
	cause := errors.New("bad request")
	err := Do(context.Background(), logger.NewNop(), "op", func(context.Context) error {
		calls++
		return Permanent(cause)
	}, fastPolicy())

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, calls)
}

func TestDoStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, logger.NewNop(), "op", func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	}, Policy{Attempts: 5, Initial: time.Second, Max: time.Second, Factor: 1})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
