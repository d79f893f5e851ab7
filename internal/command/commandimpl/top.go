package commandimpl

import (
	"context"
	"strconv"
	"strings"

	"github.com/orgball2608/reel-ranker/internal/domain"
)

const (
	defaultTopCount = 5
	maxTopCount     = 20
)

func (c *CommandImpl) handleTop(ctx context.Context, chatID int64, args string) error {
	count := defaultTopCount
	if arg := strings.TrimSpace(args); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			_, err := c.Telegram.SendMessage(chatID, "Usage: /top \\[n\\] where n is a positive number\\.")
			return err
		}
		count = min(n, maxTopCount)
	}

	stored, err := c.Repo.ListTop(ctx, count)
	if err != nil {
		c.Logger.Error("Failed to list top contents", "error", err)
		_, sendErr := c.Telegram.SendMessage(chatID, "❌ Could not load the ranking right now\\.")
		if sendErr != nil {
			return sendErr
		}
		return err
	}

	if len(stored) == 0 {
		_, err := c.Telegram.SendMessage(chatID, "Nothing ranked yet\\. Try /rank with a few links\\.")
		return err
	}

	contents := make([]domain.ScoredContent, 0, len(stored))
	for _, s := range stored {
		contents = append(contents, s.Content)
	}

	_, err = c.Telegram.SendMessage(chatID, formatTop(contents))
	return err
}
