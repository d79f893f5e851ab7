package commandimpl

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/internal/instagram"
	"github.com/orgball2608/reel-ranker/pkg/formatter"
)

const maxRankURLs = 10

func (c *CommandImpl) handleResolve(ctx context.Context, chatID int64, args string) error {
	rawURL := strings.TrimSpace(args)
	if rawURL == "" {
		_, err := c.Telegram.SendMessage(chatID, "Please provide a link: /resolve <instagram\\_url>")
		return err
	}

	sentMsgID, err := c.Telegram.SendMessage(chatID, "Resolving link\\.\\.\\. ⏳")
	if err != nil {
		return fmt.Errorf("failed to send initial message: %w", err)
	}

	content, err := c.Resolver.Resolve(ctx, rawURL, domain.AntiBotToken{})
	if err != nil {
		c.Logger.Warn("Resolve command failed", "url", rawURL, "kind", instagram.Kind(err), "error", err)
		return c.Telegram.EditMessageText(chatID, sentMsgID, "❌ "+formatter.EscapeMarkdownV2(failureText(err)))
	}

	return c.Telegram.EditMessageText(chatID, sentMsgID, formatContent(*content))
}

func (c *CommandImpl) handleRank(ctx context.Context, chatID int64, args string) error {
	urls := strings.Fields(args)
	if len(urls) == 0 {
		_, err := c.Telegram.SendMessage(chatID, "Please provide links: /rank <url> <url> \\.\\.\\.")
		return err
	}
	if len(urls) > maxRankURLs {
		_, err := c.Telegram.SendMessage(chatID, fmt.Sprintf("Please send at most %d links at a time\\.", maxRankURLs))
		return err
	}

	sentMsgID, err := c.Telegram.SendMessage(chatID, fmt.Sprintf("Ranking %d links\\.\\.\\. ⏳", len(urls)))
	if err != nil {
		return fmt.Errorf("failed to send initial message: %w", err)
	}

	batch, err := c.Resolver.ResolveBatch(ctx, urls, "")
	if err != nil {
		c.Logger.Warn("Rank command failed", "urls", len(urls), "kind", instagram.Kind(err), "error", err)
		return c.Telegram.EditMessageText(chatID, sentMsgID, "❌ "+formatter.EscapeMarkdownV2(failureText(err)))
	}

	return c.Telegram.EditMessageText(chatID, sentMsgID, formatRanking(batch))
}

// rankContents orders records by score, highest first; ties keep input order.
func rankContents(contents []domain.ScoredContent) []domain.ScoredContent {
	ranked := slices.Clone(contents)
	slices.SortStableFunc(ranked, func(a, b domain.ScoredContent) int {
		return cmp.Compare(b.ScoreValue(), a.ScoreValue())
	})
	return ranked
}
