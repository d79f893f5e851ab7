package commandimpl

import (
	"fmt"
	"strings"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/pkg/errors"
	"github.com/orgball2608/reel-ranker/pkg/formatter"
)

const captionLimit = 200

// failureText maps an error to a message fit for chat users.
func failureText(err error) string {
	switch errors.GetCode(err) {
	case errors.CodeShortcodeNotFound:
		return "That link does not point to a post or reel."
	case errors.CodeTokenAcquisitionFailed:
		return "Instagram refused the session, try again later."
	case errors.CodeUpstreamRequestFailed:
		return "Instagram did not answer, try again later."
	case errors.CodeUnsupportedContentType:
		return "Only posts and reels are supported."
	default:
		return "Something went wrong."
	}
}

func formatContent(c domain.ScoredContent) string {
	esc := formatter.EscapeMarkdownV2

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎬 *%s* · score *%s*\n", esc(handle(c.User)), esc(formatter.FormatScore(c.ScoreValue())))
	fmt.Fprintf(&sb, "👁 %s views · ▶️ %s plays · ⏱ %s\n",
		esc(formatter.CompactNumber(c.Video.Views)),
		esc(formatter.CompactNumber(c.Video.Plays)),
		esc(fmt.Sprintf("%.0fs", c.Video.Duration)),
	)
	fmt.Fprintf(&sb, "👥 %s followers · %s posts\n",
		esc(formatter.CompactNumber(c.User.TotalFollowers)),
		esc(formatter.FormatNumber(c.User.TotalMedia)),
	)
	if c.Video.Caption != "" {
		fmt.Fprintf(&sb, "📝 %s\n", esc(formatter.Truncate(c.Video.Caption, captionLimit)))
	}
	sb.WriteString(esc(c.SourceURL))
	return sb.String()
}

func formatRanking(batch domain.Batch) string {
	esc := formatter.EscapeMarkdownV2
	ranked := rankContents(batch.Succeeded())

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 *Ranking* \\(%d of %d resolved\\)\n", len(ranked), len(batch.Results))
	for i, c := range ranked {
		fmt.Fprintf(&sb, "\n%d\\. *%s* %s · %s views\n%s\n",
			i+1,
			esc(formatter.FormatScore(c.ScoreValue())),
			esc(handle(c.User)),
			esc(formatter.CompactNumber(c.Video.Views)),
			esc(c.SourceURL),
		)
	}

	if failed := batch.Failed(); len(failed) > 0 {
		sb.WriteString("\n*Failed*\n")
		for _, f := range failed {
			fmt.Fprintf(&sb, "✖️ %s: %s\n", esc(f.SourceURL), esc(failureText(f.Err)))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatTop(contents []domain.ScoredContent) string {
	esc := formatter.EscapeMarkdownV2

	var sb strings.Builder
	sb.WriteString("🔥 *Top ranked*\n")
	for i, c := range contents {
		fmt.Fprintf(&sb, "\n%d\\. *%s* %s\n%s\n",
			i+1,
			esc(formatter.FormatScore(c.ScoreValue())),
			esc(handle(c.User)),
			esc(c.SourceURL),
		)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func handle(u domain.ContentUser) string {
	if u.Username == "" {
		return "unknown"
	}
	return "@" + u.Username
}
