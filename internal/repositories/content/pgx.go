package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/internal/repositories"
	"github.com/orgball2608/reel-ranker/pkg/logger"
)

const table = "contents"

var selectColumns = []string{"id", "shortcode", "score", "payload", "fetched_at", "updated_at"}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("ContentRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func upsertQuery(shortcode string, c domain.ScoredContent, now time.Time) (string, []any, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", nil, fmt.Errorf("marshal content: %w", err)
	}

	return repositories.SqBuilder.
		Insert(table).
		Columns("shortcode", "source_url", "username", "score", "posted_at", "payload", "fetched_at", "updated_at").
		Values(shortcode, c.SourceURL, c.User.Username, c.Score, c.Video.Timestamp, payload, now, now).
		Suffix(`ON CONFLICT (shortcode) DO UPDATE SET
			source_url = EXCLUDED.source_url,
			username = EXCLUDED.username,
			score = EXCLUDED.score,
			posted_at = EXCLUDED.posted_at,
			payload = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
}

func (p *Pgx) Upsert(ctx context.Context, shortcode string, c domain.ScoredContent) error {
	query, args, err := upsertQuery(shortcode, c, time.Now())
	if err != nil {
		return repositories.ErrBadQuery
	}

	if _, err := p.pg.Exec(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

func (p *Pgx) GetByShortcode(ctx context.Context, shortcode string) (*domain.StoredContent, error) {
	query, args, err := repositories.SqBuilder.
		Select(selectColumns...).
		From(table).
		Where(sq.Eq{"shortcode": shortcode}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	stored, err := scanContent(p.pg.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return stored, err
}

func topQuery(limit int) (string, []any, error) {
	b := repositories.SqBuilder.
		Select(selectColumns...).
		From(table).
		Where(sq.NotEq{"score": nil}).
		OrderBy("score DESC", "fetched_at DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return b.ToSql()
}

func (p *Pgx) ListTop(ctx context.Context, limit int) ([]*domain.StoredContent, error) {
	query, args, err := topQuery(limit)
	if err != nil {
		return nil, repositories.ErrBadQuery
	}
	return p.list(ctx, query, args)
}

func (p *Pgx) ListAll(ctx context.Context) ([]*domain.StoredContent, error) {
	query, args, err := repositories.SqBuilder.
		Select(selectColumns...).
		From(table).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}
	return p.list(ctx, query, args)
}

func (p *Pgx) UpdateScore(ctx context.Context, shortcode string, score float64) error {
	query, args, err := repositories.SqBuilder.
		Update(table).
		Set("score", score).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"shortcode": shortcode}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Pgx) CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Delete(table).
		Where(sq.Lt{"fetched_at": time.Now().Add(-olderThan)}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	p.logger.Info("Cleaned up old contents", "deleted", result.RowsAffected(), "older_than", olderThan.String())
	return result.RowsAffected(), nil
}

func (p *Pgx) list(ctx context.Context, query string, args []any) ([]*domain.StoredContent, error) {
	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.StoredContent
	for rows.Next() {
		stored, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanContent reads one row; the score column wins over the score inside
// the payload since rescoring only touches the column.
func scanContent(row pgx.Row) (*domain.StoredContent, error) {
	var (
		stored  domain.StoredContent
		score   *float64
		payload []byte
	)
	if err := row.Scan(&stored.ID, &stored.Shortcode, &score, &payload, &stored.FetchedAt, &stored.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &stored.Content); err != nil {
		return nil, fmt.Errorf("decode content %s: %w", stored.Shortcode, err)
	}
	stored.Content.Score = score
	return &stored, nil
}
