package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateContents, downCreateContents)
}

func upCreateContents(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE contents (
		id SERIAL PRIMARY KEY,
		shortcode VARCHAR NOT NULL UNIQUE,
		source_url VARCHAR NOT NULL,
		username VARCHAR NOT NULL DEFAULT '',
		score DOUBLE PRECISION,
		posted_at BIGINT NOT NULL DEFAULT 0,
		payload JSONB NOT NULL,
		fetched_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	);
	CREATE INDEX contents_score_idx ON contents (score DESC NULLS LAST);
	CREATE INDEX contents_fetched_at_idx ON contents (fetched_at);
	`)
	return err
}

func downCreateContents(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE contents;`)
	return err
}
