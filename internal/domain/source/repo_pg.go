package source

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kplc/bulletin-notify/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func scanSource(row pgx.Row) (*Source, error) {
	var s Source
	if err := row.Scan(&s.SourceID, &s.URL, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) GetByURL(ctx context.Context, url string) (*Source, error) {
	return scanSource(r.conn(ctx).QueryRow(ctx,
		`SELECT source_id, url, created_at FROM source WHERE url = $1`, url))
}

func (r *repoPG) GetByID(ctx context.Context, sourceID uuid.UUID) (*Source, error) {
	return scanSource(r.conn(ctx).QueryRow(ctx,
		`SELECT source_id, url, created_at FROM source WHERE source_id = $1`, sourceID))
}

func (r *repoPG) GetOrCreate(ctx context.Context, url string) (*Source, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO source (source_id, url)
		VALUES ($1, $2)
		ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url
		RETURNING source_id, url, created_at`,
		uuid.New(), url)
	return scanSource(row)
}

func (r *repoPG) ExistingURLs(ctx context.Context) (map[string]bool, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT url FROM source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	urls := make(map[string]bool)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls[u] = true
	}
	return urls, rows.Err()
}

func (r *repoPG) AddManual(ctx context.Context, url string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO manually_added_source (url, added_at) VALUES ($1, NOW())
		ON CONFLICT (url) DO NOTHING`, url)
	return err
}

func (r *repoPG) ListManual(ctx context.Context) ([]ManuallyAddedSource, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT url, added_at FROM manually_added_source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ManuallyAddedSource
	for rows.Next() {
		var m ManuallyAddedSource
		if err := rows.Scan(&m.URL, &m.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *repoPG) RemoveManual(ctx context.Context, url string) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM manually_added_source WHERE url = $1`, url)
	return err
}
